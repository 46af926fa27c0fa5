package prefs

import (
	"sort"
	"sync"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// Handler is called with a preference event. Handlers run synchronously in
// emission order and must not call mutating controller methods.
type Handler func(event tinttypes.Event)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier delivers typed preference events to subscribers. Delivery is
// synchronous and ordered: an Emit returns only after every matching
// handler ran, and handlers for one event run in subscription order.
type Notifier struct {
	mu sync.RWMutex

	// Handlers registered for every event kind
	global map[uint64]Handler

	// Handlers registered for a single kind
	byKind map[tinttypes.EventKind]map[uint64]Handler

	nextID uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		global: make(map[uint64]Handler),
		byKind: make(map[tinttypes.EventKind]map[uint64]Handler),
	}
}

// Subscribe registers a handler for one event kind.
func (n *Notifier) Subscribe(kind tinttypes.EventKind, handler Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.byKind[kind] == nil {
		n.byKind[kind] = make(map[uint64]Handler)
	}
	n.byKind[kind][id] = handler

	return &Subscription{id: id, notifier: n}
}

// SubscribeAll registers a handler for every event kind.
func (n *Notifier) SubscribeAll(handler Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = handler

	return &Subscription{id: id, notifier: n}
}

// Emit delivers an event to all matching handlers, outside the lock.
func (n *Notifier) Emit(event tinttypes.Event) {
	n.mu.RLock()

	ids := make([]uint64, 0, len(n.global)+len(n.byKind[event.Kind]))
	handlers := make(map[uint64]Handler, cap(ids))
	for id, h := range n.global {
		ids = append(ids, id)
		handlers[id] = h
	}
	for id, h := range n.byKind[event.Kind] {
		ids = append(ids, id)
		handlers[id] = h
	}

	n.mu.RUnlock()

	// Subscription order, so delivery is deterministic
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	logger.EventEmission(string(event.Kind), len(ids))
	for _, id := range ids {
		handlers[id](event)
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for kind, handlers := range n.byKind {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(n.byKind, kind)
		}
	}
}
