// Package hub tracks attached page contexts for the daemon. The Hub itself
// is transport-agnostic and implements the context directory the broadcaster
// sends through; the websocket attachment path lives alongside it in ws.go.
package hub

import (
	"fmt"
	"io"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// Options carries the hub's injectable collaborators. The ID generator and
// clock exist so tests can pin attach order and timestamps.
type Options struct {
	// NewID generates context IDs. Nil uses random UUIDs.
	NewID func() string

	// Now supplies attach timestamps. Nil uses time.Now.
	Now func() time.Time

	// Log overrides the component logger.
	Log *charmlog.Logger
}

// Hub is the daemon's registry of attached page contexts. The most recently
// attached context starts focused; focus then follows explicit focus calls,
// and falls back to the most recent remaining context when the focused one
// detaches.
type Hub struct {
	log   *charmlog.Logger
	newID func() string
	now   func() time.Time

	mu        sync.RWMutex
	contexts  map[string]tinttypes.PageContext
	attached  map[string]time.Time
	order     []string
	focusedID string
}

// New creates an empty hub.
func New(opts Options) *Hub {
	componentLog := opts.Log
	if componentLog == nil {
		componentLog = logger.NewStyledLogger("Hub")
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Hub{
		log:      componentLog,
		newID:    newID,
		now:      now,
		contexts: make(map[string]tinttypes.PageContext),
		attached: make(map[string]time.Time),
	}
}

// NextID returns a fresh context ID.
func (h *Hub) NextID() string {
	return h.newID()
}

// Register adds a context. The newest context takes focus, matching the
// common flow where the page the user just opened is the one in front.
func (h *Hub) Register(ctx tinttypes.PageContext) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := ctx.ID()
	if _, exists := h.contexts[id]; !exists {
		h.order = append(h.order, id)
	}
	h.contexts[id] = ctx
	h.attached[id] = h.now()
	h.focusedID = id

	h.log.Info("Context attached", "context", id, "label", ctx.Label(), "total", len(h.contexts))
}

// Unregister removes a context by ID. When the focused context leaves,
// focus falls back to the most recently attached remaining one.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.contexts[id]; !exists {
		return
	}

	delete(h.contexts, id)
	delete(h.attached, id)
	for i, existing := range h.order {
		if existing == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	if h.focusedID == id {
		h.focusedID = ""
		if len(h.order) > 0 {
			h.focusedID = h.order[len(h.order)-1]
		}
	}

	h.log.Info("Context detached", "context", id, "total", len(h.contexts))
}

// SetFocused marks the given context as focused.
func (h *Hub) SetFocused(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.contexts[id]; !exists {
		return fmt.Errorf("unknown context %q", id)
	}

	h.focusedID = id
	h.log.Debug("Focus changed", "context", id)
	return nil
}

// Focused returns the currently focused context, if any.
func (h *Hub) Focused() (tinttypes.PageContext, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ctx, ok := h.contexts[h.focusedID]
	return ctx, ok
}

// List returns all attached contexts in attach order.
func (h *Hub) List() []tinttypes.PageContext {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]tinttypes.PageContext, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.contexts[id])
	}
	return out
}

// Get returns one context by ID.
func (h *Hub) Get(id string) (tinttypes.PageContext, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ctx, ok := h.contexts[id]
	return ctx, ok
}

// Count returns the number of attached contexts.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.contexts)
}

// Infos returns a diagnostic snapshot of every attached context in attach
// order.
func (h *Hub) Infos() []tinttypes.ContextInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]tinttypes.ContextInfo, 0, len(h.order))
	for _, id := range h.order {
		ctx := h.contexts[id]
		out = append(out, tinttypes.ContextInfo{
			ID:         id,
			Label:      ctx.Label(),
			AttachedAt: h.attached[id],
			Focused:    id == h.focusedID,
		})
	}
	return out
}

// Shutdown detaches every context, closing the ones that own a connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	contexts := make([]tinttypes.PageContext, 0, len(h.contexts))
	for _, ctx := range h.contexts {
		contexts = append(contexts, ctx)
	}
	h.contexts = make(map[string]tinttypes.PageContext)
	h.attached = make(map[string]time.Time)
	h.order = nil
	h.focusedID = ""
	h.mu.Unlock()

	for _, ctx := range contexts {
		if closer, ok := ctx.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				h.log.Debug("Context close failed", "context", ctx.ID(), "error", err)
			}
		}
	}

	h.log.Info("Hub shut down", "detached", len(contexts))
}
