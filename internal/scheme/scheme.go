// Package scheme resolves the host system's dark/light color scheme. A
// Resolver queries registered detectors in priority order every time it is
// asked, so the answer always reflects the system at that moment rather than
// a cached value. The "auto" theme reads from a SchemeSource at apply time.
package scheme

import (
	"sort"
	"sync"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// Detector probes one system signal for the preferred color scheme.
// Multiple detectors can be registered with different priorities.
type Detector interface {
	// Name returns a human-readable name for this detector.
	Name() string

	// Priority orders detectors; higher values are checked first.
	// Runtime detectors sit at 100+, environment overrides at 50+,
	// command-line fallbacks like gsettings at 10+.
	Priority() int

	// Available returns true if this detector can be used on this host.
	Available() bool

	// Detect returns the detected scheme and whether detection succeeded.
	Detect() (tinttypes.Scheme, bool)
}

// Resolver implements tinttypes.SchemeSource over a prioritized detector
// chain. Current re-resolves on every call; Refresh re-resolves and notifies
// subscribers when the answer changed since the last observation.
type Resolver struct {
	mu        sync.RWMutex
	detectors []Detector
	fallback  tinttypes.Scheme
	last      tinttypes.Scheme

	subMu  sync.Mutex
	subs   map[int]func(tinttypes.Scheme)
	nextID int
}

// NewResolver creates a resolver with the given fallback scheme and initial
// detectors. The fallback is used when every detector declines.
func NewResolver(fallback tinttypes.Scheme, detectors ...Detector) *Resolver {
	r := &Resolver{
		fallback: fallback,
		subs:     make(map[int]func(tinttypes.Scheme)),
	}
	for _, d := range detectors {
		r.RegisterDetector(d)
	}
	r.last = r.resolve()
	return r
}

// RegisterDetector adds a detector to the chain. Safe to call at any time;
// the next Current or Refresh sees the new detector.
func (r *Resolver) RegisterDetector(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors = append(r.detectors, d)
	sort.SliceStable(r.detectors, func(i, j int) bool {
		return r.detectors[i].Priority() > r.detectors[j].Priority()
	})
}

func (r *Resolver) resolve() tinttypes.Scheme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.detectors {
		if !d.Available() {
			continue
		}
		if s, ok := d.Detect(); ok {
			logger.Debug("Color scheme detected", "detector", d.Name(), "scheme", string(s))
			return s
		}
	}
	return r.fallback
}

// Current resolves the scheme right now. It never serves a cached value.
func (r *Resolver) Current() tinttypes.Scheme {
	return r.resolve()
}

// Refresh re-resolves the scheme and notifies subscribers if it changed
// since the last observation. Returns the resolved scheme.
func (r *Resolver) Refresh() tinttypes.Scheme {
	next := r.resolve()

	r.mu.Lock()
	changed := next != r.last
	r.last = next
	r.mu.Unlock()

	if changed {
		r.notify(next)
	}
	return next
}

// Subscribe registers a callback fired when Refresh observes a change.
// The returned function unregisters the callback.
func (r *Resolver) Subscribe(fn func(tinttypes.Scheme)) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Resolver) notify(s tinttypes.Scheme) {
	r.subMu.Lock()
	fns := make([]func(tinttypes.Scheme), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	// Deliver outside the lock so callbacks may subscribe or unsubscribe.
	for _, fn := range fns {
		fn(s)
	}
}

// Static is a fixed SchemeSource whose value only changes through Set.
// Deployments without system detection use it, as do tests.
type Static struct {
	mu     sync.RWMutex
	scheme tinttypes.Scheme

	subMu  sync.Mutex
	subs   map[int]func(tinttypes.Scheme)
	nextID int
}

// NewStatic creates a static source holding the given scheme.
func NewStatic(s tinttypes.Scheme) *Static {
	return &Static{scheme: s, subs: make(map[int]func(tinttypes.Scheme))}
}

// Current returns the held scheme.
func (s *Static) Current() tinttypes.Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheme
}

// Set replaces the held scheme and notifies subscribers if it changed.
func (s *Static) Set(next tinttypes.Scheme) {
	s.mu.Lock()
	changed := next != s.scheme
	s.scheme = next
	s.mu.Unlock()

	if !changed {
		return
	}

	s.subMu.Lock()
	fns := make([]func(tinttypes.Scheme), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers a callback fired when Set changes the scheme.
// The returned function unregisters the callback.
func (s *Static) Subscribe(fn func(tinttypes.Scheme)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}
