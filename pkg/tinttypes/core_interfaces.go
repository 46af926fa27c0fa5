// Package tinttypes defines core architectural interfaces for Tint.
// This file contains the narrow contracts the preference controller and
// broadcaster depend on: durable storage, style application, bound controls,
// the system color-scheme signal, and the page-context directory.
package tinttypes

import "time"

// Store is the durable key/value persistence contract. Implementations may
// be unavailable at any point; callers treat read failures as "value absent"
// and write failures as no-ops. No store error is ever fatal.
type Store interface {
	// Get returns the stored values for the requested keys. Absent keys are
	// omitted from the result rather than reported as errors.
	Get(keys []string) (map[string]string, error)

	// Set stores a single value under key.
	Set(key, value string) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(keys []string) error

	// OnChange registers a callback invoked with the changed key/value pairs
	// whenever the underlying storage is modified by another writer. The
	// returned function unregisters the callback.
	OnChange(fn func(changed map[string]string)) (unsubscribe func())

	// Close releases watcher and file resources.
	Close() error
}

// Applicator turns a resolved preference value into a visible rendering
// effect on its surface. Apply is a pure side effect: it must be idempotent
// for equal inputs and must not panic.
type Applicator interface {
	Apply(d Dimension, value string)
}

// Control is a presentation control bound to one dimension. The controller
// reads Value on the control's change signal and writes SetValue when
// resyncing.
type Control interface {
	// Value returns the control's currently displayed value.
	Value() string

	// SetValue updates the control's displayed value without firing its
	// change signal.
	SetValue(value string)

	// OnChange registers the controller's handler for user edits. The
	// returned function unbinds the handler.
	OnChange(fn func(value string)) (unbind func())
}

// Scheme is a resolved system color scheme.
type Scheme string

const (
	// SchemeLight indicates the system prefers light rendering.
	SchemeLight Scheme = "light"

	// SchemeDark indicates the system prefers dark rendering.
	SchemeDark Scheme = "dark"
)

// SchemeSource is the host system's dark/light preference signal. Current is
// queried at apply time and never cached across controller instances.
type SchemeSource interface {
	// Current returns the scheme the system prefers right now.
	Current() Scheme

	// Subscribe registers a callback fired when the preference changes. The
	// returned function unsubscribes.
	Subscribe(fn func(Scheme)) (unsubscribe func())
}

// PageContext is one attached rendering context reachable via message
// passing. Send is fire-and-forget from the caller's perspective; the
// acknowledgment travels back out-of-band and is consumed for logging only.
type PageContext interface {
	// ID returns the context's unique identifier.
	ID() string

	// Label returns the human-readable label supplied at attach time.
	Label() string

	// Send delivers a message to the context. A returned error means the
	// context could not accept the message (closed, not listening).
	Send(msg Message) error
}

// ContextDirectory enumerates the currently attached page contexts.
type ContextDirectory interface {
	// Focused returns the currently focused context, if any.
	Focused() (PageContext, bool)

	// List returns a snapshot of all attached contexts.
	List() []PageContext
}

// ContextInfo describes one attached context for diagnostics. It is the
// wire shape served by the contexts endpoint.
type ContextInfo struct {
	// ID is the context's unique identifier.
	ID string `json:"id"`

	// Label is the human-readable label supplied at attach time.
	Label string `json:"label"`

	// AttachedAt is when the context attached.
	AttachedAt time.Time `json:"attachedAt"`

	// Focused reports whether this context currently receives single
	// dimension changes.
	Focused bool `json:"focused"`
}
