// Package tinttypes defines the core data structures for Tint's preference
// system. This file contains the controller's change-notification contract.
package tinttypes

// EventKind names a controller notification. Every event carries the full
// settings triple at the time of emission.
type EventKind string

const (
	// EventInitialized fires once after the controller resolves its initial
	// triple and completes the first apply cycle.
	EventInitialized EventKind = "initialized"

	// EventThemeChanged fires when the theme value changes. It does not fire
	// for visual repaints of an unchanged "auto" value.
	EventThemeChanged EventKind = "themeChanged"

	// EventFontChanged fires when the font value changes.
	EventFontChanged EventKind = "fontChanged"

	// EventFontSizeChanged fires when the font size value changes.
	EventFontSizeChanged EventKind = "fontSizeChanged"

	// EventReset fires once after a reset, following the three individual
	// dimension-changed events.
	EventReset EventKind = "reset"

	// EventStorageCleared fires after persisted keys are removed; in-memory
	// state is unchanged.
	EventStorageCleared EventKind = "storageCleared"

	// EventDestroyed fires once during teardown; the controller is inert
	// afterwards.
	EventDestroyed EventKind = "destroyed"
)

// EventKindForDimension maps a dimension to its changed-event kind.
func EventKindForDimension(d Dimension) EventKind {
	switch d {
	case DimensionTheme:
		return EventThemeChanged
	case DimensionFont:
		return EventFontChanged
	case DimensionFontSize:
		return EventFontSizeChanged
	default:
		return ""
	}
}

// AllEventKinds returns every notification kind, in lifecycle order.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventInitialized,
		EventThemeChanged,
		EventFontChanged,
		EventFontSizeChanged,
		EventReset,
		EventStorageCleared,
		EventDestroyed,
	}
}

// Event is a single controller notification.
type Event struct {
	// Kind names the notification.
	Kind EventKind `json:"kind"`

	// Settings is the full triple at the time of emission.
	Settings Settings `json:"settings"`
}
