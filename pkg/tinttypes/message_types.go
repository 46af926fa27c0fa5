// Package tinttypes defines the core data structures for Tint's preference
// system. This file contains the inter-context message contract used between
// the control context and attached page contexts.
package tinttypes

import "errors"

// ErrUnknownAction is returned when an inbound message carries an action tag
// the receiver does not recognize. Internally-constructed messages cannot
// produce it; it exists for external or cross-version senders.
var ErrUnknownAction = errors.New("unknown action")

// Action tags an inter-context message. The set is closed for messages built
// in-process; JSON-decoded external messages may still carry unknown tags
// and must be answered with a failed Ack rather than dropped.
type Action string

const (
	// ActionSetTheme applies a single theme value in the receiving context.
	ActionSetTheme Action = "setTheme"

	// ActionSetFont applies a single font value in the receiving context.
	ActionSetFont Action = "setFont"

	// ActionSetFontSize applies a single font size value in the receiving context.
	ActionSetFontSize Action = "setFontSize"

	// ActionApplySettings applies a full or partial triple; absent fields
	// are left untouched in the receiving context.
	ActionApplySettings Action = "applySettings"
)

// ActionForDimension returns the single-dimension action for d.
func ActionForDimension(d Dimension) Action {
	switch d {
	case DimensionTheme:
		return ActionSetTheme
	case DimensionFont:
		return ActionSetFont
	case DimensionFontSize:
		return ActionSetFontSize
	default:
		return ""
	}
}

// Dimension returns the preference dimension a single-dimension action
// targets, and false for ActionApplySettings or unknown tags.
func (a Action) Dimension() (Dimension, bool) {
	switch a {
	case ActionSetTheme:
		return DimensionTheme, true
	case ActionSetFont:
		return DimensionFont, true
	case ActionSetFontSize:
		return DimensionFontSize, true
	default:
		return "", false
	}
}

// Known reports whether a is one of the four recognized action tags.
func (a Action) Known() bool {
	switch a {
	case ActionSetTheme, ActionSetFont, ActionSetFontSize, ActionApplySettings:
		return true
	default:
		return false
	}
}

// Message is the JSON-shaped inter-context request. Single-dimension actions
// carry their value in the matching top-level field; applySettings carries a
// PartialSettings payload.
type Message struct {
	// Action selects what the receiving context should apply.
	Action Action `json:"action"`

	// Theme is the value for setTheme messages.
	Theme string `json:"theme,omitempty"`

	// Font is the value for setFont messages.
	Font string `json:"font,omitempty"`

	// FontSize is the value for setFontSize messages.
	FontSize string `json:"fontSize,omitempty"`

	// Settings is the payload for applySettings messages.
	Settings *PartialSettings `json:"settings,omitempty"`
}

// NewSetMessage builds a single-dimension message. Using the constructor
// keeps internally-built messages correct by construction.
func NewSetMessage(d Dimension, value string) Message {
	m := Message{Action: ActionForDimension(d)}
	switch d {
	case DimensionTheme:
		m.Theme = value
	case DimensionFont:
		m.Font = value
	case DimensionFontSize:
		m.FontSize = value
	}
	return m
}

// NewApplyMessage builds an applySettings message from a partial triple.
func NewApplyMessage(p PartialSettings) Message {
	return Message{Action: ActionApplySettings, Settings: &p}
}

// Value returns the single-dimension payload of a setTheme/setFont/setFontSize
// message. For other actions it returns the empty string.
func (m Message) Value() string {
	switch m.Action {
	case ActionSetTheme:
		return m.Theme
	case ActionSetFont:
		return m.Font
	case ActionSetFontSize:
		return m.FontSize
	default:
		return ""
	}
}

// Ack is the structured acknowledgment every inbound message yields.
type Ack struct {
	// Success reports whether the message was applied.
	Success bool `json:"success"`

	// Error carries a human-readable reason when Success is false.
	Error string `json:"error,omitempty"`
}

// AckOK returns a successful acknowledgment.
func AckOK() Ack {
	return Ack{Success: true}
}

// AckFailure returns a failed acknowledgment with the given reason.
func AckFailure(reason string) Ack {
	return Ack{Success: false, Error: reason}
}
