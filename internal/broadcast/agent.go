// Package broadcast relays preference changes between the control context
// and attached page contexts. The control side's Broadcaster writes each
// change to the shared store and forwards it to the focused context; the
// page side's PageAgent applies inbound messages to its local surface and
// acknowledges every one.
package broadcast

import (
	"encoding/json"

	charmlog "github.com/charmbracelet/log"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// PageAgent is the receiving half of the relay. It owns no controller and
// no store: it only applies values to its local surface and answers with a
// structured acknowledgment. Unrecognized actions are answered, never
// silently dropped.
type PageAgent struct {
	applicator tinttypes.Applicator
	log        *charmlog.Logger
}

// NewPageAgent creates an agent applying messages through the given
// applicator. A nil applicator acknowledges without rendering.
func NewPageAgent(applicator tinttypes.Applicator) *PageAgent {
	return &PageAgent{
		applicator: applicator,
		log:        logger.NewStyledLogger("PageAgent"),
	}
}

// HandleMessage applies one inbound message. Single-dimension actions apply
// their value; applySettings applies each present field independently. An
// unknown action mutates nothing and yields a failed acknowledgment.
func (a *PageAgent) HandleMessage(msg tinttypes.Message) tinttypes.Ack {
	switch msg.Action {
	case tinttypes.ActionSetTheme:
		a.apply(tinttypes.DimensionTheme, msg.Theme)
		return tinttypes.AckOK()

	case tinttypes.ActionSetFont:
		a.apply(tinttypes.DimensionFont, msg.Font)
		return tinttypes.AckOK()

	case tinttypes.ActionSetFontSize:
		a.apply(tinttypes.DimensionFontSize, msg.FontSize)
		return tinttypes.AckOK()

	case tinttypes.ActionApplySettings:
		a.applyPartial(msg.Settings)
		return tinttypes.AckOK()

	default:
		a.log.Warn("Rejecting unknown action", "action", string(msg.Action))
		return tinttypes.AckFailure(tinttypes.ErrUnknownAction.Error())
	}
}

// HandleRaw decodes a JSON payload and applies it. Wire input is the one
// place unknown actions can come from, so the failed acknowledgment carries
// the reason back to the sender.
func (a *PageAgent) HandleRaw(data []byte) tinttypes.Ack {
	var msg tinttypes.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		a.log.Warn("Rejecting malformed message", "error", err)
		return tinttypes.AckFailure("malformed message")
	}
	return a.HandleMessage(msg)
}

func (a *PageAgent) apply(d tinttypes.Dimension, value string) {
	if a.applicator == nil {
		return
	}
	a.applicator.Apply(d, value)
}

// applyPartial applies each present field on its own; absent fields leave
// the surface untouched.
func (a *PageAgent) applyPartial(p *tinttypes.PartialSettings) {
	if p == nil {
		return
	}
	for _, d := range tinttypes.AllDimensions() {
		if value, ok := p.Get(d); ok {
			a.apply(d, value)
		}
	}
}
