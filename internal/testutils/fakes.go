package testutils

import (
	"sync"

	"tint/pkg/tinttypes"
)

// AppliedValue is one recorded Apply call.
type AppliedValue struct {
	Dimension tinttypes.Dimension
	Value     string
}

// RecordingApplicator implements the Applicator interface for testing. It
// records every Apply call in order.
type RecordingApplicator struct {
	mu      sync.Mutex
	applied []AppliedValue
}

// NewRecordingApplicator creates an empty recording applicator.
func NewRecordingApplicator() *RecordingApplicator {
	return &RecordingApplicator{applied: []AppliedValue{}}
}

// Apply implements Applicator.Apply
func (r *RecordingApplicator) Apply(d tinttypes.Dimension, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, AppliedValue{Dimension: d, Value: value})
}

// Applied returns a copy of the recorded calls in order.
func (r *RecordingApplicator) Applied() []AppliedValue {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]AppliedValue, len(r.applied))
	copy(result, r.applied)
	return result
}

// CountFor returns how many times a dimension was applied.
func (r *RecordingApplicator) CountFor(d tinttypes.Dimension) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, a := range r.applied {
		if a.Dimension == d {
			count++
		}
	}
	return count
}

// LastFor returns the most recently applied value for a dimension.
func (r *RecordingApplicator) LastFor(d tinttypes.Dimension) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.applied) - 1; i >= 0; i-- {
		if r.applied[i].Dimension == d {
			return r.applied[i].Value, true
		}
	}
	return "", false
}

// Clear drops the recorded calls.
func (r *RecordingApplicator) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = []AppliedValue{}
}

// MockControl implements the Control interface for testing. SetValue records
// the pushed value without firing the change handler; Fire simulates a user
// edit, which updates the displayed value and then invokes the handler.
type MockControl struct {
	mu      sync.Mutex
	value   string
	pushed  []string
	handler func(string)
}

// NewMockControl creates a control displaying the given initial value.
func NewMockControl(value string) *MockControl {
	return &MockControl{value: value, pushed: []string{}}
}

// Value implements Control.Value
func (m *MockControl) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// SetValue implements Control.SetValue
func (m *MockControl) SetValue(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.pushed = append(m.pushed, value)
}

// OnChange implements Control.OnChange
func (m *MockControl) OnChange(fn func(value string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handler = nil
	}
}

// Test helper methods

// Fire simulates a user edit. The handler runs outside the lock because the
// controller calls back into Value and SetValue while handling the signal.
func (m *MockControl) Fire(value string) {
	m.mu.Lock()
	m.value = value
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(value)
	}
}

// Pushed returns a copy of the values the controller pushed via SetValue.
func (m *MockControl) Pushed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.pushed))
	copy(result, m.pushed)
	return result
}

// Bound reports whether a change handler is currently registered.
func (m *MockControl) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// EventCollector records controller events in delivery order. Pass Collect
// to Subscribe or SubscribeAll.
type EventCollector struct {
	mu     sync.Mutex
	events []tinttypes.Event
}

// NewEventCollector creates an empty collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{events: []tinttypes.Event{}}
}

// Collect appends one event. It matches the notifier's handler signature.
func (c *EventCollector) Collect(e tinttypes.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of the recorded events in order.
func (c *EventCollector) Events() []tinttypes.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]tinttypes.Event, len(c.events))
	copy(result, c.events)
	return result
}

// Kinds returns just the recorded event kinds in order.
func (c *EventCollector) Kinds() []tinttypes.EventKind {
	c.mu.Lock()
	defer c.mu.Unlock()

	kinds := make([]tinttypes.EventKind, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Last returns the most recent event.
func (c *EventCollector) Last() (tinttypes.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.events) == 0 {
		return tinttypes.Event{}, false
	}
	return c.events[len(c.events)-1], true
}

// Clear drops the recorded events.
func (c *EventCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = []tinttypes.Event{}
}
