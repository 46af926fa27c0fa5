package testutils

import (
	"sync"

	"tint/pkg/tinttypes"
)

// MockPageContext implements the PageContext interface for testing. It
// records every delivered message and can be scripted to reject sends.
type MockPageContext struct {
	id    string
	label string

	mu       sync.RWMutex
	received []tinttypes.Message
	attempts int

	// For testing delivery failure scenarios
	sendError error
}

// NewMockPageContext creates a mock page context with the given identity.
func NewMockPageContext(id, label string) *MockPageContext {
	return &MockPageContext{
		id:       id,
		label:    label,
		received: []tinttypes.Message{},
	}
}

// ID implements PageContext.ID
func (m *MockPageContext) ID() string {
	return m.id
}

// Label implements PageContext.Label
func (m *MockPageContext) Label() string {
	return m.label
}

// Send implements PageContext.Send. A scripted error counts as an attempt
// but records nothing: the message never reached the context.
func (m *MockPageContext) Send(msg tinttypes.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.sendError != nil {
		return m.sendError
	}

	m.received = append(m.received, msg)
	return nil
}

// Test helper methods

// SetSendError sets an error to be returned by Send
func (m *MockPageContext) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendError = err
}

// Received returns a copy of the successfully delivered messages in order.
func (m *MockPageContext) Received() []tinttypes.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tinttypes.Message, len(m.received))
	copy(result, m.received)
	return result
}

// LastReceived returns the most recently delivered message.
func (m *MockPageContext) LastReceived() (tinttypes.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.received) == 0 {
		return tinttypes.Message{}, false
	}
	return m.received[len(m.received)-1], true
}

// Attempts returns how many sends were tried, including rejected ones.
func (m *MockPageContext) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts
}

// ClearReceived drops the recorded messages but keeps the attempt count.
func (m *MockPageContext) ClearReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = []tinttypes.Message{}
}

// MockDirectory implements the ContextDirectory interface for testing with a
// fixed membership and an explicitly focused context.
type MockDirectory struct {
	mu       sync.RWMutex
	contexts []tinttypes.PageContext
	focused  tinttypes.PageContext
}

// NewMockDirectory creates a directory holding the given contexts. The first
// one, if any, starts focused.
func NewMockDirectory(contexts ...tinttypes.PageContext) *MockDirectory {
	d := &MockDirectory{contexts: contexts}
	if len(contexts) > 0 {
		d.focused = contexts[0]
	}
	return d
}

// Focused implements ContextDirectory.Focused
func (d *MockDirectory) Focused() (tinttypes.PageContext, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.focused == nil {
		return nil, false
	}
	return d.focused, true
}

// List implements ContextDirectory.List
func (d *MockDirectory) List() []tinttypes.PageContext {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]tinttypes.PageContext, len(d.contexts))
	copy(result, d.contexts)
	return result
}

// Test helper methods

// SetFocused marks one context as focused. Pass nil to clear focus.
func (d *MockDirectory) SetFocused(ctx tinttypes.PageContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = ctx
}

// Add appends a context to the directory.
func (d *MockDirectory) Add(ctx tinttypes.PageContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contexts = append(d.contexts, ctx)
}
