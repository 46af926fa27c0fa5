package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tint/pkg/tinttypes"
)

// TestDataGenerator provides common test data
type TestDataGenerator struct{}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{}
}

// DefaultSettings returns the out-of-the-box preference triple
func (g *TestDataGenerator) DefaultSettings() tinttypes.Settings {
	return tinttypes.Settings{
		Theme:    tinttypes.ThemeLight,
		Font:     tinttypes.FontSystem,
		FontSize: tinttypes.SizeMedium,
	}
}

// SettingsTriples returns named preference triples for testing
func (g *TestDataGenerator) SettingsTriples() map[string]tinttypes.Settings {
	return map[string]tinttypes.Settings{
		"defaults": g.DefaultSettings(),
		"night reading": {
			Theme:    tinttypes.ThemeDark,
			Font:     tinttypes.FontSerif,
			FontSize: tinttypes.SizeLarge,
		},
		"follow system": {
			Theme:    tinttypes.ThemeAuto,
			Font:     tinttypes.FontSystem,
			FontSize: tinttypes.SizeMedium,
		},
		"accessible": {
			Theme:    tinttypes.ThemeLight,
			Font:     tinttypes.FontSansSerif,
			FontSize: tinttypes.SizeExtraLarge,
		},
	}
}

// MessageCases returns wire-format message cases for agent testing
func (g *TestDataGenerator) MessageCases() []MessageCase {
	return []MessageCase{
		{
			Name:    "set theme",
			Raw:     `{"action":"setTheme","theme":"dark"}`,
			WantAck: tinttypes.AckOK(),
		},
		{
			Name:    "set font",
			Raw:     `{"action":"setFont","font":"monospace"}`,
			WantAck: tinttypes.AckOK(),
		},
		{
			Name:    "set font size",
			Raw:     `{"action":"setFontSize","fontSize":"large"}`,
			WantAck: tinttypes.AckOK(),
		},
		{
			Name:    "apply full settings",
			Raw:     `{"action":"applySettings","settings":{"theme":"dark","font":"serif","fontSize":"small"}}`,
			WantAck: tinttypes.AckOK(),
		},
		{
			Name:    "apply partial settings",
			Raw:     `{"action":"applySettings","settings":{"theme":"dark"}}`,
			WantAck: tinttypes.AckOK(),
		},
		{
			Name:    "unknown action",
			Raw:     `{"action":"resizeWindow","theme":"dark"}`,
			WantAck: tinttypes.AckFailure("unknown action"),
		},
	}
}

// MessageCase represents a wire-format message test case
type MessageCase struct {
	Name    string
	Raw     string
	WantAck tinttypes.Ack
}

// AssertionHelpers provides common assertion patterns
type AssertionHelpers struct {
	t *testing.T
}

// NewAssertionHelpers creates assertion helpers for a test
func NewAssertionHelpers(t *testing.T) *AssertionHelpers {
	return &AssertionHelpers{t: t}
}

// AssertEventKinds checks the recorded events against an exact kind sequence
func (h *AssertionHelpers) AssertEventKinds(events []tinttypes.Event, expected ...tinttypes.EventKind) {
	require.Len(h.t, events, len(expected), "Event count should match")
	for i, kind := range expected {
		assert.Equal(h.t, kind, events[i].Kind, "Event %d should be %s", i, kind)
	}
}

// AssertSettings checks a settings triple field by field
func (h *AssertionHelpers) AssertSettings(got tinttypes.Settings, theme, font, fontSize string) {
	assert.Equal(h.t, theme, got.Theme, "Theme should match")
	assert.Equal(h.t, font, got.Font, "Font should match")
	assert.Equal(h.t, fontSize, got.FontSize, "Font size should match")
}

// FileHelpers provides utilities for working with test files
type FileHelpers struct{}

// NewFileHelpers creates a new file helpers instance
func NewFileHelpers() *FileHelpers {
	return &FileHelpers{}
}

// CreateTempFile creates a temporary file with given content
func (f *FileHelpers) CreateTempFile(t *testing.T, filename, content string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	err := os.WriteFile(filePath, []byte(content), 0644)
	require.NoError(t, err, "Should create temp file successfully")

	return filePath
}

// CreateStoreFile creates a temporary store file seeded with the given
// key/value pairs and returns its path
func (f *FileHelpers) CreateStoreFile(t *testing.T, values map[string]string) string {
	data, err := json.MarshalIndent(values, "", "  ")
	require.NoError(t, err, "Should marshal store values")

	return f.CreateTempFile(t, "prefs.json", string(data))
}

// BenchmarkHelpers provides utilities for benchmark tests
type BenchmarkHelpers struct{}

// NewBenchmarkHelpers creates a new benchmark helpers instance
func NewBenchmarkHelpers() *BenchmarkHelpers {
	return &BenchmarkHelpers{}
}

// GenerateEventBatch creates a batch of events cycling through every kind
// for bus throughput benchmarks
func (b *BenchmarkHelpers) GenerateEventBatch(count int) []tinttypes.Event {
	kinds := tinttypes.AllEventKinds()
	events := make([]tinttypes.Event, count)
	for i := 0; i < count; i++ {
		events[i] = tinttypes.Event{
			Kind: kinds[i%len(kinds)],
			Settings: tinttypes.Settings{
				Theme:    fmt.Sprintf("theme-%d", i),
				Font:     tinttypes.FontSystem,
				FontSize: tinttypes.SizeMedium,
			},
		}
	}
	return events
}
