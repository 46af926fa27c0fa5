package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tint/internal/testutils"
	"tint/pkg/tinttypes"
)

func TestNotifier_Subscribe_ReceivesMatchingKindOnly(t *testing.T) {
	n := NewNotifier()
	collector := testutils.NewEventCollector()
	n.Subscribe(tinttypes.EventThemeChanged, collector.Collect)

	n.Emit(tinttypes.Event{Kind: tinttypes.EventThemeChanged, Settings: tinttypes.Settings{Theme: "dark"}})
	n.Emit(tinttypes.Event{Kind: tinttypes.EventFontChanged, Settings: tinttypes.Settings{Font: "serif"}})
	n.Emit(tinttypes.Event{Kind: tinttypes.EventReset})

	events := collector.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventThemeChanged, events[0].Kind)
	assert.Equal(t, "dark", events[0].Settings.Theme)
}

func TestNotifier_SubscribeAll_ReceivesEveryKind(t *testing.T) {
	n := NewNotifier()
	collector := testutils.NewEventCollector()
	n.SubscribeAll(collector.Collect)

	for _, kind := range tinttypes.AllEventKinds() {
		n.Emit(tinttypes.Event{Kind: kind})
	}

	assert.Equal(t, tinttypes.AllEventKinds(), collector.Kinds())
}

func TestNotifier_Emit_SubscriptionOrder(t *testing.T) {
	n := NewNotifier()

	var order []int
	n.SubscribeAll(func(tinttypes.Event) { order = append(order, 1) })
	n.Subscribe(tinttypes.EventThemeChanged, func(tinttypes.Event) { order = append(order, 2) })
	n.SubscribeAll(func(tinttypes.Event) { order = append(order, 3) })

	n.Emit(tinttypes.Event{Kind: tinttypes.EventThemeChanged})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNotifier_Emit_CarriesFullTriple(t *testing.T) {
	n := NewNotifier()
	collector := testutils.NewEventCollector()
	n.Subscribe(tinttypes.EventFontChanged, collector.Collect)

	settings := tinttypes.Settings{Theme: "dark", Font: "monospace", FontSize: "large"}
	n.Emit(tinttypes.Event{Kind: tinttypes.EventFontChanged, Settings: settings})

	last, ok := collector.Last()
	require.True(t, ok)
	assert.Equal(t, settings, last.Settings)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier()
	collector := testutils.NewEventCollector()
	sub := n.Subscribe(tinttypes.EventThemeChanged, collector.Collect)

	n.Emit(tinttypes.Event{Kind: tinttypes.EventThemeChanged})
	sub.Unsubscribe()
	n.Emit(tinttypes.Event{Kind: tinttypes.EventThemeChanged})

	assert.Len(t, collector.Events(), 1, "No delivery after unsubscribe")

	// Unsubscribing twice is safe
	sub.Unsubscribe()
}

func TestNotifier_Unsubscribe_LeavesOthersActive(t *testing.T) {
	n := NewNotifier()
	kept := testutils.NewEventCollector()
	dropped := testutils.NewEventCollector()

	n.SubscribeAll(kept.Collect)
	sub := n.SubscribeAll(dropped.Collect)
	sub.Unsubscribe()

	n.Emit(tinttypes.Event{Kind: tinttypes.EventReset})

	assert.Len(t, kept.Events(), 1)
	assert.Empty(t, dropped.Events())
}

func TestNotifier_Emit_NoSubscribers(t *testing.T) {
	n := NewNotifier()

	assert.NotPanics(t, func() {
		n.Emit(tinttypes.Event{Kind: tinttypes.EventInitialized})
	})
}

func BenchmarkNotifier_Emit(b *testing.B) {
	n := NewNotifier()
	for i := 0; i < 8; i++ {
		n.SubscribeAll(func(tinttypes.Event) {})
	}

	events := testutils.NewBenchmarkHelpers().GenerateEventBatch(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Emit(events[i%len(events)])
	}
}
