package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tint/internal/scheme"
	"tint/internal/store"
	"tint/internal/testutils"
	"tint/pkg/tinttypes"
)

// testRig wires a controller to fake collaborators.
type testRig struct {
	controller *Controller
	store      *store.MemoryStore
	applicator *testutils.RecordingApplicator
	schemes    *scheme.Static
	events     *testutils.EventCollector
}

func newTestRig(cfg tinttypes.Config, seed map[string]string) *testRig {
	rig := &testRig{
		store:      store.NewMemoryStore(),
		applicator: testutils.NewRecordingApplicator(),
		schemes:    scheme.NewStatic(tinttypes.SchemeLight),
		events:     testutils.NewEventCollector(),
	}
	rig.store.Seed(seed)
	rig.controller = New(cfg, Options{
		Store:      rig.store,
		Applicator: rig.applicator,
		Schemes:    rig.schemes,
	})
	rig.controller.SubscribeAll(rig.events.Collect)
	return rig
}

// startQuiet starts the controller and drops the setup noise so tests
// assert only on the activity they trigger.
func (r *testRig) startQuiet() {
	r.controller.Start()
	r.events.Clear()
	r.applicator.Clear()
}

func TestNew_DefaultsWithEmptyStore(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertSettings(rig.controller.Settings(),
		tinttypes.ThemeLight, tinttypes.FontSystem, tinttypes.SizeMedium)
}

func TestNew_ResolvesStoredValues(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, map[string]string{
		"tint-theme":    "dark",
		"tint-fontSize": "large",
	})

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertSettings(rig.controller.Settings(),
		tinttypes.ThemeDark, tinttypes.FontSystem, tinttypes.SizeLarge)
}

func TestNew_StoreReadFailureFallsBackToDefaults(t *testing.T) {
	failing := store.NewMemoryStore()
	failing.Seed(map[string]string{"tint-theme": "dark"})
	failing.Fail(true)

	c := New(tinttypes.Config{}, Options{Store: failing})

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertSettings(c.Settings(),
		tinttypes.ThemeLight, tinttypes.FontSystem, tinttypes.SizeMedium)
}

func TestNew_CustomPrefixAndDefaults(t *testing.T) {
	cfg := tinttypes.Config{
		DefaultTheme:  "dark",
		StoragePrefix: "reader",
	}
	rig := newTestRig(cfg, map[string]string{
		"reader-font": "serif",
		"tint-font":   "monospace", // wrong prefix, must be ignored
	})

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertSettings(rig.controller.Settings(),
		tinttypes.ThemeDark, tinttypes.FontSerif, tinttypes.SizeMedium)
}

func TestController_Start(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, map[string]string{"tint-theme": "dark"})

	assert.Empty(t, rig.events.Events(), "Nothing fires before Start")
	assert.Empty(t, rig.applicator.Applied(), "Nothing is applied before Start")

	rig.controller.Start()

	events := rig.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventInitialized, events[0].Kind)
	assert.Equal(t, "dark", events[0].Settings.Theme)

	applied := rig.applicator.Applied()
	require.Len(t, applied, 3)
	assert.Equal(t, tinttypes.DimensionTheme, applied[0].Dimension)
	assert.Equal(t, tinttypes.DimensionFont, applied[1].Dimension)
	assert.Equal(t, tinttypes.DimensionFontSize, applied[2].Dimension)

	rig.controller.Start()
	assert.Len(t, rig.events.Events(), 1, "Start is once-only")
}

func TestController_SetDimension(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")

	assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))

	last, ok := rig.applicator.LastFor(tinttypes.DimensionTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", last)

	events := rig.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventThemeChanged, events[0].Kind)
	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertSettings(events[0].Settings, "dark", tinttypes.FontSystem, tinttypes.SizeMedium)

	rig.controller.Flush()
	stored, err := rig.store.Get([]string{"tint-theme"})
	require.NoError(t, err)
	assert.Equal(t, "dark", stored["tint-theme"])
}

func TestController_SetDimension_EmitsOnUnchangedValue(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionFont, "serif")
	rig.controller.SetDimension(tinttypes.DimensionFont, "serif")

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertEventKinds(rig.events.Events(),
		tinttypes.EventFontChanged, tinttypes.EventFontChanged)
}

func TestController_SetDimension_UnknownDimensionIgnored(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.Dimension("margin"), "wide")

	assert.Empty(t, rig.events.Events())
	assert.Empty(t, rig.applicator.Applied())
}

func TestController_SetDimension_StoreFailureKeepsMemory(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()
	rig.store.Fail(true)

	rig.controller.SetDimension(tinttypes.DimensionFontSize, "large")
	rig.controller.Flush()

	assert.Equal(t, "large", rig.controller.GetDimension(tinttypes.DimensionFontSize),
		"Memory wins even when the write fails")
	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventFontSizeChanged)

	rig.store.Fail(false)
	stored, err := rig.store.Get([]string{"tint-fontSize"})
	require.NoError(t, err)
	assert.NotContains(t, stored, "tint-fontSize", "Failed write leaves no value behind")
}

func TestController_Reset(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.controller.SetDimension(tinttypes.DimensionFont, "serif")
	rig.controller.SetDimension(tinttypes.DimensionFontSize, "large")
	rig.events.Clear()

	rig.controller.Reset()

	helpers := testutils.NewAssertionHelpers(t)
	events := rig.events.Events()
	helpers.AssertEventKinds(events,
		tinttypes.EventThemeChanged,
		tinttypes.EventFontChanged,
		tinttypes.EventFontSizeChanged,
		tinttypes.EventReset,
	)

	// Snapshots converge dimension by dimension
	helpers.AssertSettings(events[0].Settings, tinttypes.ThemeLight, "serif", "large")
	helpers.AssertSettings(events[1].Settings, tinttypes.ThemeLight, tinttypes.FontSystem, "large")
	helpers.AssertSettings(events[3].Settings, tinttypes.ThemeLight, tinttypes.FontSystem, tinttypes.SizeMedium)

	helpers.AssertSettings(rig.controller.Settings(),
		tinttypes.ThemeLight, tinttypes.FontSystem, tinttypes.SizeMedium)
}

func TestController_Reset_EmitsEvenWhenAlreadyDefault(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.Reset()

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertEventKinds(rig.events.Events(),
		tinttypes.EventThemeChanged,
		tinttypes.EventFontChanged,
		tinttypes.EventFontSizeChanged,
		tinttypes.EventReset,
	)
}

func TestController_ClearPersisted(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.controller.Flush()
	rig.events.Clear()

	rig.controller.ClearPersisted()
	rig.controller.Flush()

	stored, err := rig.store.Get(rig.controller.Config().StorageKeys())
	require.NoError(t, err)
	assert.Empty(t, stored, "Persisted keys are gone")

	assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme),
		"Memory stays live until restart")

	events := rig.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventStorageCleared, events[0].Kind)
	assert.Equal(t, "dark", events[0].Settings.Theme)
}

func TestController_ToggleTheme(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"light goes dark", "light", "dark"},
		{"dark goes light", "dark", "light"},
		{"auto goes dark", "auto", "dark"},
		{"custom theme goes dark", "solarized", "dark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(tinttypes.Config{}, nil)
			rig.startQuiet()
			rig.controller.SetDimension(tinttypes.DimensionTheme, tt.from)
			rig.events.Clear()

			rig.controller.ToggleTheme()

			assert.Equal(t, tt.want, rig.controller.GetDimension(tinttypes.DimensionTheme))
			helpers := testutils.NewAssertionHelpers(t)
			helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventThemeChanged)
		})
	}
}

func TestController_BindControl(t *testing.T) {
	t.Run("pushes current value on bind", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, map[string]string{"tint-theme": "dark"})
		control := testutils.NewMockControl("")

		rig.controller.BindControl(tinttypes.DimensionTheme, control)

		assert.Equal(t, "dark", control.Value())
		assert.Equal(t, []string{"dark"}, control.Pushed())
	})

	t.Run("no push when control already matches", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, nil)
		control := testutils.NewMockControl("light")

		rig.controller.BindControl(tinttypes.DimensionTheme, control)

		assert.Empty(t, control.Pushed())
	})

	t.Run("control signal drives the full path", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, nil)
		rig.startQuiet()
		control := testutils.NewMockControl("light")
		rig.controller.BindControl(tinttypes.DimensionTheme, control)

		control.Fire("dark")

		assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))
		helpers := testutils.NewAssertionHelpers(t)
		helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventThemeChanged)

		last, ok := rig.applicator.LastFor(tinttypes.DimensionTheme)
		require.True(t, ok)
		assert.Equal(t, "dark", last)

		assert.Empty(t, control.Pushed(), "No resync echo when the control already shows the value")

		rig.controller.Flush()
		stored, err := rig.store.Get([]string{"tint-theme"})
		require.NoError(t, err)
		assert.Equal(t, "dark", stored["tint-theme"])
	})

	t.Run("external set resyncs the control once", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, nil)
		rig.startQuiet()
		control := testutils.NewMockControl("light")
		rig.controller.BindControl(tinttypes.DimensionTheme, control)

		rig.controller.SetDimension(tinttypes.DimensionTheme, "dim")

		assert.Equal(t, "dim", control.Value())
		assert.Equal(t, []string{"dim"}, control.Pushed())
		helpers := testutils.NewAssertionHelpers(t)
		helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventThemeChanged)
	})

	t.Run("rebinding replaces the previous control", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, nil)
		rig.startQuiet()
		first := testutils.NewMockControl("light")
		second := testutils.NewMockControl("light")

		rig.controller.BindControl(tinttypes.DimensionTheme, first)
		rig.controller.BindControl(tinttypes.DimensionTheme, second)

		assert.False(t, first.Bound())
		assert.True(t, second.Bound())

		first.Fire("dark")
		assert.Equal(t, tinttypes.ThemeLight, rig.controller.GetDimension(tinttypes.DimensionTheme),
			"A replaced control no longer drives the controller")
	})

	t.Run("nil control is tolerated", func(t *testing.T) {
		rig := newTestRig(tinttypes.Config{}, nil)

		assert.NotPanics(t, func() {
			rig.controller.BindControl(tinttypes.DimensionTheme, nil)
		})
	})
}

func TestController_SchemeChange_RepaintsAutoWithoutEvent(t *testing.T) {
	cfg := tinttypes.Config{AutoDetectSystemTheme: true}
	rig := newTestRig(cfg, nil)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionTheme, tinttypes.ThemeAuto)
	rig.events.Clear()
	rig.applicator.Clear()

	rig.schemes.Set(tinttypes.SchemeDark)

	applied := rig.applicator.Applied()
	require.Len(t, applied, 1, "Exactly one repaint")
	assert.Equal(t, tinttypes.DimensionTheme, applied[0].Dimension)
	assert.Equal(t, tinttypes.ThemeAuto, applied[0].Value)
	assert.Empty(t, rig.events.Events(), "A repaint is not a value change")
}

func TestController_SchemeChange_IgnoredWhenNotAuto(t *testing.T) {
	cfg := tinttypes.Config{AutoDetectSystemTheme: true}
	rig := newTestRig(cfg, nil)
	rig.startQuiet()

	rig.schemes.Set(tinttypes.SchemeDark)

	assert.Empty(t, rig.applicator.Applied())
	assert.Empty(t, rig.events.Events())
}

func TestController_SchemeChange_IgnoredWhenDetectionDisabled(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()
	rig.controller.SetDimension(tinttypes.DimensionTheme, tinttypes.ThemeAuto)
	rig.applicator.Clear()

	rig.schemes.Set(tinttypes.SchemeDark)

	assert.Empty(t, rig.applicator.Applied())
}

func TestController_WatchStore(t *testing.T) {
	cfg := tinttypes.Config{WatchStore: true}

	t.Run("adopts external writes", func(t *testing.T) {
		rig := newTestRig(cfg, nil)
		rig.startQuiet()

		require.NoError(t, rig.store.Set("tint-theme", "dark"))

		assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))
		helpers := testutils.NewAssertionHelpers(t)
		helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventThemeChanged)
	})

	t.Run("ignores removals", func(t *testing.T) {
		rig := newTestRig(cfg, nil)
		rig.startQuiet()
		rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
		rig.controller.Flush()
		rig.events.Clear()

		require.NoError(t, rig.store.Remove([]string{"tint-theme"}))

		assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))
		assert.Empty(t, rig.events.Events())
	})

	t.Run("ignores writes matching memory", func(t *testing.T) {
		rig := newTestRig(cfg, nil)
		rig.startQuiet()

		require.NoError(t, rig.store.Set("tint-theme", "light"))

		assert.Empty(t, rig.events.Events())
	})

	t.Run("own persists do not echo", func(t *testing.T) {
		rig := newTestRig(cfg, nil)
		rig.startQuiet()

		rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
		rig.controller.Flush()

		helpers := testutils.NewAssertionHelpers(t)
		helpers.AssertEventKinds(rig.events.Events(), tinttypes.EventThemeChanged)
	})

	t.Run("ignores foreign keys", func(t *testing.T) {
		rig := newTestRig(cfg, nil)
		rig.startQuiet()

		require.NoError(t, rig.store.Set("other-app-theme", "dark"))

		assert.Empty(t, rig.events.Events())
		assert.Equal(t, tinttypes.ThemeLight, rig.controller.GetDimension(tinttypes.DimensionTheme))
	})
}

func TestController_Teardown(t *testing.T) {
	cfg := tinttypes.Config{AutoDetectSystemTheme: true, WatchStore: true}
	rig := newTestRig(cfg, nil)
	rig.startQuiet()

	control := testutils.NewMockControl("light")
	rig.controller.BindControl(tinttypes.DimensionTheme, control)
	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.events.Clear()

	rig.controller.Teardown()

	events := rig.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventDestroyed, events[0].Kind)
	assert.Equal(t, "dark", events[0].Settings.Theme)

	assert.False(t, control.Bound(), "Controls are unbound")

	stored, err := rig.store.Get([]string{"tint-theme"})
	require.NoError(t, err)
	assert.Equal(t, "dark", stored["tint-theme"], "Pending writes drain before destroyed")

	// Dead signals stay dead
	rig.events.Clear()
	rig.applicator.Clear()
	control.Fire("light")
	rig.schemes.Set(tinttypes.SchemeDark)
	require.NoError(t, rig.store.Set("tint-font", "serif"))

	assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))
	assert.Equal(t, tinttypes.FontSystem, rig.controller.GetDimension(tinttypes.DimensionFont))
	assert.Empty(t, rig.events.Events())
	assert.Empty(t, rig.applicator.Applied())
}

func TestController_ApplyAll(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)

	rig.controller.ApplyAll()

	events := rig.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tinttypes.EventInitialized, events[0].Kind, "First apply counts as Start")

	rig.events.Clear()
	rig.applicator.Clear()

	rig.controller.ApplyAll()

	assert.Empty(t, rig.events.Events(), "Re-apply emits nothing")
	assert.Len(t, rig.applicator.Applied(), 3, "Every dimension is repainted")
}

func TestController_ApplyAll_ResyncsDriftedControl(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	rig.startQuiet()

	control := testutils.NewMockControl("light")
	rig.controller.BindControl(tinttypes.DimensionTheme, control)

	// Simulate display drift
	control.SetValue("dark")

	rig.controller.ApplyAll()

	assert.Equal(t, tinttypes.ThemeLight, control.Value())
}

func TestController_NilCollaborators(t *testing.T) {
	c := New(tinttypes.Config{}, Options{})
	collector := testutils.NewEventCollector()
	c.SubscribeAll(collector.Collect)

	assert.NotPanics(t, func() {
		c.Start()
		c.SetDimension(tinttypes.DimensionTheme, "dark")
		c.ToggleTheme()
		c.Reset()
		c.ClearPersisted()
		c.Flush()
		c.Teardown()
	})

	kinds := collector.Kinds()
	assert.Equal(t, tinttypes.EventInitialized, kinds[0])
	assert.Equal(t, tinttypes.EventDestroyed, kinds[len(kinds)-1])
}

func TestController_SubscribeSingleKind(t *testing.T) {
	rig := newTestRig(tinttypes.Config{}, nil)
	themeOnly := testutils.NewEventCollector()
	rig.controller.Subscribe(tinttypes.EventThemeChanged, themeOnly.Collect)
	rig.startQuiet()

	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.controller.SetDimension(tinttypes.DimensionFont, "serif")

	helpers := testutils.NewAssertionHelpers(t)
	helpers.AssertEventKinds(themeOnly.Events(), tinttypes.EventThemeChanged)
}
