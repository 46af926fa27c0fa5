package tinttypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDimension tests the dimension enum and parsing behavior
func TestDimension(t *testing.T) {
	t.Run("AllDimensions returns the fixed ordered set", func(t *testing.T) {
		dims := AllDimensions()
		assert.Equal(t, []Dimension{DimensionTheme, DimensionFont, DimensionFontSize}, dims)
	})

	t.Run("Valid accepts only the three dimensions", func(t *testing.T) {
		assert.True(t, DimensionTheme.Valid())
		assert.True(t, DimensionFont.Valid())
		assert.True(t, DimensionFontSize.Valid())
		assert.False(t, Dimension("color").Valid())
		assert.False(t, Dimension("").Valid())
	})

	t.Run("ParseDimension accepts wire and kebab forms", func(t *testing.T) {
		cases := map[string]Dimension{
			"theme":     DimensionTheme,
			"font":      DimensionFont,
			"fontSize":  DimensionFontSize,
			"font-size": DimensionFontSize,
			"fontsize":  DimensionFontSize,
			" theme ":   DimensionTheme,
		}
		for input, want := range cases {
			got, err := ParseDimension(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got, "input %q", input)
		}
	})

	t.Run("ParseDimension rejects unknown input", func(t *testing.T) {
		_, err := ParseDimension("contrast")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown preference dimension")
	})
}

// TestSettings tests the resolved triple helpers
func TestSettings(t *testing.T) {
	s := Settings{Theme: ThemeDark, Font: FontSerif, FontSize: SizeLarge}

	t.Run("Get returns the value per dimension", func(t *testing.T) {
		assert.Equal(t, ThemeDark, s.Get(DimensionTheme))
		assert.Equal(t, FontSerif, s.Get(DimensionFont))
		assert.Equal(t, SizeLarge, s.Get(DimensionFontSize))
		assert.Equal(t, "", s.Get(Dimension("bogus")))
	})

	t.Run("With replaces only the named dimension", func(t *testing.T) {
		next := s.With(DimensionTheme, ThemeLight)
		assert.Equal(t, ThemeLight, next.Theme)
		assert.Equal(t, s.Font, next.Font)
		assert.Equal(t, s.FontSize, next.FontSize)
		// original untouched
		assert.Equal(t, ThemeDark, s.Theme)
	})

	t.Run("Partial carries every dimension", func(t *testing.T) {
		p := s.Partial()
		for _, d := range AllDimensions() {
			v, ok := p.Get(d)
			require.True(t, ok, "dimension %s", d)
			assert.Equal(t, s.Get(d), v)
		}
		assert.False(t, p.IsEmpty())
	})
}

// TestPartialSettings tests optional-field behavior
func TestPartialSettings(t *testing.T) {
	t.Run("absent fields report not present", func(t *testing.T) {
		theme := ThemeDark
		p := PartialSettings{Theme: &theme}

		v, ok := p.Get(DimensionTheme)
		assert.True(t, ok)
		assert.Equal(t, ThemeDark, v)

		_, ok = p.Get(DimensionFont)
		assert.False(t, ok)
		_, ok = p.Get(DimensionFontSize)
		assert.False(t, ok)
	})

	t.Run("IsEmpty", func(t *testing.T) {
		assert.True(t, PartialSettings{}.IsEmpty())
		font := FontMonospace
		assert.False(t, PartialSettings{Font: &font}.IsEmpty())
	})

	t.Run("JSON omits absent fields", func(t *testing.T) {
		theme := ThemeDark
		raw, err := json.Marshal(PartialSettings{Theme: &theme})
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"dark"}`, string(raw))
	})
}

// TestConfig tests normalization and storage key derivation
func TestConfig(t *testing.T) {
	t.Run("Normalize fills built-in defaults", func(t *testing.T) {
		c := Config{}.Normalize()
		assert.Equal(t, ThemeLight, c.DefaultTheme)
		assert.Equal(t, FontSystem, c.DefaultFont)
		assert.Equal(t, SizeMedium, c.DefaultFontSize)
		assert.Equal(t, "tint", c.StoragePrefix)
	})

	t.Run("Normalize preserves explicit values", func(t *testing.T) {
		c := Config{DefaultTheme: ThemeDark, StoragePrefix: "reader"}.Normalize()
		assert.Equal(t, ThemeDark, c.DefaultTheme)
		assert.Equal(t, "reader", c.StoragePrefix)
		assert.Equal(t, FontSystem, c.DefaultFont)
	})

	t.Run("storage keys are namespaced per dimension", func(t *testing.T) {
		c := Config{StoragePrefix: "reader"}.Normalize()
		assert.Equal(t, "reader-theme", c.KeyFor(DimensionTheme))
		assert.Equal(t, "reader-font", c.KeyFor(DimensionFont))
		assert.Equal(t, "reader-fontSize", c.KeyFor(DimensionFontSize))
		assert.Equal(t, []string{"reader-theme", "reader-font", "reader-fontSize"}, c.StorageKeys())
	})

	t.Run("Defaults returns the configured triple", func(t *testing.T) {
		c := Config{DefaultTheme: ThemeDark, DefaultFont: FontSerif, DefaultFontSize: SizeSmall}
		assert.Equal(t, Settings{Theme: ThemeDark, Font: FontSerif, FontSize: SizeSmall}, c.Defaults())
	})
}

// TestActions tests the message action variant
func TestActions(t *testing.T) {
	t.Run("ActionForDimension round-trips with Dimension", func(t *testing.T) {
		for _, d := range AllDimensions() {
			a := ActionForDimension(d)
			require.True(t, a.Known())
			back, ok := a.Dimension()
			require.True(t, ok)
			assert.Equal(t, d, back)
		}
	})

	t.Run("applySettings has no single dimension", func(t *testing.T) {
		_, ok := ActionApplySettings.Dimension()
		assert.False(t, ok)
		assert.True(t, ActionApplySettings.Known())
	})

	t.Run("unknown tags are not known", func(t *testing.T) {
		assert.False(t, Action("setContrast").Known())
		assert.False(t, Action("").Known())
	})
}

// TestMessages tests message construction and JSON shape
func TestMessages(t *testing.T) {
	t.Run("NewSetMessage fills the matching field", func(t *testing.T) {
		m := NewSetMessage(DimensionFontSize, SizeExtraLarge)
		assert.Equal(t, ActionSetFontSize, m.Action)
		assert.Equal(t, SizeExtraLarge, m.FontSize)
		assert.Equal(t, SizeExtraLarge, m.Value())
		assert.Empty(t, m.Theme)
		assert.Empty(t, m.Font)
		assert.Nil(t, m.Settings)
	})

	t.Run("NewApplyMessage carries the partial payload", func(t *testing.T) {
		theme := ThemeDark
		m := NewApplyMessage(PartialSettings{Theme: &theme})
		assert.Equal(t, ActionApplySettings, m.Action)
		require.NotNil(t, m.Settings)
		v, ok := m.Settings.Get(DimensionTheme)
		assert.True(t, ok)
		assert.Equal(t, ThemeDark, v)
		assert.Empty(t, m.Value())
	})

	t.Run("wire shape matches the message contract", func(t *testing.T) {
		raw, err := json.Marshal(NewSetMessage(DimensionTheme, ThemeDark))
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"setTheme","theme":"dark"}`, string(raw))

		var decoded Message
		require.NoError(t, json.Unmarshal([]byte(`{"action":"setFont","font":"serif"}`), &decoded))
		assert.Equal(t, ActionSetFont, decoded.Action)
		assert.Equal(t, FontSerif, decoded.Value())
	})
}

// TestAcks tests acknowledgment helpers
func TestAcks(t *testing.T) {
	ok := AckOK()
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Error)

	failed := AckFailure("unknown action")
	assert.False(t, failed.Success)
	assert.Equal(t, "unknown action", failed.Error)

	raw, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"unknown action"}`, string(raw))
}

// TestEventKinds tests the notification contract
func TestEventKinds(t *testing.T) {
	t.Run("EventKindForDimension", func(t *testing.T) {
		assert.Equal(t, EventThemeChanged, EventKindForDimension(DimensionTheme))
		assert.Equal(t, EventFontChanged, EventKindForDimension(DimensionFont))
		assert.Equal(t, EventFontSizeChanged, EventKindForDimension(DimensionFontSize))
		assert.Equal(t, EventKind(""), EventKindForDimension(Dimension("bogus")))
	})

	t.Run("AllEventKinds covers the contract", func(t *testing.T) {
		kinds := AllEventKinds()
		assert.Len(t, kinds, 7)
		assert.Contains(t, kinds, EventInitialized)
		assert.Contains(t, kinds, EventStorageCleared)
		assert.Contains(t, kinds, EventDestroyed)
	})
}
