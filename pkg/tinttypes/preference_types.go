// Package tinttypes defines the core data structures for Tint's preference
// system. This file contains the preference dimensions, the resolved settings
// triple, and the controller configuration.
package tinttypes

import (
	"fmt"
	"strings"
)

// Dimension identifies one of the three independent preference axes.
// The set is fixed and closed; there are no dynamic dimensions.
type Dimension string

const (
	// DimensionTheme is the visual theme axis (e.g. "light", "dark", "auto").
	DimensionTheme Dimension = "theme"

	// DimensionFont is the font family axis (e.g. "system", "serif").
	DimensionFont Dimension = "font"

	// DimensionFontSize is the font size axis (e.g. "small", "medium").
	DimensionFontSize Dimension = "fontSize"
)

// AllDimensions returns the fixed ordered set of preference dimensions.
func AllDimensions() []Dimension {
	return []Dimension{DimensionTheme, DimensionFont, DimensionFontSize}
}

// Valid reports whether d is one of the three known dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionTheme, DimensionFont, DimensionFontSize:
		return true
	default:
		return false
	}
}

// String returns the wire name of the dimension.
func (d Dimension) String() string {
	return string(d)
}

// ParseDimension converts external input into a Dimension. It accepts the
// wire names ("theme", "font", "fontSize") plus the kebab-case form used in
// URL paths ("font-size").
func ParseDimension(s string) (Dimension, error) {
	switch strings.TrimSpace(s) {
	case "theme":
		return DimensionTheme, nil
	case "font":
		return DimensionFont, nil
	case "fontSize", "font-size", "fontsize":
		return DimensionFontSize, nil
	default:
		return "", fmt.Errorf("unknown preference dimension: %q", s)
	}
}

// Well-known preference values. The value set per dimension is open: the
// core passes unknown strings through unchanged, and only catalog-backed
// applicators fall back for names they cannot resolve.
const (
	// ThemeLight is the built-in light theme.
	ThemeLight = "light"
	// ThemeDark is the built-in dark theme.
	ThemeDark = "dark"
	// ThemeAuto tracks the host system's color scheme at apply time.
	ThemeAuto = "auto"

	// FontSystem uses the platform's default UI font stack.
	FontSystem = "system"
	// FontSerif selects a serif stack.
	FontSerif = "serif"
	// FontSansSerif selects a sans-serif stack.
	FontSansSerif = "sans-serif"
	// FontMonospace selects a monospace stack.
	FontMonospace = "monospace"
	// FontCursive selects a cursive stack.
	FontCursive = "cursive"

	// SizeSmall is the small font size step.
	SizeSmall = "small"
	// SizeMedium is the medium (default) font size step.
	SizeMedium = "medium"
	// SizeLarge is the large font size step.
	SizeLarge = "large"
	// SizeExtraLarge is the extra-large font size step.
	SizeExtraLarge = "extra-large"
)

// Settings is the fully resolved preference triple. It is always complete
// once a controller has initialized it; there is no partially-defined state.
type Settings struct {
	// Theme is the current visual theme value.
	Theme string `json:"theme" yaml:"theme"`

	// Font is the current font family value.
	Font string `json:"font" yaml:"font"`

	// FontSize is the current font size value.
	FontSize string `json:"fontSize" yaml:"fontSize"`
}

// Get returns the value for the given dimension. Unknown dimensions yield
// the empty string.
func (s Settings) Get(d Dimension) string {
	switch d {
	case DimensionTheme:
		return s.Theme
	case DimensionFont:
		return s.Font
	case DimensionFontSize:
		return s.FontSize
	default:
		return ""
	}
}

// With returns a copy of s with the given dimension replaced.
func (s Settings) With(d Dimension, value string) Settings {
	switch d {
	case DimensionTheme:
		s.Theme = value
	case DimensionFont:
		s.Font = value
	case DimensionFontSize:
		s.FontSize = value
	}
	return s
}

// Partial converts the full triple into a PartialSettings with every field
// present, as used by full applySettings broadcasts.
func (s Settings) Partial() PartialSettings {
	theme, font, size := s.Theme, s.Font, s.FontSize
	return PartialSettings{Theme: &theme, Font: &font, FontSize: &size}
}

// PartialSettings carries an optional value per dimension. Absent fields are
// left untouched by receivers; present fields are applied independently.
type PartialSettings struct {
	// Theme, when non-nil, is the theme value to apply.
	Theme *string `json:"theme,omitempty" yaml:"theme,omitempty"`

	// Font, when non-nil, is the font value to apply.
	Font *string `json:"font,omitempty" yaml:"font,omitempty"`

	// FontSize, when non-nil, is the font size value to apply.
	FontSize *string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
}

// Get returns the value for the given dimension and whether it is present.
func (p PartialSettings) Get(d Dimension) (string, bool) {
	switch d {
	case DimensionTheme:
		if p.Theme != nil {
			return *p.Theme, true
		}
	case DimensionFont:
		if p.Font != nil {
			return *p.Font, true
		}
	case DimensionFontSize:
		if p.FontSize != nil {
			return *p.FontSize, true
		}
	}
	return "", false
}

// IsEmpty reports whether no dimension is present.
func (p PartialSettings) IsEmpty() bool {
	return p.Theme == nil && p.Font == nil && p.FontSize == nil
}

// Config is the immutable controller configuration supplied at construction.
// Control bindings are injected separately via Controller.BindControl; a
// dimension without a bound control is silently tolerated.
type Config struct {
	// DefaultTheme is the theme used when the store has no value.
	DefaultTheme string `json:"defaultTheme" yaml:"defaultTheme"`

	// DefaultFont is the font used when the store has no value.
	DefaultFont string `json:"defaultFont" yaml:"defaultFont"`

	// DefaultFontSize is the font size used when the store has no value.
	DefaultFontSize string `json:"defaultFontSize" yaml:"defaultFontSize"`

	// StoragePrefix namespaces the persisted keys
	// ("<prefix>-theme", "<prefix>-font", "<prefix>-fontSize").
	StoragePrefix string `json:"storagePrefix" yaml:"storagePrefix"`

	// AutoDetectSystemTheme subscribes the controller to the host system's
	// dark/light signal; the signal only affects rendering while the theme
	// value is exactly "auto".
	AutoDetectSystemTheme bool `json:"autoDetectSystemTheme" yaml:"autoDetectSystemTheme"`

	// WatchStore resyncs the controller when the underlying store reports an
	// external change. Off by default: without it, contexts stay divergent
	// until the next explicit sync.
	WatchStore bool `json:"watchStore" yaml:"watchStore"`
}

// Normalize returns a copy of the config with empty fields replaced by the
// built-in defaults (light / system / medium, prefix "tint").
func (c Config) Normalize() Config {
	if c.DefaultTheme == "" {
		c.DefaultTheme = ThemeLight
	}
	if c.DefaultFont == "" {
		c.DefaultFont = FontSystem
	}
	if c.DefaultFontSize == "" {
		c.DefaultFontSize = SizeMedium
	}
	if c.StoragePrefix == "" {
		c.StoragePrefix = "tint"
	}
	return c
}

// Defaults returns the configured default triple.
func (c Config) Defaults() Settings {
	return Settings{Theme: c.DefaultTheme, Font: c.DefaultFont, FontSize: c.DefaultFontSize}
}

// KeyFor returns the namespaced storage key for a dimension.
func (c Config) KeyFor(d Dimension) string {
	return c.StoragePrefix + "-" + string(d)
}

// StorageKeys returns the three namespaced storage keys in dimension order.
func (c Config) StorageKeys() []string {
	keys := make([]string, 0, 3)
	for _, d := range AllDimensions() {
		keys = append(keys, c.KeyFor(d))
	}
	return keys
}
