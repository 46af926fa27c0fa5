// Package tinttypes defines theme-related data structures for Tint's
// catalog and rendering surfaces. This file contains the types for theme
// definitions loaded from YAML.
package tinttypes

// ThemeConfig represents a theme definition loaded from YAML. The core
// preference engine treats theme names as opaque strings; only the catalog
// and catalog-backed applicators interpret these definitions.
type ThemeConfig struct {
	// Name is the theme identifier (e.g. "light", "dark", "dim").
	Name string `yaml:"name" json:"name"`

	// Description provides a brief description of the theme.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Scheme declares whether the theme renders light or dark. It is what
	// "auto" resolution maps onto and what data-color-scheme reports.
	Scheme string `yaml:"scheme" json:"scheme"`

	// Palette contains the CSS-facing semantic colors.
	Palette Palette `yaml:"palette" json:"palette"`

	// Styles contains the terminal-facing style definitions.
	Styles ThemeStyles `yaml:"styles" json:"styles"`
}

// Palette defines the semantic color slots a theme exposes to web surfaces
// as CSS custom properties.
type Palette struct {
	// Background is the page background color.
	Background string `yaml:"background" json:"background"`

	// Foreground is the primary text color.
	Foreground string `yaml:"foreground" json:"foreground"`

	// Accent is the interactive/highlight color.
	Accent string `yaml:"accent" json:"accent"`

	// Muted is the secondary text color.
	Muted string `yaml:"muted" json:"muted"`

	// Border is the separator/outline color.
	Border string `yaml:"border" json:"border"`
}

// ThemeStyles defines the styling configuration for terminal rendering
// surfaces. Each slot can specify colors and text decorations.
type ThemeStyles struct {
	// Title style for headings and the surface banner.
	Title StyleConfig `yaml:"title" json:"title"`

	// Text style for body text.
	Text StyleConfig `yaml:"text" json:"text"`

	// Accent style for the currently selected values.
	Accent StyleConfig `yaml:"accent" json:"accent"`

	// Muted style for labels and secondary text.
	Muted StyleConfig `yaml:"muted" json:"muted"`

	// Badge style for the scheme indicator.
	Badge StyleConfig `yaml:"badge" json:"badge"`
}

// StyleConfig defines the visual styling for a single slot. It supports both
// simple color strings and adaptive colors for light/dark terminals.
type StyleConfig struct {
	// Foreground color - hex color, named color, or adaptive color object.
	Foreground interface{} `yaml:"foreground,omitempty" json:"foreground,omitempty"`

	// Background color - hex color, named color, or adaptive color object.
	Background interface{} `yaml:"background,omitempty" json:"background,omitempty"`

	// Bold text decoration.
	Bold *bool `yaml:"bold,omitempty" json:"bold,omitempty"`

	// Italic text decoration.
	Italic *bool `yaml:"italic,omitempty" json:"italic,omitempty"`

	// Underline text decoration.
	Underline *bool `yaml:"underline,omitempty" json:"underline,omitempty"`
}

// AdaptiveColor defines colors that adapt to light and dark terminal
// backgrounds.
type AdaptiveColor struct {
	// Light color for light terminal backgrounds.
	Light string `yaml:"light" json:"light"`

	// Dark color for dark terminal backgrounds.
	Dark string `yaml:"dark" json:"dark"`
}

// ThemeFile represents a complete theme file loaded from YAML.
type ThemeFile struct {
	ThemeConfig `yaml:",inline" json:",inline"`
}

// ThemeInfo is the catalog listing entry served to control surfaces.
type ThemeInfo struct {
	// Name is the theme identifier.
	Name string `json:"name"`

	// Scheme is "light" or "dark".
	Scheme string `json:"scheme"`

	// Description is the theme's short description.
	Description string `json:"description,omitempty"`
}
