// Package output renders console output for the tint CLI.
// Styling is injected through the StyleProvider interface so commands stay
// decoupled from the theme catalog and degrade to plain text anywhere.
package output

import "github.com/muesli/termenv"

// StyleProvider supplies styled text rendering for semantic output types.
// The theme catalog implements it through ThemeStyleProvider; tests use
// MockStyleProvider.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable reports whether the provider is ready to style text.
	// When false the printer falls back to plain rendering.
	IsAvailable() bool

	// SchemeName returns "light", "dark", or "auto". Markdown rendering
	// uses it to pick a matching glamour style.
	SchemeName() string
}

// TextStyle renders a piece of text. lipgloss styles are wrapped to fit
// this signature.
type TextStyle interface {
	Render(text string) string
}

// Mode selects how the printer renders output.
type Mode int

const (
	// ModeAuto styles output when a provider is available, plain otherwise.
	ModeAuto Mode = iota

	// ModeStyled forces styled output.
	ModeStyled

	// ModePlain forces plain text output.
	ModePlain

	// ModeJSON emits one JSON object per line for machine consumption.
	ModeJSON
)

// Semantic output types. Status semantics carry fixed colors; identity
// semantics map onto the active theme's styles.
const (
	SemanticPlain   = "plain"
	SemanticInfo    = "info"
	SemanticSuccess = "success"
	SemanticWarning = "warning"
	SemanticError   = "error"

	SemanticTitle  = "title"
	SemanticAccent = "accent"
	SemanticMuted  = "muted"
	SemanticBadge  = "badge"
)

// SupportsColor reports whether stdout can render ANSI colors. NO_COLOR
// and dumb terminals both disable styling.
func SupportsColor() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}
