package output

import (
	"github.com/charmbracelet/lipgloss"

	"tint/internal/theme"
)

// Status colors are fixed across themes so success stays green and errors
// stay red no matter which theme is active.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// lipglossStyle adapts a lipgloss.Style to the TextStyle interface.
type lipglossStyle struct {
	style lipgloss.Style
}

func (s lipglossStyle) Render(text string) string {
	return s.style.Render(text)
}

// ThemeStyleProvider exposes a catalog theme's styles to the printer.
// Identity semantics come from the theme, status semantics use the fixed
// status colors.
type ThemeStyleProvider struct {
	theme *theme.Theme
}

// NewThemeStyleProvider creates a provider backed by the given theme.
func NewThemeStyleProvider(t *theme.Theme) *ThemeStyleProvider {
	return &ThemeStyleProvider{theme: t}
}

// GetStyle implements StyleProvider.GetStyle.
func (p *ThemeStyleProvider) GetStyle(semantic string) TextStyle {
	switch semantic {
	case SemanticTitle:
		return lipglossStyle{p.theme.Title}
	case SemanticAccent:
		return lipglossStyle{p.theme.Accent}
	case SemanticMuted:
		return lipglossStyle{p.theme.Muted}
	case SemanticBadge:
		return lipglossStyle{p.theme.Badge}
	case SemanticInfo:
		return lipglossStyle{p.theme.Text}
	case SemanticSuccess:
		return lipglossStyle{successStyle}
	case SemanticWarning:
		return lipglossStyle{warningStyle}
	case SemanticError:
		return lipglossStyle{errorStyle}
	default:
		return lipglossStyle{lipgloss.NewStyle()}
	}
}

// IsAvailable implements StyleProvider.IsAvailable.
func (p *ThemeStyleProvider) IsAvailable() bool {
	return p.theme != nil
}

// SchemeName implements StyleProvider.SchemeName.
func (p *ThemeStyleProvider) SchemeName() string {
	if p.theme == nil {
		return "auto"
	}
	return string(p.theme.Scheme)
}

// PlainTextStyle renders text with an optional semantic prefix and no colors.
type PlainTextStyle struct {
	prefix string
}

// NewPlainTextStyle creates a plain text style with an optional prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.Render.
func (p *PlainTextStyle) Render(text string) string {
	if p.prefix != "" {
		return p.prefix + text
	}
	return text
}

// PlainStyleProvider is the fallback provider when no theme is available or
// plain mode is forced. Status semantics keep a textual prefix so meaning
// survives without color.
type PlainStyleProvider struct{}

// NewPlainStyleProvider creates a plain style provider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{}
}

// GetStyle implements StyleProvider.GetStyle.
func (p *PlainStyleProvider) GetStyle(semantic string) TextStyle {
	switch semantic {
	case SemanticSuccess:
		return NewPlainTextStyle("✓ ")
	case SemanticWarning:
		return NewPlainTextStyle("⚠ ")
	case SemanticError:
		return NewPlainTextStyle("✗ ")
	case SemanticInfo:
		return NewPlainTextStyle("ℹ ")
	default:
		return NewPlainTextStyle("")
	}
}

// IsAvailable implements StyleProvider.IsAvailable.
func (p *PlainStyleProvider) IsAvailable() bool {
	return true
}

// SchemeName implements StyleProvider.SchemeName.
func (p *PlainStyleProvider) SchemeName() string {
	return "auto"
}
