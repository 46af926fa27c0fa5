package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown and fenced code for terminal display
// using glamour, with the style matched to the active theme's scheme.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer whose glamour style follows the
// provider's scheme. With no provider, or when glamour cannot initialize,
// rendering falls back to plain text.
func NewMarkdownRenderer(provider StyleProvider) *MarkdownRenderer {
	schemeName := "auto"
	if provider != nil && provider.IsAvailable() {
		schemeName = provider.SchemeName()
	}

	var renderer *glamour.TermRenderer
	var err error

	if schemeName != "" && schemeName != "auto" {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath(schemeName),
			glamour.WithWordWrap(80),
		)
	}

	if renderer == nil || err != nil {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
			glamour.WithEnvironmentConfig(),
		)
	}

	if err != nil {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			renderer = nil
		}
	}

	return &MarkdownRenderer{renderer: renderer}
}

// Render renders a markdown document. On failure the source is returned
// unchanged so content is never lost.
func (m *MarkdownRenderer) Render(markdown string) string {
	if m.renderer == nil {
		return markdown
	}
	rendered, err := m.renderer.Render(markdown)
	if err != nil || strings.TrimSpace(rendered) == "" {
		return markdown
	}
	return rendered
}

// RenderCodeBlock renders code as a fenced block with optional syntax
// highlighting.
func (m *MarkdownRenderer) RenderCodeBlock(code, language string) string {
	if m.renderer != nil {
		var markdown string
		if language != "" {
			markdown = "```" + language + "\n" + code + "\n```"
		} else {
			markdown = "```\n" + code + "\n```"
		}
		rendered, err := m.renderer.Render(markdown)
		if err == nil && strings.TrimSpace(rendered) != "" {
			return strings.TrimSpace(rendered)
		}
	}
	return indentCode(code)
}

// IsAvailable reports whether glamour rendering is active.
func (m *MarkdownRenderer) IsAvailable() bool {
	return m.renderer != nil
}

func indentCode(code string) string {
	lines := strings.Split(code, "\n")
	result := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			result[i] = "  " + line
		} else {
			result[i] = line
		}
	}
	return strings.Join(result, "\n")
}
