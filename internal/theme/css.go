package theme

import (
	"fmt"
	"sort"
	"strings"
)

// CSSVariables returns the custom properties a theme exposes to web
// surfaces, combined with the font and size preferences.
func CSSVariables(t *Theme, font, size string) map[string]string {
	return map[string]string{
		"--tint-bg":        t.Palette.Background,
		"--tint-text":      t.Palette.Foreground,
		"--tint-accent":    t.Palette.Accent,
		"--tint-muted":     t.Palette.Muted,
		"--tint-border":    t.Palette.Border,
		"--tint-font":      FontStack(font),
		"--tint-font-size": FontSizePx(size),
	}
}

// RenderCSS renders the custom properties as a :root block, with variables
// in stable sorted order.
func RenderCSS(t *Theme, font, size string) string {
	vars := CSSVariables(t, font, size)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", k, vars[k])
	}
	b.WriteString("}\n")
	return b.String()
}
