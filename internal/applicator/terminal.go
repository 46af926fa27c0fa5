package applicator

import (
	"fmt"
	"strings"
	"sync"

	"tint/internal/theme"
	"tint/pkg/tinttypes"
)

// TerminalApplicator renders the current preference triple as styled
// terminal output. It is the CLI's stand-in for a web rendering surface:
// each Apply repaints the tracked state with the active theme's styles.
type TerminalApplicator struct {
	mu      sync.RWMutex
	catalog *theme.Catalog
	schemes tinttypes.SchemeSource
	current tinttypes.Settings
}

// NewTerminalApplicator creates a terminal applicator. The scheme source
// may be nil, in which case "auto" renders light.
func NewTerminalApplicator(catalog *theme.Catalog, schemes tinttypes.SchemeSource) *TerminalApplicator {
	return &TerminalApplicator{catalog: catalog, schemes: schemes}
}

// Apply updates one dimension of the tracked state.
func (a *TerminalApplicator) Apply(d tinttypes.Dimension, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = a.current.With(d, value)
}

// Current returns the tracked triple.
func (a *TerminalApplicator) Current() tinttypes.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Render paints the tracked triple with the active theme's styles. The
// scheme badge reflects what the theme resolves to right now, so "auto"
// renders differently as the system flips between light and dark.
func (a *TerminalApplicator) Render() string {
	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()

	th := a.catalog.ByName(current.Theme)
	resolved := a.catalog.SchemeFor(current.Theme, a.schemes)

	var b strings.Builder
	b.WriteString(th.Title.Render("Tint preferences"))
	b.WriteString("\n")

	rows := []struct {
		label string
		value string
	}{
		{"theme", current.Theme},
		{"font", current.Font},
		{"fontSize", current.FontSize},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			th.Muted.Render(fmt.Sprintf("%-9s", row.label)),
			th.Accent.Render(row.value)))
	}

	b.WriteString(fmt.Sprintf("  %s %s\n",
		th.Muted.Render(fmt.Sprintf("%-9s", "renders")),
		th.Badge.Render(" "+string(resolved)+" ")))

	return b.String()
}
