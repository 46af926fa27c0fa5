// Package theme provides Tint's built-in theme catalog. The preference core
// treats theme names as opaque strings; only the catalog and the applicators
// built on it interpret a name as colors and styles.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"tint/internal/data/embedded"
	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// FallbackName is the theme served for names the catalog cannot resolve.
const FallbackName = "light"

// Theme is a fully loaded catalog entry with lipgloss styles ready for
// terminal rendering and the palette ready for CSS generation.
type Theme struct {
	Name        string
	Description string
	Scheme      tinttypes.Scheme
	Palette     tinttypes.Palette

	Title  lipgloss.Style
	Text   lipgloss.Style
	Accent lipgloss.Style
	Muted  lipgloss.Style
	Badge  lipgloss.Style
}

// Catalog holds the built-in themes loaded from embedded YAML.
type Catalog struct {
	themes map[string]*Theme
	order  []string
}

// NewCatalog creates a catalog with all built-in themes loaded. A theme file
// that fails to parse is replaced by a plain fallback entry so the catalog
// always resolves every built-in name.
func NewCatalog() *Catalog {
	c := &Catalog{themes: make(map[string]*Theme)}
	c.loadThemesFromYAML()
	return c
}

// loadThemesFromYAML loads themes from embedded YAML files
func (c *Catalog) loadThemesFromYAML() {
	themeFiles := []struct {
		name string
		data []byte
	}{
		{"light", embedded.LightThemeData},
		{"dark", embedded.DarkThemeData},
		{"dim", embedded.DimThemeData},
		{"solarized", embedded.SolarizedThemeData},
	}

	for _, tf := range themeFiles {
		theme, err := c.loadThemeFile(tf.data)
		if err != nil {
			logger.Error("Failed to load theme", "theme", tf.name, "error", err)
			c.themes[tf.name] = c.createFallbackTheme(tf.name)
			c.order = append(c.order, tf.name)
			continue
		}
		c.themes[tf.name] = theme
		c.order = append(c.order, tf.name)
	}

	// The fallback name must always resolve
	if _, exists := c.themes[FallbackName]; !exists {
		c.themes[FallbackName] = c.createFallbackTheme(FallbackName)
		c.order = append(c.order, FallbackName)
	}
}

// loadThemeFile parses an individual theme file from embedded YAML data.
func (c *Catalog) loadThemeFile(data []byte) (*Theme, error) {
	var themeFile tinttypes.ThemeFile

	if err := yaml.Unmarshal(data, &themeFile); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	return c.convertThemeConfig(&themeFile.ThemeConfig), nil
}

// convertThemeConfig converts a ThemeConfig from YAML to a Theme with lipgloss styles.
func (c *Catalog) convertThemeConfig(config *tinttypes.ThemeConfig) *Theme {
	scheme := tinttypes.SchemeLight
	if config.Scheme == "dark" {
		scheme = tinttypes.SchemeDark
	}

	return &Theme{
		Name:        config.Name,
		Description: config.Description,
		Scheme:      scheme,
		Palette:     config.Palette,
		Title:       c.createStyle(config.Styles.Title),
		Text:        c.createStyle(config.Styles.Text),
		Accent:      c.createStyle(config.Styles.Accent),
		Muted:       c.createStyle(config.Styles.Muted),
		Badge:       c.createStyle(config.Styles.Badge),
	}
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func (c *Catalog) createStyle(config tinttypes.StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if config.Foreground != nil {
		if color := c.parseColor(config.Foreground); color != nil {
			style = style.Foreground(color)
		}
	}

	if config.Background != nil {
		if color := c.parseColor(config.Background); color != nil {
			style = style.Background(color)
		}
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}

	return style
}

// parseColor parses a color value that can be a string or an adaptive
// light/dark map.
func (c *Catalog) parseColor(colorValue interface{}) lipgloss.TerminalColor {
	switch v := colorValue.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		if light, hasLight := v["light"].(string); hasLight {
			if dark, hasDark := v["dark"].(string); hasDark {
				return lipgloss.AdaptiveColor{Light: light, Dark: dark}
			}
		}
		return nil
	default:
		return nil
	}
}

// createFallbackTheme creates an unstyled light theme for names that must
// resolve even when their YAML is broken.
func (c *Catalog) createFallbackTheme(name string) *Theme {
	return &Theme{
		Name:   name,
		Scheme: tinttypes.SchemeLight,
		Palette: tinttypes.Palette{
			Background: "#ffffff",
			Foreground: "#000000",
			Accent:     "#0969da",
			Muted:      "#57606a",
			Border:     "#d0d7de",
		},
		Title:  lipgloss.NewStyle(),
		Text:   lipgloss.NewStyle(),
		Accent: lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle(),
		Badge:  lipgloss.NewStyle(),
	}
}

// Names returns the built-in theme names in load order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// List returns the catalog listing served to control surfaces, sorted by name.
func (c *Catalog) List() []tinttypes.ThemeInfo {
	infos := make([]tinttypes.ThemeInfo, 0, len(c.themes))
	for _, name := range c.order {
		t := c.themes[name]
		infos = append(infos, tinttypes.ThemeInfo{
			Name:        t.Name,
			Scheme:      string(t.Scheme),
			Description: t.Description,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Lookup returns the theme for an exact (case-insensitive) name.
func (c *Catalog) Lookup(name string) (*Theme, bool) {
	t, ok := c.themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ByName retrieves a theme with case-insensitive matching. It always returns
// a valid theme: unknown names log a debug line and resolve to the fallback.
func (c *Catalog) ByName(name string) *Theme {
	normalized := strings.ToLower(strings.TrimSpace(name))

	if t, exists := c.themes[normalized]; exists {
		return t
	}

	logger.Debug("Unknown theme requested, using fallback", "theme", name, "fallback", FallbackName)
	return c.themes[FallbackName]
}

// SchemeFor maps a nominal theme value to the scheme it renders with.
// "auto" asks the source at call time; a nil source counts as light. Known
// themes answer with their declared scheme and unknown names fall back to
// light, matching ByName.
func (c *Catalog) SchemeFor(value string, src tinttypes.SchemeSource) tinttypes.Scheme {
	if strings.EqualFold(strings.TrimSpace(value), tinttypes.ThemeAuto) {
		if src == nil {
			return tinttypes.SchemeLight
		}
		return src.Current()
	}
	return c.ByName(value).Scheme
}
