package theme

// fontStacks maps the well-known font values to concrete CSS family stacks.
// The selection mirrors what reading surfaces ship by default; an unknown
// value is assumed to already be a usable family name.
var fontStacks = map[string]string{
	"system":     `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", sans-serif`,
	"serif":      `Georgia, "Times New Roman", Times, serif`,
	"sans-serif": `"Helvetica Neue", Helvetica, Arial, sans-serif`,
	"monospace":  `"SF Mono", Consolas, "Liberation Mono", Menlo, monospace`,
	"cursive":    `"Apple Chancery", "Comic Sans MS", cursive`,
}

// sizeScale maps the font size steps to pixel values for web surfaces.
var sizeScale = map[string]string{
	"small":       "14px",
	"medium":      "16px",
	"large":       "18px",
	"extra-large": "20px",
}

// FontStack returns the CSS font-family stack for a font value. Unknown
// values pass through unchanged so custom family names keep working.
func FontStack(font string) string {
	if stack, ok := fontStacks[font]; ok {
		return stack
	}
	return font
}

// FontSizePx returns the pixel size for a font size step. Unknown steps
// resolve to the medium size.
func FontSizePx(size string) string {
	if px, ok := sizeScale[size]; ok {
		return px
	}
	return sizeScale["medium"]
}

// FontNames returns the well-known font values in presentation order.
func FontNames() []string {
	return []string{"system", "serif", "sans-serif", "monospace", "cursive"}
}

// SizeNames returns the font size steps from smallest to largest.
func SizeNames() []string {
	return []string{"small", "medium", "large", "extra-large"}
}
