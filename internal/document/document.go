// Package document models the root element of a rendering surface as a
// small attribute map. Styling hooks (CSS attribute selectors on web
// surfaces, the terminal renderer here) key off these attributes, so
// applying a preference means writing an attribute.
package document

import "sync"

// Attribute names written by the preference applicators.
const (
	// AttrTheme carries the nominal theme value, including "auto".
	AttrTheme = "data-theme"

	// AttrFont carries the font family value.
	AttrFont = "data-font"

	// AttrFontSize carries the font size value.
	AttrFontSize = "data-font-size"

	// AttrColorScheme carries the resolved light/dark scheme the surface
	// actually renders with. For "auto" this differs from AttrTheme.
	AttrColorScheme = "data-color-scheme"
)

// Document is a concurrency-safe attribute map standing in for a surface's
// root element.
type Document struct {
	mu    sync.RWMutex
	attrs map[string]string
}

// New creates an empty document.
func New() *Document {
	return &Document{attrs: make(map[string]string)}
}

// SetAttribute writes an attribute, replacing any previous value.
func (d *Document) SetAttribute(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attrs[name] = value
}

// Attribute returns an attribute value and whether it is set.
func (d *Document) Attribute(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.attrs[name]
	return v, ok
}

// RemoveAttribute deletes an attribute if present.
func (d *Document) RemoveAttribute(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.attrs, name)
}

// Attributes returns a copy of all attributes.
func (d *Document) Attributes() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.attrs))
	for k, v := range d.attrs {
		out[k] = v
	}
	return out
}
