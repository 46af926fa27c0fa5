// Package applicator implements the rendering-surface side of preference
// application. Applicators are intentionally dumb: they translate one
// dimension's value into surface state and never answer back, so the
// controller stays the single source of truth.
package applicator

import (
	"tint/internal/document"
	"tint/internal/theme"
	"tint/pkg/tinttypes"
)

// DocumentApplicator writes preference values onto a document's root
// attributes. The theme dimension writes two attributes: the nominal value
// and the resolved color scheme. "auto" resolves through the scheme source
// on every apply, so repainting after a system change is just re-applying.
type DocumentApplicator struct {
	doc     *document.Document
	catalog *theme.Catalog
	schemes tinttypes.SchemeSource
}

// NewDocumentApplicator creates an applicator over the given document.
// The scheme source may be nil, in which case "auto" renders light.
func NewDocumentApplicator(doc *document.Document, catalog *theme.Catalog, schemes tinttypes.SchemeSource) *DocumentApplicator {
	return &DocumentApplicator{doc: doc, catalog: catalog, schemes: schemes}
}

// Apply writes one dimension's value to the document.
func (a *DocumentApplicator) Apply(d tinttypes.Dimension, value string) {
	switch d {
	case tinttypes.DimensionTheme:
		a.doc.SetAttribute(document.AttrTheme, value)
		a.doc.SetAttribute(document.AttrColorScheme, string(a.catalog.SchemeFor(value, a.schemes)))
	case tinttypes.DimensionFont:
		a.doc.SetAttribute(document.AttrFont, value)
	case tinttypes.DimensionFontSize:
		a.doc.SetAttribute(document.AttrFontSize, value)
	}
}

// Document returns the underlying document for inspection.
func (a *DocumentApplicator) Document() *document.Document {
	return a.doc
}

// Multi fans one Apply out to several applicators in order.
func Multi(applicators ...tinttypes.Applicator) tinttypes.Applicator {
	return multiApplicator(applicators)
}

type multiApplicator []tinttypes.Applicator

func (m multiApplicator) Apply(d tinttypes.Dimension, value string) {
	for _, a := range m {
		a.Apply(d, value)
	}
}

// Func adapts a function to the Applicator interface.
type Func func(d tinttypes.Dimension, value string)

// Apply calls the wrapped function.
func (f Func) Apply(d tinttypes.Dimension, value string) {
	f(d, value)
}
