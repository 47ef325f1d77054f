// Package render defines the narrow contract between decoded documents and
// output formats. The core knows nothing about renderer internals; a
// renderer takes a document and returns bytes.
package render

import "github.com/k2shbwi/k2sh/pkg/document"

// Renderer turns a document into output bytes for one format.
type Renderer interface {
	// Format names the output format, e.g. "html".
	Format() string
	Render(doc *document.Document) ([]byte, error)
}

// ByFormat returns the built-in renderer for format, or false when the
// format has no in-process implementation (pdf and pptx are produced by
// external converters).
func ByFormat(format string) (Renderer, bool) {
	switch format {
	case "html":
		return NewHTML(), true
	default:
		return nil, false
	}
}
