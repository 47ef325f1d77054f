package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/container"
	"github.com/k2shbwi/k2sh/pkg/document"
)

// HTML renders a document as a standalone HTML page: metadata table plus a
// kind-specific summary. Layout is deliberately minimal; anything fancier
// belongs in an external converter.
type HTML struct {
	tmpl *template.Template
}

// NewHTML creates the HTML renderer.
func NewHTML() *HTML {
	return &HTML{tmpl: template.Must(template.New("page").Parse(htmlPage))}
}

// Format returns "html".
func (h *HTML) Format() string { return "html" }

type htmlMetaRow struct {
	Key    string
	Value  string
	Binary bool
	Bytes  int
}

type htmlData struct {
	Title   string
	Kind    string
	Summary string
	Meta    []htmlMetaRow
}

// Render produces the HTML page for doc.
func (h *HTML) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	data := htmlData{
		Title: "K2SH document",
		Kind:  doc.Kind.String(),
	}
	if title, ok := doc.Meta("title"); ok {
		data.Title = title
	}

	switch doc.Kind {
	case document.KindRasterImage:
		data.Summary = rasterSummary(doc.Raster)
	case document.KindVectorScene:
		data.Summary = vectorSummary(doc.Vector)
	}

	for _, e := range doc.Metadata() {
		row := htmlMetaRow{Key: e.Key, Bytes: len(e.Value)}
		if e.Type == container.ValueText {
			row.Value = string(e.Value)
		} else {
			row.Binary = true
		}
		data.Meta = append(data.Meta, row)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "rendering html")
	}
	return buf.Bytes(), nil
}

func rasterSummary(img *document.RasterImage) string {
	if img == nil {
		return "raster image (empty)"
	}
	return "raster image " + strconv.Itoa(int(img.Width)) + "×" + strconv.Itoa(int(img.Height)) +
		", " + strconv.Itoa(int(img.Channels)) + " channels"
}

func vectorSummary(scene *document.VectorScene) string {
	if scene == nil {
		return "vector scene (empty)"
	}
	points := 0
	for _, s := range scene.Strokes {
		points += len(s.Points)
	}
	return "vector scene, " + strconv.Itoa(len(scene.Strokes)) + " strokes, " + strconv.Itoa(points) + " points"
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Kind}}: {{.Summary}}</p>
<table>
<tr><th>Key</th><th>Value</th></tr>
{{range .Meta}}<tr><td>{{.Key}}</td><td>{{if .Binary}}({{.Bytes}} binary bytes){{else}}{{.Value}}{{end}}</td></tr>
{{end}}</table>
</body>
</html>
`
