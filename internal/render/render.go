// Package render builds the HTML fragments of the analysis page: the preview
// container, the result cards and the error box.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"leafscan/internal/result"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"percent": result.FormatPercent,
	"pngURL":  pngURL,
}).ParseFS(templateFS, "templates/*.html"))

// Actions holds the targets of the result and error buttons. Empty URLs
// render plain buttons for a scripted page.
type Actions struct {
	ReportURL      string
	NewAnalysisURL string
	TryAgainURL    string
}

// PageData fills the upload page.
type PageData struct {
	Preview      template.HTML
	HasImage     bool
	IncludePlots bool
	Loading      bool
	Result       template.HTML
}

// Result renders the result cards followed by the summary block.
func Result(w io.Writer, res result.Result, actions Actions) error {
	return templates.ExecuteTemplate(w, "result", struct {
		Result  result.Result
		Actions Actions
	}{res, actions})
}

// Error renders the error box with its "Try Again" action.
func Error(w io.Writer, message string, actions Actions) error {
	return templates.ExecuteTemplate(w, "error", struct {
		Message string
		Actions Actions
	}{message, actions})
}

// Preview renders a selected image and its filename.
func Preview(w io.Writer, dataURL, filename string) error {
	if !strings.HasPrefix(dataURL, "data:image/") {
		dataURL = ""
	}
	return templates.ExecuteTemplate(w, "preview", struct {
		DataURL  template.URL
		Filename string
	}{template.URL(dataURL), filename})
}

// Placeholder renders the empty preview container.
func Placeholder(w io.Writer) error {
	return templates.ExecuteTemplate(w, "placeholder", nil)
}

// Page renders the complete upload page.
func Page(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page", data)
}

// HTML captures the output of a render function as trusted markup.
func HTML(fn func(io.Writer) error) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func pngURL(data string) template.URL {
	return template.URL("data:image/png;base64," + data)
}
