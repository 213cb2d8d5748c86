// Package report writes the analysis of a leaf image as a PDF document.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"leafscan/internal/result"
)

// Filename is the suggested name of a downloaded report.
const Filename = "leaf-analysis-report.pdf"

const (
	pageWidth     = 210.0
	pageCenter    = pageWidth / 2
	marginLeft    = 20.0
	contentWidth  = 170.0
	pageBreakAt   = 270.0
	lineHeight    = 7.0
	tableRowH     = 8.0
	previewWidth  = 80.0
	previewHeight = 60.0
)

var (
	primary = [3]int{76, 204, 163}
	body    = [3]int{60, 60, 60}
	muted   = [3]int{100, 100, 100}
	faint   = [3]int{150, 150, 150}
)

// Image is a preview image embedded at the top of the report.
type Image struct {
	// Type is "JPG" or "PNG".
	Type string
	Data []byte
}

// Exporter renders reports. The zero value is not usable; call NewExporter.
type Exporter struct {
	engine   *loader
	now      func() time.Time
	compress bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock fixes the timestamp printed in the report.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithCompression toggles stream compression in the output.
func WithCompression(on bool) Option {
	return func(e *Exporter) { e.compress = on }
}

// NewExporter returns an Exporter whose PDF backend is loaded on first use.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		engine:   newLoader(loadEngine),
		now:      time.Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the report for res to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, res result.Result, preview *Image) error {
	eng, err := e.engine.acquire(ctx)
	if err != nil {
		return fmt.Errorf("load pdf engine: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Leaf Nutrient Deficiency Analysis", true)
	pdf.SetCreationDate(e.now())

	now := e.now()
	doc := &document{pdf: pdf, tr: eng.translate}
	pdf.SetFooterFunc(func() { doc.footer(now.Year()) })
	pdf.AddPage()

	doc.header(now)
	if preview != nil && len(preview.Data) > 0 {
		doc.image(preview)
	}
	if res.HasDiagnosis() {
		doc.diagnosis(res)
	}
	if len(res.Recommendations) > 0 {
		doc.recommendations(res.Recommendations)
	}
	if len(res.Colors) > 0 {
		doc.colorTable(res.Colors)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// document tracks the write position while laying out sections top to bottom.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (d *document) color(c [3]int) {
	d.pdf.SetTextColor(c[0], c[1], c[2])
}

func (d *document) centered(y float64, text string) {
	text = d.tr(text)
	d.pdf.Text(pageCenter-d.pdf.GetStringWidth(text)/2, y, text)
}

// ensure starts a new page when h more millimetres would not fit.
func (d *document) ensure(h float64) {
	if d.y+h <= pageBreakAt {
		return
	}
	d.pdf.AddPage()
	d.y = 20
}

func (d *document) header(now time.Time) {
	d.pdf.SetFont("Helvetica", "", 20)
	d.color(primary)
	d.centered(20, "Leaf Nutrient Deficiency Analysis")

	d.pdf.SetFont("Helvetica", "", 10)
	d.color(muted)
	d.centered(30, "Report generated: "+now.Format("1/2/2006, 3:04:05 PM"))

	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.Line(marginLeft, 35, marginLeft+contentWidth, 35)
	d.y = 45
}

func (d *document) image(img *Image) {
	imageType := strings.ToUpper(img.Type)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	d.pdf.RegisterImageOptionsReader("preview", opts, bytes.NewReader(img.Data))
	if d.pdf.Err() {
		return
	}
	d.pdf.ImageOptions("preview", pageCenter-previewWidth/2, d.y, previewWidth, previewHeight, false, opts, 0, "")
	d.y += previewHeight + 5
}

func (d *document) sectionTitle(title string) {
	d.ensure(20)
	d.pdf.SetFont("Helvetica", "", 16)
	d.color(primary)
	d.pdf.Text(marginLeft, d.y, d.tr(title))
	d.y += 10
}

func (d *document) diagnosis(res result.Result) {
	d.sectionTitle("Detected Deficiency")

	d.pdf.SetFont("Helvetica", "", 14)
	d.color(body)
	d.pdf.Text(marginLeft, d.y, d.tr(res.Diagnosis))
	d.y += 10

	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.Text(marginLeft, d.y, fmt.Sprintf("Confidence: %d%%", res.SeverityPercent()))
	d.y += 15
}

func (d *document) recommendations(recs []string) {
	d.sectionTitle("Recommendations")

	d.pdf.SetFont("Helvetica", "", 12)
	d.color(body)
	for _, rec := range recs {
		for _, line := range d.pdf.SplitLines([]byte(d.tr(rec)), contentWidth) {
			d.ensure(lineHeight)
			d.pdf.Text(marginLeft, d.y, string(line))
			d.y += lineHeight
		}
	}
	d.y += 10
}

func (d *document) colorTable(colors []result.ColorShare) {
	d.sectionTitle("Color Analysis")

	col := contentWidth / 2
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(primary[0], primary[1], primary[2])
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.SetXY(marginLeft, d.y-5)
	d.pdf.CellFormat(col, tableRowH, "Color", "1", 0, "L", true, 0, "")
	d.pdf.CellFormat(col, tableRowH, "Percentage", "1", 1, "L", true, 0, "")
	d.y += tableRowH

	d.pdf.SetFont("Helvetica", "", 11)
	d.color(body)
	for _, c := range colors {
		d.ensure(tableRowH)
		d.pdf.SetXY(marginLeft, d.y-5)
		d.pdf.CellFormat(col, tableRowH, d.tr(c.Name), "1", 0, "L", false, 0, "")
		d.pdf.CellFormat(col, tableRowH, result.FormatPercent(c.Value), "1", 1, "L", false, 0, "")
		d.y += tableRowH
	}
	d.y += 15
}

func (d *document) footer(year int) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.color(faint)
	d.centered(285, "Leaf Nutrient Deficiency Analyzer")
	d.centered(290, fmt.Sprintf("© %d All Rights Reserved", year))
}
