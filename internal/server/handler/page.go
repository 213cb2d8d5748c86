package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"leafscan/internal/apperr"
	"leafscan/internal/logger"
	"leafscan/internal/page"
	"leafscan/internal/render"
	"leafscan/internal/report"
	"leafscan/internal/result"
	"leafscan/internal/server/store"
)

const MsgReportNotFound = "Report not found"

// ReportExporter writes the PDF report of a result.
type ReportExporter interface {
	Export(ctx context.Context, w io.Writer, res result.Result, preview *report.Image) error
}

// PageHandler serves the server-rendered upload page.
type PageHandler struct {
	service   AnalysisService
	store     *store.Store
	exporter  ReportExporter
	maxBytes  int64
	maxPixels int64
	log       *logger.Logger
}

// NewPageHandler builds the handler.
func NewPageHandler(svc AnalysisService, results *store.Store, exporter ReportExporter, maxBytes, maxPixels int64, log *logger.Logger) *PageHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &PageHandler{service: svc, store: results, exporter: exporter, maxBytes: maxBytes, maxPixels: maxPixels, log: log}
}

// Index renders the empty upload page.
func (h *PageHandler) Index(c *gin.Context) {
	h.page(c, http.StatusOK, render.PageData{Preview: placeholder()})
}

// Analyze runs an uploaded form through the analysis and renders the page
// with its result.
func (h *PageHandler) Analyze(c *gin.Context) {
	data := render.PageData{Preview: placeholder()}

	file, header, err := formFile(c, h.maxBytes)
	if err != nil {
		h.failPage(c, data, err)
		return
	}
	defer file.Close()
	data.IncludePlots = includePlots(c)

	content, err := io.ReadAll(file)
	if err != nil {
		h.failPage(c, data, apperr.NewValidation(MsgNoFilePart, err))
		return
	}

	thumb, dataURL, _ := page.Thumbnail(content, h.maxPixels)
	if header.Filename != "" {
		if preview, err := render.HTML(func(w io.Writer) error {
			return render.Preview(w, dataURL, header.Filename)
		}); err == nil {
			data.Preview = preview
			data.HasImage = true
		}
	}

	raw, err := h.service.Process(c.Request.Context(), bytes.NewReader(content), header, data.IncludePlots)
	if err != nil {
		h.failPage(c, data, err)
		return
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		h.failPage(c, data, apperr.NewProcessing("encode analysis", err))
		return
	}
	res, err := result.Normalize(payload)
	if err != nil {
		h.failPage(c, data, err)
		return
	}

	id := h.store.Put(res, thumb)
	html, err := render.HTML(func(w io.Writer) error {
		return render.Result(w, res, render.Actions{ReportURL: "/report/" + id, NewAnalysisURL: "/"})
	})
	if err != nil {
		h.failPage(c, data, apperr.NewProcessing("render result", err))
		return
	}
	data.Result = html
	h.log.Info("page analysis rendered", logger.Fields{"id": id, "file": header.Filename, "diagnosis": res.Diagnosis})
	h.page(c, http.StatusOK, data)
}

// Report streams the PDF report of a stored result.
func (h *PageHandler) Report(c *gin.Context) {
	entry, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": MsgReportNotFound})
		return
	}

	buf := &bytes.Buffer{}
	if err := h.exporter.Export(c.Request.Context(), buf, entry.Result, entry.Preview); err != nil {
		h.log.Error("report generation failed", logger.Fields{"id": entry.ID, "error": err.Error()})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *PageHandler) failPage(c *gin.Context, data render.PageData, err error) {
	html, renderErr := render.HTML(func(w io.Writer) error {
		return render.Error(w, apperr.Message(err), render.Actions{TryAgainURL: "/"})
	})
	if renderErr != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apperr.Message(err)})
		return
	}
	h.log.Debug("page analysis failed", logger.Fields{"error": err.Error()})
	data.Result = html
	h.page(c, apperr.HTTPStatus(err), data)
}

func (h *PageHandler) page(c *gin.Context, status int, data render.PageData) {
	buf := &bytes.Buffer{}
	if err := render.Page(buf, data); err != nil {
		h.log.Error("render page", logger.Fields{"error": err.Error()})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "render page"})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func placeholder() template.HTML {
	html, err := render.HTML(render.Placeholder)
	if err != nil {
		return ""
	}
	return html
}
