package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leafscan/internal/analysis"
	"leafscan/internal/apperr"
	"leafscan/internal/logger"
)

const (
	MsgNoFilePart = "No file part in the request"
	MsgTooLarge   = "File is too large"

	multipartMemory = 32 << 20
)

// AnalysisService defines the behavior consumed by the handlers.
type AnalysisService interface {
	Process(ctx context.Context, file io.Reader, header *multipart.FileHeader, includePlots bool) (*analysis.Result, error)
	Demo(ctx context.Context, includePlots bool) (*analysis.Result, error)
}

// AnalyzeHandler serves the JSON analysis API.
type AnalyzeHandler struct {
	service  AnalysisService
	maxBytes int64
	log      *logger.Logger
}

// NewAnalyzeHandler builds the handler. Request bodies over maxBytes are
// rejected with 413.
func NewAnalyzeHandler(svc AnalysisService, maxBytes int64, log *logger.Logger) *AnalyzeHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &AnalyzeHandler{service: svc, maxBytes: maxBytes, log: log}
}

// HandleAnalyze analyses an uploaded leaf image.
func (h *AnalyzeHandler) HandleAnalyze(c *gin.Context) {
	file, header, err := formFile(c, h.maxBytes)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Close()

	res, err := h.service.Process(c.Request.Context(), file, header, includePlots(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleDemo analyses the bundled sample image.
func (h *AnalyzeHandler) HandleDemo(c *gin.Context) {
	res, err := h.service.Demo(c.Request.Context(), includePlots(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AnalyzeHandler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error("analysis request failed", logger.Fields{"path": c.FullPath(), "error": err.Error()})
	case apperr.IsTooLarge(err):
		h.log.Warn("upload over limit", logger.Fields{"path": c.FullPath(), "limit": h.maxBytes})
	default:
		h.log.Debug("analysis request rejected", logger.Fields{"path": c.FullPath(), "error": err.Error()})
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}

// formFile limits the request body and extracts the "file" part.
func formFile(c *gin.Context, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, apperr.NewTooLarge(MsgTooLarge, err)
		}
		return nil, nil, apperr.NewValidation(MsgNoFilePart, err)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		// Browsers send an empty filename when nothing was chosen, which
		// lands the part among the plain values.
		if _, ok := c.Request.MultipartForm.Value["file"]; ok {
			return nil, nil, apperr.NewValidation(analysis.MsgNoSelection, err)
		}
		return nil, nil, apperr.NewValidation(MsgNoFilePart, err)
	}
	return file, header, nil
}

func includePlots(c *gin.Context) bool {
	return strings.EqualFold(c.Request.FormValue("include_plots"), "true")
}
