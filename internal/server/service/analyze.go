package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"

	"leafscan/internal/analysis"
	"leafscan/internal/apperr"
	"leafscan/internal/logger"
)

const MsgDemoNotFound = "Demo image not found"

// Processor defines the analysis dependency.
type Processor interface {
	Analyze(ctx context.Context, imagePath string, opts analysis.Options) (*analysis.Result, error)
}

// Settings controls where uploads go and which image the demo uses.
type Settings struct {
	UploadDir   string
	KeepUploads bool
	DemoImage   string
}

// AnalysisService validates uploads and runs the leaf analysis on them.
type AnalysisService struct {
	processor Processor
	settings  Settings
	log       *logger.Logger
}

// NewAnalysisService creates AnalysisService.
func NewAnalysisService(proc Processor, settings Settings, log *logger.Logger) *AnalysisService {
	if settings.UploadDir == "" {
		settings.UploadDir = os.TempDir()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AnalysisService{processor: proc, settings: settings, log: log}
}

// Process persists the uploaded image and analyses it. The upload is removed
// afterwards unless uploads are kept.
func (s *AnalysisService) Process(ctx context.Context, file io.Reader, header *multipart.FileHeader, includePlots bool) (*analysis.Result, error) {
	if header == nil || header.Filename == "" {
		return nil, apperr.NewValidation(analysis.MsgNoSelection, nil)
	}
	if !analysis.AllowedFile(header.Filename) {
		return nil, apperr.NewValidation(analysis.MsgBadExtension, nil)
	}

	path, cleanup, err := analysis.SaveUploadedFile(file, s.settings.UploadDir, header.Filename)
	if err != nil {
		return nil, apperr.NewProcessing("persist upload ("+header.Filename+")", err)
	}
	if !s.settings.KeepUploads {
		defer cleanup()
	}

	s.log.Debug("analysing upload", logger.Fields{"file": header.Filename, "path": path, "plots": includePlots})
	return s.analyze(ctx, path, includePlots)
}

// Demo analyses the configured sample image.
func (s *AnalysisService) Demo(ctx context.Context, includePlots bool) (*analysis.Result, error) {
	if s.settings.DemoImage == "" {
		return nil, apperr.NewNotFound(MsgDemoNotFound, nil)
	}
	if _, err := os.Stat(s.settings.DemoImage); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NewNotFound(MsgDemoNotFound, err)
		}
		return nil, apperr.NewProcessing("stat demo image", err)
	}
	return s.analyze(ctx, s.settings.DemoImage, includePlots)
}

func (s *AnalysisService) analyze(ctx context.Context, path string, includePlots bool) (*analysis.Result, error) {
	res, err := s.processor.Analyze(ctx, path, analysis.Options{IncludePlots: includePlots})
	if err != nil {
		return nil, apperr.Wrap(err, "analysis failed", apperr.ErrorTypeProcessing)
	}
	if res.Error != "" {
		s.log.Warn("image could not be analysed", logger.Fields{"path": path, "error": res.Error})
	}
	return res, nil
}
