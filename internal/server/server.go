package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leafscan/internal/analysis"
	"leafscan/internal/config"
	"leafscan/internal/logger"
	"leafscan/internal/report"
	"leafscan/internal/server/handler"
	"leafscan/internal/server/router"
	"leafscan/internal/server/service"
	"leafscan/internal/server/store"
)

const shutdownTimeout = 30 * time.Second

// NewEngine builds the dependency chain for cfg and returns the router
// together with the store backing the report links.
func NewEngine(cfg *config.Config, log *logger.Logger) (*gin.Engine, *store.Store) {
	processor := analysis.NewProcessor()
	processor.MaxPixels = cfg.MaxImagePixels
	analysisService := service.NewAnalysisService(processor, service.Settings{
		UploadDir:   cfg.UploadDir,
		KeepUploads: cfg.KeepUploads,
		DemoImage:   cfg.DemoImage,
	}, log)

	results := store.New(cfg.StoreSize, cfg.ResultTTL)
	analyzeHandler := handler.NewAnalyzeHandler(analysisService, cfg.MaxUploadBytes, log)
	pageHandler := handler.NewPageHandler(analysisService, results, report.NewExporter(), cfg.MaxUploadBytes, cfg.MaxImagePixels, log)

	return router.New(cfg.APIKey, log, analyzeHandler, pageHandler), results
}

// Run starts the HTTP server and shuts it down gracefully once ctx is done.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Get()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := log.OpenFile(cfg.LogFile); err != nil {
			return err
		}
		defer log.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine, results := NewEngine(cfg, log)
	go sweep(ctx, results, cfg.ResultTTL, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.Fields{"addr": srv.Addr, "mode": cfg.Mode})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped", nil)
	return nil
}

func sweep(ctx context.Context, results *store.Store, ttl time.Duration, log *logger.Logger) {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := results.Sweep(); n > 0 {
				log.Debug("expired results removed", logger.Fields{"count": n})
			}
		}
	}
}
