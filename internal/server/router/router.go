package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leafscan/internal/logger"
	"leafscan/internal/server/middleware"
)

// AnalyzeHandler defines the JSON analysis endpoints.
type AnalyzeHandler interface {
	HandleAnalyze(c *gin.Context)
	HandleDemo(c *gin.Context)
}

// PageHandler defines the server-rendered page endpoints.
type PageHandler interface {
	Index(c *gin.Context)
	Analyze(c *gin.Context)
	Report(c *gin.Context)
}

// New wires up handlers to the Gin engine.
func New(apiKey string, log *logger.Logger, analyze AnalyzeHandler, page PageHandler) *gin.Engine {
	if log == nil {
		log = logger.Discard()
	}
	r := gin.New()
	r.Use(middleware.WithRecovery(log), middleware.WithRequestLog(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/", page.Index)
	r.POST("/analyze", page.Analyze)
	r.GET("/report/:id", page.Report)

	api := r.Group("/api", middleware.WithAPIKey(apiKey))
	{
		api.POST("/analyze", analyze.HandleAnalyze)
		api.GET("/analyze-demo", analyze.HandleDemo)
	}

	return r
}
