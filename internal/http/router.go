package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/MacMoment/coding/internal/http/handlers"
	httpMW "github.com/MacMoment/coding/internal/http/middleware"
	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	Tracing        bool

	AuthMiddleware *httpMW.AuthMiddleware

	GenerationHandler *httpH.GenerationHandler
	FileHandler       *httpH.FileHandler
	TokenHandler      *httpH.TokenHandler
	DocsHandler       *httpH.DocsHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "forgecraft-api"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.TraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events", cfg.RealtimeHandler.Stream)
		}

		// Generation
		if cfg.GenerationHandler != nil {
			protected.POST("/projects/:id/generate", cfg.GenerationHandler.Submit)
			protected.GET("/projects/:id/generations", cfg.GenerationHandler.ListJobs)
			protected.GET("/projects/:id/generations/:jobId", cfg.GenerationHandler.GetJob)
		}

		// Files
		if cfg.FileHandler != nil {
			protected.GET("/projects/:id/files", cfg.FileHandler.ListFiles)
		}

		// Tokens
		if cfg.TokenHandler != nil {
			protected.GET("/tokens/balance", cfg.TokenHandler.Balance)
			protected.GET("/tokens/history", cfg.TokenHandler.History)
			protected.POST("/tokens/daily-claim", cfg.TokenHandler.DailyClaim)
			protected.GET("/tokens/audit", cfg.TokenHandler.Audit)
		}

		// Docs
		if cfg.DocsHandler != nil {
			protected.GET("/docs/stats", cfg.DocsHandler.Stats)
		}
	}

	return r
}
