package app

import (
	"gorm.io/gorm"

	fchttp "github.com/MacMoment/coding/internal/http"
	httpH "github.com/MacMoment/coding/internal/http/handlers"
	httpMW "github.com/MacMoment/coding/internal/http/middleware"
	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
	File       *httpH.FileHandler
	Token      *httpH.TokenHandler
	Docs       *httpH.DocsHandler
	Realtime   *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Generation: httpH.NewGenerationHandler(services.Generations),
		File:       httpH.NewFileHandler(services.Generations),
		Token:      httpH.NewTokenHandler(services.Ledger),
		Docs:       httpH.NewDocsHandler(services.Docs),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *fchttp.Server {
	return fchttp.NewServer(fchttp.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		Metrics:           metrics,
		Tracing:           cfg.OtelEnabled,
		AuthMiddleware:    middleware.Auth,
		GenerationHandler: handlers.Generation,
		FileHandler:       handlers.File,
		TokenHandler:      handlers.Token,
		DocsHandler:       handlers.Docs,
		RealtimeHandler:   handlers.Realtime,
		HealthHandler:     handlers.Health,
	})
}
