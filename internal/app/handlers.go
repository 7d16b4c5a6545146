package app

import (
	httpapi "github.com/yungbote/continuity-backend/internal/http"
	"github.com/yungbote/continuity-backend/internal/http/handlers"
	"github.com/yungbote/continuity-backend/internal/http/middleware"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Knowledge *handlers.KnowledgeHandler
	Handover  *handlers.HandoverHandler
	SPOF      *handlers.SPOFHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    handlers.NewHealthHandler(),
		Auth:      handlers.NewAuthHandler(log, services.Auth, cfg.CookieSecure),
		User:      handlers.NewUserHandler(log, services.User),
		Knowledge: handlers.NewKnowledgeHandler(log, services.Knowledge),
		Handover:  handlers.NewHandoverHandler(log, services.Handover),
		SPOF:      handlers.NewSPOFHandler(log, services.SPOF),
	}
}

func routerConfig(log *logger.Logger, cfg Config, services Services, h Handlers, metrics *observability.Metrics) httpapi.RouterConfig {
	return httpapi.RouterConfig{
		Log:              log,
		ServiceName:      cfg.OtelServiceName,
		FrontendOrigins:  cfg.FrontendOrigins(),
		Metrics:          metrics,
		AuthMiddleware:   middleware.NewAuthMiddleware(log, services.Auth),
		HealthHandler:    h.Health,
		AuthHandler:      h.Auth,
		UserHandler:      h.User,
		KnowledgeHandler: h.Knowledge,
		HandoverHandler:  h.Handover,
		SPOFHandler:      h.SPOF,
	}
}

