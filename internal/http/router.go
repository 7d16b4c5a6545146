package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/continuity-backend/internal/http/handlers"
	httpMW "github.com/yungbote/continuity-backend/internal/http/middleware"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	ServiceName     string
	FrontendOrigins []string
	Metrics         *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	KnowledgeHandler *httpH.KnowledgeHandler
	HandoverHandler  *httpH.HandoverHandler
	SPOFHandler      *httpH.SPOFHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "continuity"
	}

	r := gin.New()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.FrontendOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/auth/logout", cfg.AuthHandler.Logout)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}

	// Users
	if cfg.UserHandler != nil {
		protected.GET("/users", cfg.UserHandler.List)
		protected.GET("/users/:id", cfg.UserHandler.Get)
		protected.PUT("/users/:id", cfg.UserHandler.Update)
		protected.DELETE("/users/:id", cfg.UserHandler.Delete)
	}

	// Knowledge
	if cfg.KnowledgeHandler != nil {
		protected.POST("/knowledge", cfg.KnowledgeHandler.Create)
		protected.GET("/knowledge", cfg.KnowledgeHandler.List)
		protected.GET("/knowledge/search", cfg.KnowledgeHandler.Search)
		protected.GET("/knowledge/:id", cfg.KnowledgeHandler.Get)
		protected.PUT("/knowledge/:id", cfg.KnowledgeHandler.Update)
		protected.DELETE("/knowledge/:id", cfg.KnowledgeHandler.Delete)
	}

	// Handovers
	if cfg.HandoverHandler != nil {
		protected.POST("/handovers", cfg.HandoverHandler.Create)
		protected.GET("/handovers", cfg.HandoverHandler.List)
		protected.GET("/handovers/:id", cfg.HandoverHandler.Get)
		protected.PUT("/handovers/:id", cfg.HandoverHandler.Update)
		protected.DELETE("/handovers/:id", cfg.HandoverHandler.Delete)
		protected.POST("/handovers/:id/interview", cfg.HandoverHandler.Interview)
		protected.POST("/handovers/:id/summary", cfg.HandoverHandler.Summary)
	}

	// SPOF
	if cfg.SPOFHandler != nil {
		protected.POST("/spof/analyze", cfg.SPOFHandler.Analyze)
		protected.GET("/spof", cfg.SPOFHandler.List)
		protected.GET("/spof/:id", cfg.SPOFHandler.Get)
		protected.PUT("/spof/:id", cfg.SPOFHandler.Update)
		protected.DELETE("/spof/:id", cfg.SPOFHandler.Delete)
	}

	return r
}
