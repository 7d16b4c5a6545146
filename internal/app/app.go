package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/db"
	httpapi "github.com/yungbote/continuity-backend/internal/http"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *httpapi.Server
	Metrics  *observability.Metrics

	store        *db.Service
	clients      Clients
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE and the redaction settings.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects the configured store and, when enabled, migrates it.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	store, err := db.NewService(log, cfg.DBOptions())
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	return store, nil
}

// New wires the full HTTP application.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.OtelConfig())

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	store, err := OpenDatabase(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	theDB := store.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = store.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close(log)
		_ = store.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}
	handlerset := wireHandlers(log, cfg, serviceset)
	server := httpapi.NewServer(log, routerConfig(log, cfg, serviceset, handlerset, metrics))

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		Metrics:      metrics,
		store:        store,
		clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.clients.Close(a.Log)
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
