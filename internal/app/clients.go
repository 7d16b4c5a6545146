package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/continuity-backend/internal/platform/locker"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/platform/neo4jdb"
	"github.com/yungbote/continuity-backend/internal/platform/openai"
	"github.com/yungbote/continuity-backend/internal/prompts"
)

type Clients struct {
	Reasoning openai.Client
	Prompts   *prompts.Catalog
	Locks     locker.Locker
	Neo4j     *neo4jdb.Client

	redis *locker.Redis
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	catalog, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return Clients{}, fmt.Errorf("load prompts: %w", err)
	}

	reasoning, err := openai.NewClient(log, cfg.ReasoningOptions())
	if err != nil {
		return Clients{}, fmt.Errorf("init reasoning client: %w", err)
	}

	// Redis
	var locks locker.Locker = locker.NewMemory()
	var rl *locker.Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rl, err = locker.NewRedis(log, cfg.RedisOptions())
		if err != nil {
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
		locks = rl
	} else {
		log.Info("REDIS_ADDR not set; using in-process locks")
	}

	// Neo4j
	graphClient, err := neo4jdb.New(log, cfg.Neo4jOptions())
	if err != nil {
		if rl != nil {
			_ = rl.Close()
		}
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if graphClient == nil {
		log.Info("NEO4J_URI not set; ownership graph disabled")
	}

	return Clients{
		Reasoning: reasoning,
		Prompts:   catalog,
		Locks:     locks,
		Neo4j:     graphClient,
		redis:     rl,
	}, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Neo4j.Close(ctx); err != nil {
			log.Warn("Neo4j close failed", "error", err)
		}
	}
}
