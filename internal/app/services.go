package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/graph"
	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Knowledge services.KnowledgeService
	Handover  services.HandoverService
	SPOF      services.SPOFService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	assessor, err := continuity.NewAssessor(clients.Reasoning, clients.Prompts, log)
	if err != nil {
		return Services{}, fmt.Errorf("init assessor: %w", err)
	}
	summarizer, err := continuity.NewSummarizer(clients.Reasoning, clients.Prompts, log)
	if err != nil {
		return Services{}, fmt.Errorf("init summarizer: %w", err)
	}
	ownership := graph.NewOwnershipProjector(clients.Neo4j, log)

	return Services{
		Auth:      services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:      services.NewUserService(db, log, repos.User),
		Knowledge: services.NewKnowledgeService(db, log, repos.User, repos.Knowledge),
		Handover: services.NewHandoverService(db, log, repos.User, repos.Handover,
			instrumentSummarizer(summarizer, metrics)),
		SPOF: services.NewSPOFService(db, log, repos.User, repos.Knowledge, repos.SPOF,
			instrumentAssessor(assessor, metrics), clients.Locks, ownership, metrics),
	}, nil
}
