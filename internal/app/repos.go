package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	Knowledge repos.KnowledgeRepo
	Handover  repos.HandoverRepo
	SPOF      repos.SPOFRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Knowledge: repos.NewKnowledgeRepo(db, log),
		Handover:  repos.NewHandoverRepo(db, log),
		SPOF:      repos.NewSPOFRepo(db, log),
	}
}
