package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos/handover"
	"github.com/yungbote/continuity-backend/internal/data/repos/knowledge"
	"github.com/yungbote/continuity-backend/internal/data/repos/spof"
	"github.com/yungbote/continuity-backend/internal/data/repos/user"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserFilter = user.Filter

type KnowledgeRepo = knowledge.KnowledgeRepo
type KnowledgeFilter = knowledge.Filter
type KnowledgeViewer = knowledge.Viewer

type HandoverRepo = handover.HandoverRepo
type HandoverFilter = handover.Filter

type SPOFRepo = spof.SPOFRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeRepo {
	return knowledge.NewKnowledgeRepo(db, baseLog)
}

func NewHandoverRepo(db *gorm.DB, baseLog *logger.Logger) HandoverRepo {
	return handover.NewHandoverRepo(db, baseLog)
}

func NewSPOFRepo(db *gorm.DB, baseLog *logger.Logger) SPOFRepo { return spof.NewSPOFRepo(db, baseLog) }
