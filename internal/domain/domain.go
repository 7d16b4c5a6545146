package domain

import (
	"github.com/yungbote/continuity-backend/internal/domain/handover"
	"github.com/yungbote/continuity-backend/internal/domain/knowledge"
	"github.com/yungbote/continuity-backend/internal/domain/spof"
	"github.com/yungbote/continuity-backend/internal/domain/user"
)

const (
	RoleAdmin    = user.RoleAdmin
	RoleManager  = user.RoleManager
	RoleEmployee = user.RoleEmployee

	ImportanceLow      = knowledge.ImportanceLow
	ImportanceMedium   = knowledge.ImportanceMedium
	ImportanceHigh     = knowledge.ImportanceHigh
	ImportanceCritical = knowledge.ImportanceCritical

	SourceManual = knowledge.SourceManual

	HandoverPlanned    = handover.StatusPlanned
	HandoverInProgress = handover.StatusInProgress
	HandoverCompleted  = handover.StatusCompleted

	TaskPending   = handover.TaskPending
	TaskCompleted = handover.TaskCompleted

	MinScore = spof.MinScore
	MaxScore = spof.MaxScore
)

var (
	ValidRole           = user.ValidRole
	ValidImportance     = knowledge.ValidImportance
	ValidSource         = knowledge.ValidSource
	ImportanceRank      = knowledge.ImportanceRank
	ValidHandoverStatus = handover.ValidStatus
	ValidTaskStatus     = handover.ValidTaskStatus
	ValidScore          = spof.ValidScore
)

type (
	User        = user.User
	UserSummary = user.Summary

	Knowledge  = knowledge.Knowledge
	Attachment = knowledge.Attachment

	Handover              = handover.Handover
	HandoverKnowledgeItem = handover.KnowledgeItem
	HandoverContact       = handover.Contact
	HandoverTask          = handover.Task
	HandoverDocument      = handover.Document

	SPOF          = spof.SPOF
	KnowledgeArea = spof.KnowledgeArea
	BackupPerson  = spof.BackupPerson
	SPOFItemRef   = spof.ItemRef
)

// Models lists every persisted type, in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Knowledge{},
		&Handover{},
		&SPOF{},
	}
}
