package spof

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/continuity-backend/internal/domain/user"
)

const (
	MinScore = 0
	MaxScore = 100
)

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// ItemRef names a related knowledge item in responses.
type ItemRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type KnowledgeArea struct {
	Area         string      `json:"area"`
	Score        int         `json:"score"`
	RelatedItems []uuid.UUID `json:"relatedItems"`

	// Resolved for responses; cleared before persisting.
	Items []ItemRef `json:"items,omitempty"`
}

type BackupPerson struct {
	UserID        uuid.UUID `json:"user"`
	CoverageScore int       `json:"coverageScore"`

	// Resolved for responses; cleared before persisting.
	UserDetails *user.Summary `json:"userDetails,omitempty"`
}

// StripResolved drops response-only fields and normalizes nil related items to
// empty, so the stored JSON carries ids only.
func (s *SPOF) StripResolved() {
	if s == nil {
		return
	}
	for i := range s.KnowledgeAreas {
		s.KnowledgeAreas[i].Items = nil
		if s.KnowledgeAreas[i].RelatedItems == nil {
			s.KnowledgeAreas[i].RelatedItems = []uuid.UUID{}
		}
	}
	for i := range s.BackupPeople {
		s.BackupPeople[i].UserDetails = nil
	}
}

// SPOF is a single-point-of-failure record; at most one exists per employee.
type SPOF struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID     uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex;column:employee_id" json:"employeeId"`
	KnowledgeAreas datatypes.JSONSlice[KnowledgeArea] `gorm:"column:knowledge_areas" json:"knowledgeAreas"`
	RiskScore      int                                `gorm:"not null;column:risk_score;index" json:"riskScore"`
	BackupPeople   datatypes.JSONSlice[BackupPerson]  `gorm:"column:backup_people" json:"backupPeople"`
	AutoDetected   bool                               `gorm:"not null;column:auto_detected" json:"autoDetected"`
	MitigationPlan *string                            `gorm:"column:mitigation_plan" json:"mitigationPlan,omitempty"`
	LastUpdated    time.Time                          `gorm:"not null;column:last_updated" json:"lastUpdated"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Employee *user.Summary `gorm:"-" json:"employee,omitempty"`
}

func (SPOF) TableName() string { return "spofs" }
