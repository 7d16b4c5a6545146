package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/continuity-backend/internal/domain/user"
)

const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

const (
	SourceManual = "manual"
	SourceSlack  = "slack"
	SourceNotion = "notion"
	SourceGithub = "github"
	SourceJira   = "jira"
)

// ImportanceRank orders importance levels; unknown values rank lowest.
func ImportanceRank(importance string) int {
	switch importance {
	case ImportanceCritical:
		return 4
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	case ImportanceLow:
		return 1
	default:
		return 0
	}
}

func ValidImportance(importance string) bool {
	return ImportanceRank(importance) > 0
}

func ValidSource(source string) bool {
	switch source {
	case SourceManual, SourceSlack, SourceNotion, SourceGithub, SourceJira:
		return true
	default:
		return false
	}
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type Knowledge struct {
	ID           uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string                          `gorm:"not null;column:title" json:"title"`
	Description  string                          `gorm:"not null;column:description" json:"description"`
	Category     string                          `gorm:"not null;column:category;index" json:"category"`
	Tags         datatypes.JSONSlice[string]     `gorm:"column:tags" json:"tags"`
	OwnerID      uuid.UUID                       `gorm:"type:uuid;not null;column:owner_id;index" json:"ownerId"`
	Contributors datatypes.JSONSlice[uuid.UUID]  `gorm:"column:contributors" json:"contributorIds"`
	Content      string                          `gorm:"not null;column:content" json:"content"`
	Attachments  datatypes.JSONSlice[Attachment] `gorm:"column:attachments" json:"attachments"`
	Source       string                          `gorm:"not null;column:source" json:"source"`
	SourceLink   string                          `gorm:"column:source_link" json:"sourceLink,omitempty"`
	Importance   string                          `gorm:"not null;column:importance;index" json:"importance"`
	IsPrivate    bool                            `gorm:"not null;column:is_private" json:"isPrivate"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Resolved by the service layer, never persisted.
	Owner            *user.Summary  `gorm:"-" json:"owner,omitempty"`
	ContributorUsers []user.Summary `gorm:"-" json:"contributors,omitempty"`
}

func (Knowledge) TableName() string { return "knowledge" }

func (k *Knowledge) HasContributor(id uuid.UUID) bool {
	if k == nil {
		return false
	}
	for _, c := range k.Contributors {
		if c == id {
			return true
		}
	}
	return false
}

// VisibleTo reports whether viewer may read k.
func (k *Knowledge) VisibleTo(viewerID uuid.UUID, viewerRole string) bool {
	if k == nil {
		return false
	}
	if !k.IsPrivate {
		return true
	}
	return k.OwnerID == viewerID || viewerRole == user.RoleAdmin
}
