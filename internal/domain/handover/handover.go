package handover

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/continuity-backend/internal/domain/user"
)

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"

	TaskPending   = "pending"
	TaskCompleted = "completed"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPlanned, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func ValidTaskStatus(status string) bool {
	return status == TaskPending || status == TaskCompleted
}

type KnowledgeItem struct {
	KnowledgeID uuid.UUID `json:"knowledge"`
	Importance  string    `json:"importance"`
	Notes       string    `json:"notes"`
}

type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type Task struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	AssigneeID  *uuid.UUID `json:"assignee,omitempty"`
}

type Document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Type        string `json:"type"`
}

type Handover struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;column:employee_id;index" json:"employeeId"`
	ExitDate   time.Time `gorm:"not null;column:exit_date;index" json:"exitDate"`
	Status     string    `gorm:"not null;column:status;index" json:"status"`

	InterviewTranscript *string    `gorm:"column:interview_transcript" json:"interviewTranscript,omitempty"`
	InterviewSummary    *string    `gorm:"column:interview_summary" json:"interviewSummary,omitempty"`
	InterviewDate       *time.Time `gorm:"column:interview_date" json:"interviewDate,omitempty"`

	KnowledgeItems datatypes.JSONSlice[KnowledgeItem] `gorm:"column:knowledge_items" json:"knowledgeItems"`
	Contacts       datatypes.JSONSlice[Contact]       `gorm:"column:contacts" json:"contacts"`
	Tasks          datatypes.JSONSlice[Task]          `gorm:"column:tasks" json:"tasks"`
	Documents      datatypes.JSONSlice[Document]      `gorm:"column:documents" json:"documents"`
	SuccessorID    *uuid.UUID                         `gorm:"type:uuid;column:successor_id" json:"successorId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Employee  *user.Summary `gorm:"-" json:"employee,omitempty"`
	Successor *user.Summary `gorm:"-" json:"successor,omitempty"`
}

func (Handover) TableName() string { return "handovers" }

// HasTranscript reports whether an exit interview transcript is stored.
func (h *Handover) HasTranscript() bool {
	return h != nil && h.InterviewTranscript != nil && *h.InterviewTranscript != ""
}
