package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// HandoverInput is the writable shape of a handover. Interview fields are
// absent: they only change through AttachInterview and GenerateSummary.
type HandoverInput struct {
	EmployeeID     *uuid.UUID                    `json:"employee,omitempty"`
	ExitDate       *time.Time                    `json:"exitDate,omitempty"`
	Status         *string                       `json:"status,omitempty"`
	KnowledgeItems []types.HandoverKnowledgeItem `json:"knowledgeItems,omitempty"`
	Contacts       []types.HandoverContact       `json:"contacts,omitempty"`
	Tasks          []types.HandoverTask          `json:"tasks,omitempty"`
	Documents      []types.HandoverDocument      `json:"documents,omitempty"`
	SuccessorID    *uuid.UUID                    `json:"successor,omitempty"`
}

type HandoverListParams struct {
	Status     string
	EmployeeID uuid.UUID
}

type SummaryResult struct {
	Summary  string          `json:"summary"`
	Handover *types.Handover `json:"handover"`
}

type HandoverService interface {
	Create(ctx context.Context, in HandoverInput) (*types.Handover, error)
	List(ctx context.Context, params HandoverListParams) ([]*types.Handover, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Handover, error)
	Update(ctx context.Context, id uuid.UUID, in HandoverInput) (*types.Handover, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachInterview(ctx context.Context, id uuid.UUID, transcript string) (*types.Handover, error)
	GenerateSummary(ctx context.Context, id uuid.UUID) (*SummaryResult, error)
}

type handoverService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	handoverRepo repos.HandoverRepo
	summarizer   continuity.Summarizer
}

func NewHandoverService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	handoverRepo repos.HandoverRepo,
	summarizer continuity.Summarizer,
) HandoverService {
	serviceLog := log.With("service", "HandoverService")
	return &handoverService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		handoverRepo: handoverRepo,
		summarizer:   summarizer,
	}
}

func (hs *handoverService) Create(ctx context.Context, in HandoverInput) (*types.Handover, error) {
	rd, err := requireRole(ctx, types.RoleAdmin, types.RoleManager)
	if err != nil {
		return nil, err
	}
	if in.EmployeeID == nil || *in.EmployeeID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_employee", "Please specify the departing employee")
	}
	if in.ExitDate == nil || in.ExitDate.IsZero() {
		return nil, apierr.BadRequest("invalid_exit_date", "Please add an exit date")
	}
	h := &types.Handover{Status: types.HandoverPlanned}
	if err := applyHandoverInput(h, in); err != nil {
		return nil, err
	}

	var out *types.Handover
	err = hs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := hs.checkPeople(inner, h); err != nil {
			return err
		}
		now := time.Now().UTC()
		h.CreatedAt = now
		h.UpdatedAt = now
		created, err := hs.handoverRepo.Create(inner, h)
		if err != nil {
			return dbErr("create handover", err)
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := hs.resolve(dbctx.Context{Ctx: ctx}, out); err != nil {
		return nil, err
	}
	hs.log.Info("Handover created", "handover_id", out.ID, "employee_id", out.EmployeeID, "by_user_id", rd.UserID)
	return out, nil
}

// applyHandoverInput validates in and copies the provided fields onto h.
func applyHandoverInput(h *types.Handover, in HandoverInput) error {
	if in.EmployeeID != nil {
		if *in.EmployeeID == uuid.Nil {
			return apierr.BadRequest("invalid_employee", "Please specify the departing employee")
		}
		h.EmployeeID = *in.EmployeeID
	}
	if in.ExitDate != nil {
		if in.ExitDate.IsZero() {
			return apierr.BadRequest("invalid_exit_date", "Please add an exit date")
		}
		h.ExitDate = in.ExitDate.UTC()
	}
	if in.Status != nil {
		if !types.ValidHandoverStatus(*in.Status) {
			return apierr.BadRequest("invalid_status", "Status must be planned, in-progress or completed")
		}
		h.Status = *in.Status
	}
	if in.KnowledgeItems != nil {
		items := make([]types.HandoverKnowledgeItem, 0, len(in.KnowledgeItems))
		for _, it := range in.KnowledgeItems {
			if it.KnowledgeID == uuid.Nil {
				return apierr.BadRequest("invalid_knowledge_item", "Knowledge item must reference a knowledge id")
			}
			if it.Importance == "" {
				it.Importance = types.ImportanceMedium
			}
			if !types.ValidImportance(it.Importance) {
				return apierr.BadRequest("invalid_importance", "Importance must be low, medium, high or critical")
			}
			items = append(items, it)
		}
		h.KnowledgeItems = items
	}
	if in.Contacts != nil {
		h.Contacts = append([]types.HandoverContact{}, in.Contacts...)
	}
	if in.Tasks != nil {
		tasks := make([]types.HandoverTask, 0, len(in.Tasks))
		for _, t := range in.Tasks {
			if strings.TrimSpace(t.Title) == "" {
				return apierr.BadRequest("invalid_task", "Task title cannot be empty")
			}
			if t.Status == "" {
				t.Status = types.TaskPending
			}
			if !types.ValidTaskStatus(t.Status) {
				return apierr.BadRequest("invalid_task_status", "Task status must be pending or completed")
			}
			tasks = append(tasks, t)
		}
		h.Tasks = tasks
	}
	if in.Documents != nil {
		h.Documents = append([]types.HandoverDocument{}, in.Documents...)
	}
	if in.SuccessorID != nil {
		if *in.SuccessorID == uuid.Nil {
			h.SuccessorID = nil
		} else {
			id := *in.SuccessorID
			h.SuccessorID = &id
		}
	}
	return nil
}

// checkPeople 404s when the employee or successor does not exist.
func (hs *handoverService) checkPeople(dbc dbctx.Context, h *types.Handover) error {
	emp, err := hs.userRepo.GetByID(dbc, h.EmployeeID)
	if err != nil {
		return dbErr("load employee", err)
	}
	if emp == nil {
		return apierr.NotFound("employee_not_found", "Employee not found")
	}
	if h.SuccessorID != nil {
		succ, err := hs.userRepo.GetByID(dbc, *h.SuccessorID)
		if err != nil {
			return dbErr("load successor", err)
		}
		if succ == nil {
			return apierr.NotFound("successor_not_found", "Successor not found")
		}
	}
	return nil
}

func (hs *handoverService) List(ctx context.Context, params HandoverListParams) ([]*types.Handover, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	if params.Status != "" && !types.ValidHandoverStatus(params.Status) {
		return nil, apierr.BadRequest("invalid_status", "Unknown status filter")
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := hs.handoverRepo.List(dbc, repos.HandoverFilter{Status: params.Status, EmployeeID: params.EmployeeID})
	if err != nil {
		return nil, dbErr("list handovers", err)
	}
	if err := hs.resolve(dbc, rows...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (hs *handoverService) Get(ctx context.Context, id uuid.UUID) (*types.Handover, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	h, err := hs.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := hs.resolve(dbc, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (hs *handoverService) load(dbc dbctx.Context, id uuid.UUID) (*types.Handover, error) {
	h, err := hs.handoverRepo.GetByID(dbc, id)
	if err != nil {
		return nil, dbErr("load handover", err)
	}
	if h == nil {
		return nil, apierr.NotFound("handover_not_found", "Handover not found")
	}
	return h, nil
}

func canManageHandover(rd *ctxutil.RequestData, h *types.Handover) bool {
	return isManagerOrAdmin(rd) || rd.UserID == h.EmployeeID
}

// mutate loads the handover in a transaction, checks the caller may manage it,
// applies fn and saves.
func (hs *handoverService) mutate(ctx context.Context, id uuid.UUID, fn func(dbctx.Context, *types.Handover) error) (*types.Handover, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Handover
	err = hs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		h, err := hs.load(inner, id)
		if err != nil {
			return err
		}
		if !canManageHandover(rd, h) {
			return apierr.Forbidden("forbidden", "Not authorized to modify this handover")
		}
		if err := fn(inner, h); err != nil {
			return err
		}
		h.UpdatedAt = time.Now().UTC()
		if err := hs.handoverRepo.Save(inner, h); err != nil {
			return dbErr("save handover", err)
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := hs.resolve(dbctx.Context{Ctx: ctx}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (hs *handoverService) Update(ctx context.Context, id uuid.UUID, in HandoverInput) (*types.Handover, error) {
	return hs.mutate(ctx, id, func(dbc dbctx.Context, h *types.Handover) error {
		if err := applyHandoverInput(h, in); err != nil {
			return err
		}
		if in.EmployeeID != nil || in.SuccessorID != nil {
			return hs.checkPeople(dbc, h)
		}
		return nil
	})
}

func (hs *handoverService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := requireRole(ctx, types.RoleAdmin)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := hs.load(dbc, id); err != nil {
		return err
	}
	if err := hs.handoverRepo.Delete(dbc, id); err != nil {
		return dbErr("delete handover", err)
	}
	hs.log.Info("Handover deleted", "handover_id", id, "by_user_id", rd.UserID)
	return nil
}

func (hs *handoverService) AttachInterview(ctx context.Context, id uuid.UUID, transcript string) (*types.Handover, error) {
	if strings.TrimSpace(transcript) == "" {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		return nil, apierr.BadRequest("transcript_required", "Please provide an interview transcript")
	}
	return hs.mutate(ctx, id, func(_ dbctx.Context, h *types.Handover) error {
		now := time.Now().UTC()
		t := transcript
		h.InterviewTranscript = &t
		h.InterviewDate = &now
		return nil
	})
}

func (hs *handoverService) GenerateSummary(ctx context.Context, id uuid.UUID) (*SummaryResult, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	h, err := hs.load(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if !canManageHandover(rd, h) {
		return nil, apierr.Forbidden("forbidden", "Not authorized to modify this handover")
	}
	if !h.HasTranscript() {
		return nil, apierr.BadRequest("transcript_required", "No interview transcript available")
	}

	summary, err := hs.summarizer.Summarize(ctx, *h.InterviewTranscript)
	if err != nil {
		if errors.Is(err, continuity.ErrEmptyTranscript) {
			return nil, apierr.BadRequest("transcript_required", "No interview transcript available")
		}
		hs.log.Error("Handover summary failed", "handover_id", id, "error", err)
		return nil, apierr.Upstream("upstream_failure", err)
	}

	updated, err := hs.mutate(ctx, id, func(_ dbctx.Context, cur *types.Handover) error {
		s := summary
		cur.InterviewSummary = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SummaryResult{Summary: summary, Handover: updated}, nil
}

// resolve fills employee and successor summaries.
func (hs *handoverService) resolve(dbc dbctx.Context, rows ...*types.Handover) error {
	var ids []uuid.UUID
	for _, h := range rows {
		if h == nil {
			continue
		}
		ids = append(ids, h.EmployeeID)
		if h.SuccessorID != nil {
			ids = append(ids, *h.SuccessorID)
		}
	}
	people, err := resolveSummaries(dbc, hs.userRepo, ids)
	if err != nil {
		return dbErr("resolve people", err)
	}
	for _, h := range rows {
		if h == nil {
			continue
		}
		h.Employee = summaryPtr(people, h.EmployeeID)
		if h.SuccessorID != nil {
			h.Successor = summaryPtr(people, *h.SuccessorID)
		}
	}
	return nil
}
