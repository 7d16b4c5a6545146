package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// KnowledgeInput is the writable shape of a knowledge item. On create the
// required fields must be present; on update nil means unchanged.
type KnowledgeInput struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Category     *string            `json:"category,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	Contributors []uuid.UUID        `json:"contributors,omitempty"`
	Content      *string            `json:"content,omitempty"`
	Attachments  []types.Attachment `json:"attachments,omitempty"`
	Source       *string            `json:"source,omitempty"`
	SourceLink   *string            `json:"sourceLink,omitempty"`
	Importance   *string            `json:"importance,omitempty"`
	IsPrivate    *bool              `json:"isPrivate,omitempty"`
}

type KnowledgeListParams struct {
	Category   string
	Tag        string
	Importance string
	OwnerID    uuid.UUID
}

type KnowledgeService interface {
	Create(ctx context.Context, in KnowledgeInput) (*types.Knowledge, error)
	List(ctx context.Context, params KnowledgeListParams) ([]*types.Knowledge, error)
	Search(ctx context.Context, query string) ([]*types.Knowledge, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Knowledge, error)
	Update(ctx context.Context, id uuid.UUID, in KnowledgeInput) (*types.Knowledge, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type knowledgeService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	knowledgeRepo repos.KnowledgeRepo
}

func NewKnowledgeService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, knowledgeRepo repos.KnowledgeRepo) KnowledgeService {
	serviceLog := log.With("service", "KnowledgeService")
	return &knowledgeService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		knowledgeRepo: knowledgeRepo,
	}
}

func viewerOf(rd *ctxutil.RequestData) repos.KnowledgeViewer {
	return repos.KnowledgeViewer{UserID: rd.UserID, IsAdmin: isAdmin(rd)}
}

func requiredText(v *string, code, msg string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", apierr.BadRequest(code, msg)
	}
	return strings.TrimSpace(*v), nil
}

func (ks *knowledgeService) Create(ctx context.Context, in KnowledgeInput) (*types.Knowledge, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	k := &types.Knowledge{
		OwnerID:    rd.UserID,
		Source:     types.SourceManual,
		Importance: types.ImportanceMedium,
	}
	if k.Title, err = requiredText(in.Title, "invalid_title", "Please add a title"); err != nil {
		return nil, err
	}
	if k.Description, err = requiredText(in.Description, "invalid_description", "Please add a description"); err != nil {
		return nil, err
	}
	if k.Category, err = requiredText(in.Category, "invalid_category", "Please add a category"); err != nil {
		return nil, err
	}
	if k.Content, err = requiredText(in.Content, "invalid_content", "Please add content"); err != nil {
		return nil, err
	}
	if err := applyOptionalKnowledge(k, in); err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := ks.checkContributors(dbc, k.Contributors); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	k.CreatedAt = now
	k.UpdatedAt = now
	created, err := ks.knowledgeRepo.Create(dbc, k)
	if err != nil {
		return nil, dbErr("create knowledge", err)
	}
	if err := ks.resolve(dbc, created); err != nil {
		return nil, err
	}
	ks.log.Debug("Knowledge created", "knowledge_id", created.ID, "user_id", rd.UserID)
	return created, nil
}

// applyOptionalKnowledge copies the non-required fields of in onto k.
func applyOptionalKnowledge(k *types.Knowledge, in KnowledgeInput) error {
	if in.Tags != nil {
		k.Tags = dedupeStrings(in.Tags)
	}
	if in.Contributors != nil {
		k.Contributors = dedupeUUIDs(in.Contributors)
	}
	if in.Attachments != nil {
		k.Attachments = append([]types.Attachment{}, in.Attachments...)
	}
	if in.Source != nil {
		if !types.ValidSource(*in.Source) {
			return apierr.BadRequest("invalid_source", "Source must be manual, slack, notion, github or jira")
		}
		k.Source = *in.Source
	}
	if in.SourceLink != nil {
		k.SourceLink = strings.TrimSpace(*in.SourceLink)
	}
	if in.Importance != nil {
		if !types.ValidImportance(*in.Importance) {
			return apierr.BadRequest("invalid_importance", "Importance must be low, medium, high or critical")
		}
		k.Importance = *in.Importance
	}
	if in.IsPrivate != nil {
		k.IsPrivate = *in.IsPrivate
	}
	return nil
}

func (ks *knowledgeService) checkContributors(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := ks.userRepo.GetByIDs(dbc, ids)
	if err != nil {
		return dbErr("load contributors", err)
	}
	if len(found) != len(ids) {
		return apierr.BadRequest("invalid_contributor", "One or more contributors do not exist")
	}
	return nil
}

func (ks *knowledgeService) List(ctx context.Context, params KnowledgeListParams) ([]*types.Knowledge, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if params.Importance != "" && !types.ValidImportance(params.Importance) {
		return nil, apierr.BadRequest("invalid_importance", "Unknown importance filter")
	}
	dbc := dbctx.Context{Ctx: ctx}
	items, err := ks.knowledgeRepo.List(dbc, repos.KnowledgeFilter{
		Category:   params.Category,
		Tag:        params.Tag,
		Importance: params.Importance,
		OwnerID:    params.OwnerID,
		Viewer:     viewerOf(rd),
	})
	if err != nil {
		return nil, dbErr("list knowledge", err)
	}
	if err := ks.resolve(dbc, items...); err != nil {
		return nil, err
	}
	return items, nil
}

func (ks *knowledgeService) Search(ctx context.Context, query string) ([]*types.Knowledge, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.BadRequest("query_required", "Please provide a search query")
	}
	dbc := dbctx.Context{Ctx: ctx}
	items, err := ks.knowledgeRepo.Search(dbc, query, viewerOf(rd))
	if err != nil {
		return nil, dbErr("search knowledge", err)
	}
	if err := ks.resolve(dbc, items...); err != nil {
		return nil, err
	}
	return items, nil
}

func (ks *knowledgeService) Get(ctx context.Context, id uuid.UUID) (*types.Knowledge, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	k, err := ks.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if !k.VisibleTo(rd.UserID, rd.Role) {
		return nil, apierr.Forbidden("forbidden", "Not authorized to access this knowledge item")
	}
	if err := ks.resolve(dbc, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (ks *knowledgeService) load(dbc dbctx.Context, id uuid.UUID) (*types.Knowledge, error) {
	k, err := ks.knowledgeRepo.GetByID(dbc, id)
	if err != nil {
		return nil, dbErr("load knowledge", err)
	}
	if k == nil {
		return nil, apierr.NotFound("knowledge_not_found", "Knowledge item not found")
	}
	return k, nil
}

func canEditKnowledge(rd *ctxutil.RequestData, k *types.Knowledge) bool {
	return k.OwnerID == rd.UserID || isAdmin(rd)
}

func (ks *knowledgeService) Update(ctx context.Context, id uuid.UUID, in KnowledgeInput) (*types.Knowledge, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Knowledge
	err = ks.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		k, err := ks.load(inner, id)
		if err != nil {
			return err
		}
		if !canEditKnowledge(rd, k) {
			return apierr.Forbidden("forbidden", "Not authorized to update this knowledge item")
		}
		for _, f := range []struct {
			v    *string
			dst  *string
			code string
		}{
			{in.Title, &k.Title, "invalid_title"},
			{in.Description, &k.Description, "invalid_description"},
			{in.Category, &k.Category, "invalid_category"},
			{in.Content, &k.Content, "invalid_content"},
		} {
			if f.v == nil {
				continue
			}
			v, err := requiredText(f.v, f.code, "Field cannot be empty")
			if err != nil {
				return err
			}
			*f.dst = v
		}
		if err := applyOptionalKnowledge(k, in); err != nil {
			return err
		}
		if in.Contributors != nil {
			if err := ks.checkContributors(inner, k.Contributors); err != nil {
				return err
			}
		}
		if rd.UserID != k.OwnerID && !k.HasContributor(rd.UserID) {
			k.Contributors = append(k.Contributors, rd.UserID)
		}
		k.UpdatedAt = time.Now().UTC()
		if err := ks.knowledgeRepo.Save(inner, k); err != nil {
			return dbErr("update knowledge", err)
		}
		out = k
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ks.resolve(dbctx.Context{Ctx: ctx}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (ks *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := caller(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	k, err := ks.load(dbc, id)
	if err != nil {
		return err
	}
	if !canEditKnowledge(rd, k) {
		return apierr.Forbidden("forbidden", "Not authorized to delete this knowledge item")
	}
	if err := ks.knowledgeRepo.Delete(dbc, id); err != nil {
		return dbErr("delete knowledge", err)
	}
	return nil
}

// resolve fills owner and contributor summaries for items.
func (ks *knowledgeService) resolve(dbc dbctx.Context, items ...*types.Knowledge) error {
	var ids []uuid.UUID
	for _, k := range items {
		if k == nil {
			continue
		}
		ids = append(ids, k.OwnerID)
		ids = append(ids, k.Contributors...)
	}
	people, err := resolveSummaries(dbc, ks.userRepo, ids)
	if err != nil {
		return dbErr("resolve people", err)
	}
	for _, k := range items {
		if k == nil {
			continue
		}
		k.Owner = summaryPtr(people, k.OwnerID)
		k.ContributorUsers = make([]types.UserSummary, 0, len(k.Contributors))
		for _, c := range k.Contributors {
			if s, ok := people[c]; ok {
				k.ContributorUsers = append(k.ContributorUsers, s)
			}
		}
	}
	return nil
}
