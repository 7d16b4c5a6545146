package knowledge

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// Viewer scopes reads to what the caller may see.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type Filter struct {
	Category   string
	Tag        string
	Importance string
	OwnerID    uuid.UUID
	Viewer     Viewer
}

type KnowledgeRepo interface {
	Create(dbc dbctx.Context, k *types.Knowledge) (*types.Knowledge, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Knowledge, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Knowledge, error)
	List(dbc dbctx.Context, filter Filter) ([]*types.Knowledge, error)
	ListAll(dbc dbctx.Context) ([]*types.Knowledge, error)
	Search(dbc dbctx.Context, query string, viewer Viewer) ([]*types.Knowledge, error)
	Save(dbc dbctx.Context, k *types.Knowledge) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type knowledgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeRepo {
	repoLog := baseLog.With("repo", "KnowledgeRepo")
	return &knowledgeRepo{db: db, log: repoLog}
}

func (kr *knowledgeRepo) Create(dbc dbctx.Context, k *types.Knowledge) (*types.Knowledge, error) {
	if k == nil {
		return nil, nil
	}
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if err := dbc.DB(kr.db).Create(k).Error; err != nil {
		return nil, err
	}
	return k, nil
}

func (kr *knowledgeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Knowledge, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var k types.Knowledge
	if err := dbc.DB(kr.db).
		Where("id = ?", id).
		Limit(1).
		Find(&k).Error; err != nil {
		return nil, err
	}
	if k.ID == uuid.Nil {
		return nil, nil
	}
	return &k, nil
}

func (kr *knowledgeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Knowledge, error) {
	rows := []*types.Knowledge{}
	if len(ids) == 0 {
		return rows, nil
	}
	if err := dbc.DB(kr.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (kr *knowledgeRepo) List(dbc dbctx.Context, filter Filter) ([]*types.Knowledge, error) {
	q := scopeVisible(dbc.DB(kr.db).Model(&types.Knowledge{}), filter.Viewer)
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if imp := strings.TrimSpace(filter.Importance); imp != "" {
		q = q.Where("importance = ?", imp)
	}
	if filter.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}

	var rows []*types.Knowledge
	if err := q.Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	// Tags are matched here, not in SQL: the stored JSON escapes characters like "&",
	// so a LIKE over the encoded array misses them on SQLite.
	tag := strings.TrimSpace(filter.Tag)
	if tag == "" {
		return rows, nil
	}
	out := rows[:0]
	for _, k := range rows {
		if slices.Contains(k.Tags, tag) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (kr *knowledgeRepo) ListAll(dbc dbctx.Context) ([]*types.Knowledge, error) {
	var rows []*types.Knowledge
	if err := dbc.DB(kr.db).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches query case-insensitively as a substring of title, description,
// content or any tag. Results are ordered by importance rank, then newest first.
func (kr *knowledgeRepo) Search(dbc dbctx.Context, query string, viewer Viewer) ([]*types.Knowledge, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []*types.Knowledge{}, nil
	}

	// Matching runs in Go over the visible rows. SQLite's LOWER folds ASCII only,
	// so a SQL prefilter would drop non-ASCII hits.
	var rows []*types.Knowledge
	if err := scopeVisible(dbc.DB(kr.db).Model(&types.Knowledge{}), viewer).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*types.Knowledge, 0, len(rows))
	for _, k := range rows {
		if Matches(k, needle) {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := types.ImportanceRank(out[i].Importance), types.ImportanceRank(out[j].Importance)
		if ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Matches reports whether lowered needle occurs in any searchable field of k.
func Matches(k *types.Knowledge, needle string) bool {
	if k == nil {
		return false
	}
	if strings.Contains(strings.ToLower(k.Title), needle) ||
		strings.Contains(strings.ToLower(k.Description), needle) ||
		strings.Contains(strings.ToLower(k.Content), needle) {
		return true
	}
	for _, t := range k.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func (kr *knowledgeRepo) Save(dbc dbctx.Context, k *types.Knowledge) error {
	if k == nil || k.ID == uuid.Nil {
		return nil
	}
	return dbc.DB(kr.db).Save(k).Error
}

func (kr *knowledgeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(kr.db).
		Where("id = ?", id).
		Delete(&types.Knowledge{}).Error
}

func scopeVisible(q *gorm.DB, viewer Viewer) *gorm.DB {
	if viewer.IsAdmin {
		return q
	}
	return q.Where("is_private = ? OR owner_id = ?", false, viewer.UserID)
}

