package handover

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type Filter struct {
	Status     string
	EmployeeID uuid.UUID
}

type HandoverRepo interface {
	Create(dbc dbctx.Context, h *types.Handover) (*types.Handover, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Handover, error)
	List(dbc dbctx.Context, filter Filter) ([]*types.Handover, error)
	Save(dbc dbctx.Context, h *types.Handover) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type handoverRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHandoverRepo(db *gorm.DB, baseLog *logger.Logger) HandoverRepo {
	repoLog := baseLog.With("repo", "HandoverRepo")
	return &handoverRepo{db: db, log: repoLog}
}

func (hr *handoverRepo) Create(dbc dbctx.Context, h *types.Handover) (*types.Handover, error) {
	if h == nil {
		return nil, nil
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if err := dbc.DB(hr.db).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (hr *handoverRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Handover, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var h types.Handover
	if err := dbc.DB(hr.db).
		Where("id = ?", id).
		Limit(1).
		Find(&h).Error; err != nil {
		return nil, err
	}
	if h.ID == uuid.Nil {
		return nil, nil
	}
	return &h, nil
}

func (hr *handoverRepo) List(dbc dbctx.Context, filter Filter) ([]*types.Handover, error) {
	q := dbc.DB(hr.db).Model(&types.Handover{})
	if s := strings.TrimSpace(filter.Status); s != "" {
		q = q.Where("status = ?", s)
	}
	if filter.EmployeeID != uuid.Nil {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	var rows []*types.Handover
	if err := q.Order("exit_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (hr *handoverRepo) Save(dbc dbctx.Context, h *types.Handover) error {
	if h == nil || h.ID == uuid.Nil {
		return nil
	}
	return dbc.DB(hr.db).Save(h).Error
}

func (hr *handoverRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(hr.db).
		Where("id = ?", id).
		Delete(&types.Handover{}).Error
}
