package spof

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// Columns an automated analysis may overwrite on an existing record.
var analysisColumns = []string{
	"knowledge_areas",
	"risk_score",
	"backup_people",
	"last_updated",
	"updated_at",
}

type SPOFRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SPOF, error)
	GetByEmployeeID(dbc dbctx.Context, employeeID uuid.UUID) (*types.SPOF, error)
	List(dbc dbctx.Context) ([]*types.SPOF, error)
	CountByEmployeeID(dbc dbctx.Context, employeeID uuid.UUID) (int64, error)
	// UpsertAnalysis inserts rec as an auto-detected record, or overwrites only the
	// analysis columns of the existing row for rec.EmployeeID. Returns the stored row.
	UpsertAnalysis(dbc dbctx.Context, rec *types.SPOF) (*types.SPOF, error)
	Save(dbc dbctx.Context, rec *types.SPOF) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type spofRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSPOFRepo(db *gorm.DB, baseLog *logger.Logger) SPOFRepo {
	repoLog := baseLog.With("repo", "SPOFRepo")
	return &spofRepo{db: db, log: repoLog}
}

func (sr *spofRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SPOF, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return sr.first(dbc, "id = ?", id)
}

func (sr *spofRepo) GetByEmployeeID(dbc dbctx.Context, employeeID uuid.UUID) (*types.SPOF, error) {
	if employeeID == uuid.Nil {
		return nil, nil
	}
	return sr.first(dbc, "employee_id = ?", employeeID)
}

func (sr *spofRepo) first(dbc dbctx.Context, where string, arg interface{}) (*types.SPOF, error) {
	var rec types.SPOF
	if err := dbc.DB(sr.db).
		Where(where, arg).
		Limit(1).
		Find(&rec).Error; err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (sr *spofRepo) List(dbc dbctx.Context) ([]*types.SPOF, error) {
	var rows []*types.SPOF
	if err := dbc.DB(sr.db).
		Order("risk_score DESC, last_updated DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *spofRepo) CountByEmployeeID(dbc dbctx.Context, employeeID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(sr.db).
		Model(&types.SPOF{}).
		Where("employee_id = ?", employeeID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (sr *spofRepo) UpsertAnalysis(dbc dbctx.Context, rec *types.SPOF) (*types.SPOF, error) {
	if rec == nil || rec.EmployeeID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	row := *rec
	row.ID = uuid.New()
	row.AutoDetected = true
	row.LastUpdated = now
	row.CreatedAt = now
	row.UpdatedAt = now
	row.Employee = nil
	row.StripResolved()

	if err := dbc.DB(sr.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns(analysisColumns),
		}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	return sr.GetByEmployeeID(dbc, rec.EmployeeID)
}

func (sr *spofRepo) Save(dbc dbctx.Context, rec *types.SPOF) error {
	if rec == nil || rec.ID == uuid.Nil {
		return nil
	}
	rec.StripResolved()
	return dbc.DB(sr.db).Save(rec).Error
}

func (sr *spofRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(sr.db).
		Where("id = ?", id).
		Delete(&types.SPOF{}).Error
}
