package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/graph"
	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/locker"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// SPOFUpdate is a manual edit. Any edit clears autoDetected.
type SPOFUpdate struct {
	KnowledgeAreas []types.KnowledgeArea `json:"knowledgeAreas,omitempty"`
	RiskScore      *int                  `json:"riskScore,omitempty"`
	BackupPeople   []types.BackupPerson  `json:"backupPeople,omitempty"`
	MitigationPlan *string               `json:"mitigationPlan,omitempty"`
}

type SPOFService interface {
	// Analyze aggregates every active user's knowledge, asks the assessor for
	// risk and reconciles the result into one record per employee.
	Analyze(ctx context.Context) ([]*types.SPOF, error)
	List(ctx context.Context) ([]*types.SPOF, error)
	Get(ctx context.Context, id uuid.UUID) (*types.SPOF, error)
	Update(ctx context.Context, id uuid.UUID, in SPOFUpdate) (*types.SPOF, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type spofService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	knowledgeRepo repos.KnowledgeRepo
	spofRepo      repos.SPOFRepo
	assessor      continuity.Assessor
	locks         locker.Locker
	ownership     graph.OwnershipProjector
	metrics       *observability.Metrics
}

func NewSPOFService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	knowledgeRepo repos.KnowledgeRepo,
	spofRepo repos.SPOFRepo,
	assessor continuity.Assessor,
	locks locker.Locker,
	ownership graph.OwnershipProjector,
	metrics *observability.Metrics,
) SPOFService {
	serviceLog := log.With("service", "SPOFService")
	if locks == nil {
		locks = locker.NewMemory()
	}
	if ownership == nil {
		ownership = graph.NewOwnershipProjector(nil, log)
	}
	return &spofService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		knowledgeRepo: knowledgeRepo,
		spofRepo:      spofRepo,
		assessor:      assessor,
		locks:         locks,
		ownership:     ownership,
		metrics:       metrics,
	}
}

func lockKey(employeeID uuid.UUID) string {
	return "spof:" + employeeID.String()
}

func (ss *spofService) Analyze(ctx context.Context) ([]*types.SPOF, error) {
	rd, err := requireRole(ctx, types.RoleAdmin, types.RoleManager)
	if err != nil {
		return nil, err
	}

	var (
		active []*types.User
		items  []*types.Knowledge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = ss.userRepo.ListActive(dbctx.Context{Ctx: gctx})
		return err
	})
	g.Go(func() error {
		var err error
		items, err = ss.knowledgeRepo.ListAll(dbctx.Context{Ctx: gctx})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dbErr("load analysis input", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	people, err := resolveSummaries(dbc, ss.userRepo, continuity.PeopleIDs(items))
	if err != nil {
		return nil, dbErr("resolve people", err)
	}
	bundles := continuity.Aggregate(active, items, people)

	if err := ss.ownership.Project(ctx, active, items); err != nil {
		ss.log.Warn("Ownership graph projection failed", "error", err)
	}

	if len(bundles) == 0 {
		return []*types.SPOF{}, nil
	}
	analyses, err := ss.assessor.Assess(ctx, bundles)
	if err != nil {
		ss.log.Error("SPOF assessment failed", "error", err)
		return nil, apierr.Upstream("upstream_failure", err)
	}

	out, err := ss.reconcile(ctx, analyses)
	if err != nil {
		return nil, err
	}
	ss.metrics.AddSPOFRecords("analysis", len(out))
	if err := ss.resolve(dbc, out...); err != nil {
		return nil, err
	}
	ss.log.Info("SPOF analysis complete",
		"employees", len(bundles),
		"records", len(out),
		"by_user_id", rd.UserID,
	)
	return out, nil
}

// reconcile upserts each analysis under its employee lock, in order.
func (ss *spofService) reconcile(ctx context.Context, analyses []continuity.Analysis) ([]*types.SPOF, error) {
	out := make([]*types.SPOF, 0, len(analyses))
	for _, a := range analyses {
		rec, err := ss.upsertOne(ctx, a)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (ss *spofService) upsertOne(ctx context.Context, a continuity.Analysis) (*types.SPOF, error) {
	unlock, err := ss.locks.Acquire(ctx, lockKey(a.EmployeeID))
	if err != nil {
		return nil, apierr.Upstream("lock_failure", err)
	}
	defer unlock()

	var rec *types.SPOF
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = ss.spofRepo.UpsertAnalysis(dbctx.Context{Ctx: ctx, Tx: tx}, &types.SPOF{
			EmployeeID:     a.EmployeeID,
			KnowledgeAreas: a.KnowledgeAreas,
			RiskScore:      a.RiskScore,
			BackupPeople:   a.BackupPeople,
		})
		return err
	})
	if err != nil {
		return nil, dbErr("upsert spof", err)
	}
	return rec, nil
}

func (ss *spofService) List(ctx context.Context) ([]*types.SPOF, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := ss.spofRepo.List(dbc)
	if err != nil {
		return nil, dbErr("list spofs", err)
	}
	if err := ss.resolve(dbc, rows...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (ss *spofService) Get(ctx context.Context, id uuid.UUID) (*types.SPOF, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	rec, err := ss.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := ss.resolve(dbc, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (ss *spofService) load(dbc dbctx.Context, id uuid.UUID) (*types.SPOF, error) {
	rec, err := ss.spofRepo.GetByID(dbc, id)
	if err != nil {
		return nil, dbErr("load spof", err)
	}
	if rec == nil {
		return nil, apierr.NotFound("spof_not_found", "SPOF record not found")
	}
	return rec, nil
}

func validateSPOFUpdate(in SPOFUpdate) error {
	if in.RiskScore != nil && !types.ValidScore(*in.RiskScore) {
		return apierr.BadRequest("invalid_score", "riskScore must be between 0 and 100")
	}
	for _, a := range in.KnowledgeAreas {
		if strings.TrimSpace(a.Area) == "" {
			return apierr.BadRequest("invalid_area", "Knowledge area label cannot be empty")
		}
		if !types.ValidScore(a.Score) {
			return apierr.BadRequest("invalid_score", "Area score must be between 0 and 100")
		}
	}
	for _, b := range in.BackupPeople {
		if b.UserID == uuid.Nil {
			return apierr.BadRequest("invalid_backup", "Backup person must reference a user")
		}
		if !types.ValidScore(b.CoverageScore) {
			return apierr.BadRequest("invalid_score", "coverageScore must be between 0 and 100")
		}
	}
	return nil
}

func (ss *spofService) Update(ctx context.Context, id uuid.UUID, in SPOFUpdate) (*types.SPOF, error) {
	if _, err := requireRole(ctx, types.RoleAdmin, types.RoleManager); err != nil {
		return nil, err
	}
	if err := validateSPOFUpdate(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	cur, err := ss.load(dbc, id)
	if err != nil {
		return nil, err
	}

	unlock, err := ss.locks.Acquire(ctx, lockKey(cur.EmployeeID))
	if err != nil {
		return nil, apierr.Upstream("lock_failure", err)
	}
	defer unlock()

	var out *types.SPOF
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		rec, err := ss.load(inner, id)
		if err != nil {
			return err
		}
		if in.KnowledgeAreas != nil {
			rec.KnowledgeAreas = in.KnowledgeAreas
		}
		if in.RiskScore != nil {
			rec.RiskScore = *in.RiskScore
		}
		if in.BackupPeople != nil {
			rec.BackupPeople = in.BackupPeople
		}
		if in.MitigationPlan != nil {
			plan := *in.MitigationPlan
			rec.MitigationPlan = &plan
		}
		now := time.Now().UTC()
		rec.AutoDetected = false
		rec.LastUpdated = now
		rec.UpdatedAt = now
		if err := ss.spofRepo.Save(inner, rec); err != nil {
			return dbErr("update spof", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.metrics.AddSPOFRecords("manual", 1)
	if err := ss.resolve(dbc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *spofService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireRole(ctx, types.RoleAdmin); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ss.load(dbc, id); err != nil {
		return err
	}
	if err := ss.spofRepo.Delete(dbc, id); err != nil {
		return dbErr("delete spof", err)
	}
	return nil
}

// resolve fills the employee and backup people summaries and the titles of
// related knowledge items. Unknown ids are left unresolved.
func (ss *spofService) resolve(dbc dbctx.Context, rows ...*types.SPOF) error {
	var userIDs, itemIDs []uuid.UUID
	for _, r := range rows {
		if r == nil {
			continue
		}
		userIDs = append(userIDs, r.EmployeeID)
		for _, b := range r.BackupPeople {
			userIDs = append(userIDs, b.UserID)
		}
		for _, a := range r.KnowledgeAreas {
			itemIDs = append(itemIDs, a.RelatedItems...)
		}
	}
	people, err := resolveSummaries(dbc, ss.userRepo, userIDs)
	if err != nil {
		return dbErr("resolve people", err)
	}
	titles, err := ss.itemTitles(dbc, itemIDs)
	if err != nil {
		return dbErr("resolve related items", err)
	}

	for _, r := range rows {
		if r == nil {
			continue
		}
		r.Employee = summaryPtr(people, r.EmployeeID)
		for i := range r.BackupPeople {
			r.BackupPeople[i].UserDetails = summaryPtr(people, r.BackupPeople[i].UserID)
		}
		for i := range r.KnowledgeAreas {
			area := &r.KnowledgeAreas[i]
			if area.RelatedItems == nil {
				area.RelatedItems = []uuid.UUID{}
			}
			area.Items = make([]types.SPOFItemRef, 0, len(area.RelatedItems))
			for _, id := range area.RelatedItems {
				if title, ok := titles[id]; ok {
					area.Items = append(area.Items, types.SPOFItemRef{ID: id, Title: title})
				}
			}
		}
	}
	return nil
}

func (ss *spofService) itemTitles(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	ids = dedupeUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	items, err := ss.knowledgeRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	for _, k := range items {
		if k != nil {
			out[k.ID] = k.Title
		}
	}
	return out, nil
}
