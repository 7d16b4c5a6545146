package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	"github.com/yungbote/continuity-backend/internal/data/repos/testutil"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/locker"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

type stubAssessor struct {
	mu       sync.Mutex
	calls    int
	bundles  [][]continuity.UserBundle
	analyses []continuity.Analysis
	err      error
}

func (s *stubAssessor) Assess(_ context.Context, bundles []continuity.UserBundle) ([]continuity.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.bundles = append(s.bundles, bundles)
	if s.err != nil {
		return nil, s.err
	}
	return s.analyses, nil
}

type stubSummarizer struct {
	calls int
	text  string
	err   error
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type env struct {
	ctx        context.Context
	tx         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	knowledge  repos.KnowledgeRepo
	handovers  repos.HandoverRepo
	spofs      repos.SPOFRepo
	assessor   *stubAssessor
	summarizer *stubSummarizer
}

// newEnv wires repos against a rolled-back transaction. Services receive the
// transaction as their handle, so their own transactions become savepoints.
func newEnv(t *testing.T) *env {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	return &env{
		ctx:        context.Background(),
		tx:         tx,
		log:        log,
		users:      repos.NewUserRepo(tx, log),
		knowledge:  repos.NewKnowledgeRepo(tx, log),
		handovers:  repos.NewHandoverRepo(tx, log),
		spofs:      repos.NewSPOFRepo(tx, log),
		assessor:   &stubAssessor{},
		summarizer: &stubSummarizer{text: "summary text"},
	}
}

func (e *env) seed(t *testing.T, email, role string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, e.ctx, e.tx, email, role)
}

func (e *env) as(u *types.User) context.Context {
	return ctxutil.WithRequestData(e.ctx, &ctxutil.RequestData{UserID: u.ID, Role: u.Role})
}

func (e *env) userService() UserService {
	return NewUserService(e.tx, e.log, e.users)
}

func (e *env) knowledgeService() KnowledgeService {
	return NewKnowledgeService(e.tx, e.log, e.users, e.knowledge)
}

func (e *env) handoverService() HandoverService {
	return NewHandoverService(e.tx, e.log, e.users, e.handovers, e.summarizer)
}

func (e *env) spofService() *spofService {
	return NewSPOFService(e.tx, e.log, e.users, e.knowledge, e.spofs, e.assessor, locker.NewMemory(), nil, nil).(*spofService)
}

func dbcOf(e *env) dbctx.Context {
	return dbctx.Context{Ctx: e.ctx, Tx: e.tx}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
