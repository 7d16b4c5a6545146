package services

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/continuity-backend/internal/data/repos/testutil"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
)

func validKnowledge(title string) KnowledgeInput {
	return KnowledgeInput{
		Title:       strPtr(title),
		Description: strPtr("desc"),
		Category:    strPtr("ops"),
		Content:     strPtr("body"),
	}
}

func TestKnowledgeCreateDefaultsAndValidation(t *testing.T) {
	e := newEnv(t)
	ks := e.knowledgeService()
	a := e.seed(t, "a@example.com", types.RoleEmployee)
	b := e.seed(t, "b@example.com", types.RoleEmployee)

	in := validKnowledge("Runbook")
	in.Tags = []string{"db", " db ", "", "ops"}
	in.Contributors = []uuid.UUID{b.ID, b.ID}
	k, err := ks.Create(e.as(a), in)
	require.NoError(t, err)
	assert.Equal(t, a.ID, k.OwnerID)
	assert.Equal(t, types.ImportanceMedium, k.Importance)
	assert.Equal(t, types.SourceManual, k.Source)
	assert.False(t, k.IsPrivate)
	assert.Equal(t, []string{"db", "ops"}, []string(k.Tags))
	require.NotNil(t, k.Owner)
	assert.Equal(t, a.Email, k.Owner.Email)
	require.Len(t, k.ContributorUsers, 1)
	assert.Equal(t, b.ID, k.ContributorUsers[0].ID)

	missing := validKnowledge("x")
	missing.Content = nil
	_, err = ks.Create(e.as(a), missing)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	bad := validKnowledge("x")
	bad.Importance = strPtr("urgent")
	_, err = ks.Create(e.as(a), bad)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	ghost := validKnowledge("x")
	ghost.Contributors = []uuid.UUID{uuid.New()}
	_, err = ks.Create(e.as(a), ghost)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestKnowledgePrivateRoundTrip(t *testing.T) {
	e := newEnv(t)
	ks := e.knowledgeService()
	a := e.seed(t, "a@example.com", types.RoleEmployee)
	b := e.seed(t, "b@example.com", types.RoleEmployee)
	admin := e.seed(t, "admin@example.com", types.RoleAdmin)

	in := validKnowledge("Secret")
	in.IsPrivate = boolPtr(true)
	k, err := ks.Create(e.as(a), in)
	require.NoError(t, err)

	_, err = ks.Get(e.as(b), k.ID)
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	got, err := ks.Get(e.as(a), k.ID)
	require.NoError(t, err)
	assert.Equal(t, k.ID, got.ID)

	got, err = ks.Get(e.as(admin), k.ID)
	require.NoError(t, err)
	assert.Equal(t, k.ID, got.ID)

	listB, err := ks.List(e.as(b), KnowledgeListParams{})
	require.NoError(t, err)
	assert.Empty(t, listB)

	_, err = ks.Get(e.as(a), uuid.New())
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}

func TestKnowledgeSearch(t *testing.T) {
	e := newEnv(t)
	ks := e.knowledgeService()
	a := e.seed(t, "a@example.com", types.RoleEmployee)
	b := e.seed(t, "b@example.com", types.RoleEmployee)
	admin := e.seed(t, "admin@example.com", types.RoleAdmin)

	inTitle := testutil.SeedKnowledge(t, e.ctx, e.tx, a.ID, "Database failover", nil)
	inTag := testutil.SeedKnowledge(t, e.ctx, e.tx, a.ID, "Backups", func(k *types.Knowledge) {
		k.Tags = []string{"DATABASE"}
		k.Importance = types.ImportanceCritical
	})
	inContent := testutil.SeedKnowledge(t, e.ctx, e.tx, b.ID, "Notes", func(k *types.Knowledge) {
		k.Content = "see the database docs"
	})
	privateOfA := testutil.SeedKnowledge(t, e.ctx, e.tx, a.ID, "database secrets", func(k *types.Knowledge) {
		k.IsPrivate = true
	})
	testutil.SeedKnowledge(t, e.ctx, e.tx, a.ID, "Unrelated", nil)

	ids := func(items []*types.Knowledge) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(items))
		for _, k := range items {
			out = append(out, k.ID)
		}
		return out
	}

	asB, err := ks.Search(e.as(b), "database")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{inTitle.ID, inTag.ID, inContent.ID}, ids(asB))
	assert.Equal(t, inTag.ID, asB[0].ID, "critical ranks first")

	asA, err := ks.Search(e.as(a), "DATABASE")
	require.NoError(t, err)
	assert.Contains(t, ids(asA), privateOfA.ID)

	asAdmin, err := ks.Search(e.as(admin), "database")
	require.NoError(t, err)
	assert.Len(t, asAdmin, 4)

	_, err = ks.Search(e.as(b), "   ")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestKnowledgeUpdateDelete(t *testing.T) {
	e := newEnv(t)
	ks := e.knowledgeService()
	a := e.seed(t, "a@example.com", types.RoleEmployee)
	b := e.seed(t, "b@example.com", types.RoleEmployee)
	admin := e.seed(t, "admin@example.com", types.RoleAdmin)

	k, err := ks.Create(e.as(a), validKnowledge("Runbook"))
	require.NoError(t, err)

	_, err = ks.Update(e.as(b), k.ID, KnowledgeInput{Title: strPtr("hijack")})
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(ks.Delete(e.as(b), k.ID)))

	updated, err := ks.Update(e.as(a), k.ID, KnowledgeInput{Title: strPtr("Runbook v2")})
	require.NoError(t, err)
	assert.Equal(t, "Runbook v2", updated.Title)
	assert.Empty(t, updated.Contributors)

	_, err = ks.Update(e.as(a), k.ID, KnowledgeInput{Title: strPtr("  ")})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	byAdmin, err := ks.Update(e.as(admin), k.ID, KnowledgeInput{Importance: strPtr(types.ImportanceHigh)})
	require.NoError(t, err)
	assert.True(t, byAdmin.HasContributor(admin.ID))
	assert.Equal(t, a.ID, byAdmin.OwnerID)

	again, err := ks.Update(e.as(admin), k.ID, KnowledgeInput{})
	require.NoError(t, err)
	assert.Len(t, again.Contributors, 1)

	require.NoError(t, ks.Delete(e.as(a), k.ID))
	_, err = ks.Get(e.as(a), k.ID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}
