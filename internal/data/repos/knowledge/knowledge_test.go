package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/continuity-backend/internal/data/repos/testutil"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
)

func TestKnowledgeRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewKnowledgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com", "")

	created, err := repo.Create(dbc, &types.Knowledge{
		Title:       "Deploy runbook",
		Description: "How we ship",
		Category:    "ops",
		Tags:        []string{"deploy", "k8s"},
		OwnerID:     owner.ID,
		Content:     "kubectl apply",
		Source:      types.SourceManual,
		Importance:  types.ImportanceHigh,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned")
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Title != "Deploy runbook" || len(got.Tags) != 2 {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	contributor := uuid.New()
	got.Contributors = append(got.Contributors, contributor)
	got.Title = "Deploy runbook v2"
	if err := repo.Save(dbc, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, _ := repo.GetByID(dbc, created.ID)
	if reloaded.Title != "Deploy runbook v2" || !reloaded.HasContributor(contributor) {
		t.Fatalf("Save: unexpected result: %+v", reloaded)
	}

	if err := repo.Delete(dbc, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID (deleted): %v", err)
	}
	if gone != nil {
		t.Fatalf("Delete: expected row to be gone")
	}
}

func TestKnowledgeRepoListPrivacyAndFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewKnowledgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	a := testutil.SeedUser(t, ctx, tx, "a@example.com", "")
	b := testutil.SeedUser(t, ctx, tx, "b@example.com", "")

	public := testutil.SeedKnowledge(t, ctx, tx, a.ID, "public", func(k *types.Knowledge) {
		k.Tags = []string{"db", "postgres"}
		k.Category = "data"
	})
	private := testutil.SeedKnowledge(t, ctx, tx, a.ID, "private", func(k *types.Knowledge) {
		k.IsPrivate = true
		k.Tags = []string{"dbx"}
	})

	asB, err := repo.List(dbc, Filter{Viewer: Viewer{UserID: b.ID}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(asB) != 1 || asB[0].ID != public.ID {
		t.Fatalf("List as non-owner: unexpected result: %+v", asB)
	}

	asA, err := repo.List(dbc, Filter{Viewer: Viewer{UserID: a.ID}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(asA) != 2 {
		t.Fatalf("List as owner: expected 2, got %d", len(asA))
	}

	asAdmin, err := repo.List(dbc, Filter{Viewer: Viewer{UserID: uuid.New(), IsAdmin: true}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(asAdmin) != 2 {
		t.Fatalf("List as admin: expected 2, got %d", len(asAdmin))
	}

	byTag, err := repo.List(dbc, Filter{Tag: "db", Viewer: Viewer{UserID: a.ID}})
	if err != nil {
		t.Fatalf("List(tag): %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != public.ID {
		t.Fatalf("List(tag): expected exact tag match only, got %+v", byTag)
	}

	byCategory, err := repo.List(dbc, Filter{Category: "data", Viewer: Viewer{IsAdmin: true}})
	if err != nil {
		t.Fatalf("List(category): %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != public.ID {
		t.Fatalf("List(category): unexpected result: %+v", byCategory)
	}
	_ = private
}

func TestKnowledgeRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewKnowledgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com", "")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com", "")

	base := time.Now().UTC().Add(-time.Hour)
	inTitle := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Database failover", func(k *types.Knowledge) {
		k.Importance = types.ImportanceLow
		k.CreatedAt = base
	})
	inTag := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Backups", func(k *types.Knowledge) {
		k.Tags = []string{"DATABASE"}
		k.Importance = types.ImportanceCritical
		k.CreatedAt = base.Add(time.Minute)
	})
	inContent := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Runbook", func(k *types.Knowledge) {
		k.Content = "restart the database_primary node"
		k.Importance = types.ImportanceLow
		k.CreatedAt = base.Add(2 * time.Minute)
	})
	privateHit := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Private database notes", func(k *types.Knowledge) {
		k.IsPrivate = true
	})
	testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Unrelated", nil)

	got, err := repo.Search(dbc, "database", Viewer{UserID: other.ID})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []uuid.UUID{inTag.ID, inContent.ID, inTitle.ID}
	if len(got) != len(want) {
		t.Fatalf("Search: expected %d results, got %d: %+v", len(want), len(got), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Search[%d]: expected %s, got %s (%s)", i, id, got[i].ID, got[i].Title)
		}
	}

	asOwner, err := repo.Search(dbc, "DataBase", Viewer{UserID: owner.ID})
	if err != nil {
		t.Fatalf("Search as owner: %v", err)
	}
	found := false
	for _, k := range asOwner {
		if k.ID == privateHit.ID {
			found = true
		}
	}
	if !found || len(asOwner) != 4 {
		t.Fatalf("Search as owner: expected private hit among 4 results, got %+v", asOwner)
	}

	literal, err := repo.Search(dbc, "e_p", Viewer{IsAdmin: true})
	if err != nil {
		t.Fatalf("Search(literal): %v", err)
	}
	if len(literal) != 1 || literal[0].ID != inContent.ID {
		t.Fatalf("Search(literal underscore): unexpected result: %+v", literal)
	}
}

func TestMatches(t *testing.T) {
	k := &types.Knowledge{Title: "x", Tags: []string{"Postgres"}}
	if !Matches(k, "postgres") {
		t.Fatalf("expected tag match")
	}
	if Matches(k, "mysql") {
		t.Fatalf("unexpected match")
	}
	if Matches(nil, "x") {
		t.Fatalf("nil should not match")
	}
}

func TestKnowledgeRepoMatchesEscapedAndNonASCIIText(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewKnowledgeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com", "")
	rnd := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Lab budget", func(k *types.Knowledge) {
		k.Tags = []string{"R&D", "<infra>"}
	})
	uber := testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Über Datenbank", nil)
	testutil.SeedKnowledge(t, ctx, tx, owner.ID, "Unrelated", nil)

	cases := []struct {
		query string
		want  uuid.UUID
	}{
		{"r&d", rnd.ID},
		{"<INFRA>", rnd.ID},
		{"über", uber.ID},
		{"ÜBER DATEN", uber.ID},
	}
	for _, tc := range cases {
		got, err := repo.Search(dbc, tc.query, Viewer{UserID: owner.ID})
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if len(got) != 1 || got[0].ID != tc.want {
			t.Fatalf("Search(%q): expected only %s, got %+v", tc.query, tc.want, got)
		}
	}

	tagged, err := repo.List(dbc, Filter{Tag: "R&D", Viewer: Viewer{UserID: owner.ID}})
	if err != nil {
		t.Fatalf("List(tag): %v", err)
	}
	if len(tagged) != 1 || tagged[0].ID != rnd.ID {
		t.Fatalf("List(tag=R&D): unexpected result: %+v", tagged)
	}

	byIDs, err := repo.GetByIDs(dbc, []uuid.UUID{rnd.ID, uber.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(byIDs) != 2 {
		t.Fatalf("GetByIDs: expected 2 rows, got %d", len(byIDs))
	}
}
