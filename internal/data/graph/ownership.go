package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/platform/neo4jdb"
)

// OwnershipProjector mirrors who owns and contributes to which knowledge items.
type OwnershipProjector interface {
	Project(ctx context.Context, users []*types.User, items []*types.Knowledge) error
}

type ownershipPayload struct {
	Users         []map[string]any
	Knowledge     []map[string]any
	Owns          []map[string]any
	ContributesTo []map[string]any
	SyncedAt      string
}

func buildOwnershipPayload(users []*types.User, items []*types.Knowledge, now time.Time) ownershipPayload {
	syncedAt := now.UTC().Format(time.RFC3339Nano)
	p := ownershipPayload{
		Users:         make([]map[string]any, 0, len(users)),
		Knowledge:     make([]map[string]any, 0, len(items)),
		Owns:          make([]map[string]any, 0, len(items)),
		ContributesTo: make([]map[string]any, 0),
		SyncedAt:      syncedAt,
	}

	known := map[uuid.UUID]bool{}
	for _, u := range users {
		if u == nil || u.ID == uuid.Nil {
			continue
		}
		known[u.ID] = true
		p.Users = append(p.Users, map[string]any{
			"id":         u.ID.String(),
			"name":       u.Name,
			"department": u.Department,
			"position":   u.Position,
			"role":       u.Role,
			"synced_at":  syncedAt,
		})
	}

	for _, k := range items {
		if k == nil || k.ID == uuid.Nil {
			continue
		}
		tags := make([]string, 0, len(k.Tags))
		tags = append(tags, k.Tags...)
		p.Knowledge = append(p.Knowledge, map[string]any{
			"id":         k.ID.String(),
			"title":      k.Title,
			"category":   k.Category,
			"importance": k.Importance,
			"is_private": k.IsPrivate,
			"tags":       tags,
			"synced_at":  syncedAt,
		})
		if known[k.OwnerID] {
			p.Owns = append(p.Owns, map[string]any{
				"user_id":      k.OwnerID.String(),
				"knowledge_id": k.ID.String(),
			})
		}
		seen := map[uuid.UUID]bool{}
		for _, c := range k.Contributors {
			if c == k.OwnerID || seen[c] || !known[c] {
				continue
			}
			seen[c] = true
			p.ContributesTo = append(p.ContributesTo, map[string]any{
				"user_id":      c.String(),
				"knowledge_id": k.ID.String(),
			})
		}
	}
	return p
}

type neo4jOwnership struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewOwnershipProjector returns a projector writing to client, or a no-op one when client is nil.
func NewOwnershipProjector(client *neo4jdb.Client, log *logger.Logger) OwnershipProjector {
	if client == nil || client.Driver == nil {
		return noopOwnership{}
	}
	return &neo4jOwnership{client: client, log: log.With("graph", "Ownership")}
}

type noopOwnership struct{}

func (noopOwnership) Project(context.Context, []*types.User, []*types.Knowledge) error { return nil }

func (g *neo4jOwnership) Project(ctx context.Context, users []*types.User, items []*types.Knowledge) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := buildOwnershipPayload(users, items, time.Now())

	g.client.RunBestEffort(ctx,
		`CREATE CONSTRAINT employee_id_unique IF NOT EXISTS FOR (u:Employee) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT knowledge_id_unique IF NOT EXISTS FOR (k:Knowledge) REQUIRE k.id IS UNIQUE`,
	)

	err := g.client.Write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		for _, s := range ownershipSteps(p) {
			res, err := tx.Run(ctx, s.cypher, s.params)
			if err != nil {
				return err
			}
			if _, err := res.Consume(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.log.Debug("Ownership graph synced",
		"employees", len(p.Users),
		"knowledge", len(p.Knowledge),
		"owns", len(p.Owns),
		"contributes_to", len(p.ContributesTo),
	)
	return nil
}

type cypherStep struct {
	cypher string
	params map[string]any
}

// ownershipSteps upserts nodes and edges, then removes whatever this sync did not touch.
func ownershipSteps(p ownershipPayload) []cypherStep {
	return []cypherStep{
		{`UNWIND $users AS u
MERGE (e:Employee {id: u.id})
SET e += u`, map[string]any{"users": p.Users}},
		{`UNWIND $items AS k
MERGE (n:Knowledge {id: k.id})
SET n += k`, map[string]any{"items": p.Knowledge}},
		{`UNWIND $rels AS r
MATCH (e:Employee {id: r.user_id})
MATCH (k:Knowledge {id: r.knowledge_id})
MERGE (e)-[x:OWNS]->(k)
SET x.synced_at = $synced_at`, map[string]any{"rels": p.Owns, "synced_at": p.SyncedAt}},
		{`UNWIND $rels AS r
MATCH (e:Employee {id: r.user_id})
MATCH (k:Knowledge {id: r.knowledge_id})
MERGE (e)-[x:CONTRIBUTES_TO]->(k)
SET x.synced_at = $synced_at`, map[string]any{"rels": p.ContributesTo, "synced_at": p.SyncedAt}},
		{`MATCH ()-[x:OWNS|CONTRIBUTES_TO]->()
WHERE x.synced_at <> $synced_at
DELETE x`, map[string]any{"synced_at": p.SyncedAt}},
		{`MATCH (n)
WHERE (n:Employee OR n:Knowledge) AND n.synced_at <> $synced_at
DETACH DELETE n`, map[string]any{"synced_at": p.SyncedAt}},
	}
}
