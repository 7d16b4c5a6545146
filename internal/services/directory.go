package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
)

// resolveSummaries loads the users behind ids, keyed by id. Missing ids are absent.
func resolveSummaries(dbc dbctx.Context, userRepo repos.UserRepo, ids []uuid.UUID) (map[uuid.UUID]types.UserSummary, error) {
	out := map[uuid.UUID]types.UserSummary{}
	ids = dedupeUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	users, err := userRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u != nil {
			out[u.ID] = u.Summary()
		}
	}
	return out, nil
}

func summaryPtr(people map[uuid.UUID]types.UserSummary, id uuid.UUID) *types.UserSummary {
	s, ok := people[id]
	if !ok {
		return nil
	}
	return &s
}
