package continuity

import (
	"github.com/google/uuid"

	types "github.com/yungbote/continuity-backend/internal/domain"
)

// KnowledgeDigest is the reasoning-facing view of a knowledge item; the content body is omitted.
type KnowledgeDigest struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Category     string              `json:"category"`
	Tags         []string            `json:"tags"`
	Importance   string              `json:"importance"`
	IsPrivate    bool                `json:"isPrivate"`
	Owner        *types.UserSummary  `json:"owner,omitempty"`
	Contributors []types.UserSummary `json:"contributors"`
}

type UserBundle struct {
	User                 types.UserSummary `json:"user"`
	OwnedKnowledge       []KnowledgeDigest `json:"ownedKnowledge"`
	ContributedKnowledge []KnowledgeDigest `json:"contributedKnowledge"`
}

// Aggregate partitions items per active user, in the order users are given.
// An item lands in a user's owned set when they own it, otherwise in the
// contributed set when they are listed as a contributor. people resolves
// owner and contributor ids to summaries; unknown ids are left out.
func Aggregate(active []*types.User, items []*types.Knowledge, people map[uuid.UUID]types.UserSummary) []UserBundle {
	digests := make([]KnowledgeDigest, len(items))
	for i, k := range items {
		if k == nil {
			continue
		}
		digests[i] = digest(k, people)
	}

	bundles := make([]UserBundle, 0, len(active))
	for _, u := range active {
		if u == nil {
			continue
		}
		b := UserBundle{
			User:                 u.Summary(),
			OwnedKnowledge:       []KnowledgeDigest{},
			ContributedKnowledge: []KnowledgeDigest{},
		}
		for i, k := range items {
			if k == nil {
				continue
			}
			if k.OwnerID == u.ID {
				b.OwnedKnowledge = append(b.OwnedKnowledge, digests[i])
				continue
			}
			if k.HasContributor(u.ID) {
				b.ContributedKnowledge = append(b.ContributedKnowledge, digests[i])
			}
		}
		bundles = append(bundles, b)
	}
	return bundles
}

func digest(k *types.Knowledge, people map[uuid.UUID]types.UserSummary) KnowledgeDigest {
	d := KnowledgeDigest{
		ID:           k.ID,
		Title:        k.Title,
		Description:  k.Description,
		Category:     k.Category,
		Tags:         append([]string{}, k.Tags...),
		Importance:   k.Importance,
		IsPrivate:    k.IsPrivate,
		Contributors: []types.UserSummary{},
	}
	if s, ok := people[k.OwnerID]; ok {
		owner := s
		d.Owner = &owner
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range k.Contributors {
		if seen[c] {
			continue
		}
		seen[c] = true
		if s, ok := people[c]; ok {
			d.Contributors = append(d.Contributors, s)
		}
	}
	return d
}

// PeopleIDs returns every user id referenced by items as owner or contributor.
func PeopleIDs(items []*types.Knowledge) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	out := make([]uuid.UUID, 0)
	add := func(id uuid.UUID) {
		if id == uuid.Nil || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, k := range items {
		if k == nil {
			continue
		}
		add(k.OwnerID)
		for _, c := range k.Contributors {
			add(c)
		}
	}
	return out
}
