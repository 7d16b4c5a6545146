package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
)

// caller returns the authenticated request data or a 401.
func caller(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	return rd, nil
}

// requireRole returns the caller when their role is one of roles, otherwise a 403.
func requireRole(ctx context.Context, roles ...string) (*ctxutil.RequestData, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if rd.Role == r {
			return rd, nil
		}
	}
	return nil, apierr.Forbidden("forbidden", fmt.Sprintf("Role %s is not authorized to access this route", rd.Role))
}

func isAdmin(rd *ctxutil.RequestData) bool {
	return rd != nil && rd.Role == types.RoleAdmin
}

func isManagerOrAdmin(rd *ctxutil.RequestData) bool {
	return rd != nil && (rd.Role == types.RoleAdmin || rd.Role == types.RoleManager)
}

func dbErr(op string, err error) error {
	return apierr.Upstream("persistence_failure", fmt.Errorf("%s: %w", op, err))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dedupeUUIDs drops nil and repeated ids, keeping first occurrence order.
func dedupeUUIDs(in []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
