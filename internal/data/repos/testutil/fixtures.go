package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/continuity-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	if role == "" {
		role = types.RoleEmployee
	}
	u := &types.User{
		ID:         uuid.New(),
		Name:       "User " + email,
		Email:      email,
		Password:   "pw",
		Role:       role,
		Department: "Engineering",
		Position:   "Engineer",
		JoinDate:   time.Now().UTC(),
		IsActive:   true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedKnowledge(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, title string, mut func(k *types.Knowledge)) *types.Knowledge {
	tb.Helper()
	k := &types.Knowledge{
		ID:          uuid.New(),
		Title:       title,
		Description: "description of " + title,
		Category:    "general",
		Tags:        []string{},
		OwnerID:     ownerID,
		Content:     "content",
		Source:      types.SourceManual,
		Importance:  types.ImportanceMedium,
	}
	if mut != nil {
		mut(k)
	}
	if err := tx.WithContext(ctx).Create(k).Error; err != nil {
		tb.Fatalf("seed knowledge: %v", err)
	}
	return k
}

func SeedHandover(tb testing.TB, ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, exit time.Time) *types.Handover {
	tb.Helper()
	h := &types.Handover{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		ExitDate:   exit,
		Status:     types.HandoverPlanned,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed handover: %v", err)
	}
	return h
}
