package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

// UserUpdate carries the profile fields PUT /users/:id may change. Password is
// deliberately absent; Role and IsActive are admin-only.
type UserUpdate struct {
	Name       *string    `json:"name,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Department *string    `json:"department,omitempty"`
	Position   *string    `json:"position,omitempty"`
	JoinDate   *time.Time `json:"joinDate,omitempty"`
	Role       *string    `json:"role,omitempty"`
	IsActive   *bool      `json:"isActive,omitempty"`
}

type UserService interface {
	List(ctx context.Context, filter repos.UserFilter) ([]*types.User, error)
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	Update(ctx context.Context, id uuid.UUID, in UserUpdate) (*types.User, error)
	// Deactivate soft-deletes a user; the row is kept with isActive=false.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// SetRole is the operator path used by the CLI; it bypasses request auth.
	SetRole(ctx context.Context, email, role string) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
	}
}

func (us *userService) List(ctx context.Context, filter repos.UserFilter) ([]*types.User, error) {
	if _, err := requireRole(ctx, types.RoleAdmin, types.RoleManager); err != nil {
		return nil, err
	}
	if filter.Role != "" && !types.ValidRole(filter.Role) {
		return nil, apierr.BadRequest("invalid_role", "Unknown role filter")
	}
	users, err := us.userRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, dbErr("list users", err)
	}
	return users, nil
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	return us.load(dbctx.Context{Ctx: ctx}, id)
}

func (us *userService) load(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, dbErr("load user", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return user, nil
}

func (us *userService) Update(ctx context.Context, id uuid.UUID, in UserUpdate) (*types.User, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if rd.UserID != id && !isAdmin(rd) {
		return nil, apierr.Forbidden("forbidden", "Not authorized to update this user")
	}
	if (in.Role != nil || in.IsActive != nil) && !isAdmin(rd) {
		return nil, apierr.Forbidden("forbidden", "Only admins may change role or active status")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return nil, apierr.BadRequest("invalid_name", "Name cannot be empty")
		}
		updates["name"] = v
	}
	if in.Department != nil {
		v := strings.TrimSpace(*in.Department)
		if v == "" {
			return nil, apierr.BadRequest("invalid_department", "Department cannot be empty")
		}
		updates["department"] = v
	}
	if in.Position != nil {
		v := strings.TrimSpace(*in.Position)
		if v == "" {
			return nil, apierr.BadRequest("invalid_position", "Position cannot be empty")
		}
		updates["position"] = v
	}
	if in.JoinDate != nil && !in.JoinDate.IsZero() {
		updates["join_date"] = in.JoinDate.UTC()
	}
	if in.Role != nil {
		if !types.ValidRole(*in.Role) {
			return nil, apierr.BadRequest("invalid_role", "Role must be admin, manager or employee")
		}
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	var out *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := us.load(inner, id)
		if err != nil {
			return err
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email == "" || !strings.Contains(email, "@") {
				return apierr.BadRequest("invalid_email", "Please provide a valid email")
			}
			if email != current.Email {
				taken, err := us.userRepo.EmailExists(inner, email)
				if err != nil {
					return dbErr("check email", err)
				}
				if taken {
					return apierr.BadRequest("email_taken", "Email already in use")
				}
				updates["email"] = email
			}
		}
		if len(updates) > 0 {
			updates["updated_at"] = time.Now().UTC()
			if err := us.userRepo.UpdateFields(inner, id, updates); err != nil {
				return dbErr("update user", err)
			}
		}
		out, err = us.load(inner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	rd, err := requireRole(ctx, types.RoleAdmin)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := us.load(dbc, id); err != nil {
		return err
	}
	if err := us.userRepo.SetActive(dbc, id, false); err != nil {
		return dbErr("deactivate user", err)
	}
	us.log.Info("User deactivated", "user_id", id, "by_user_id", rd.UserID)
	return nil
}

func (us *userService) SetRole(ctx context.Context, email, role string) (*types.User, error) {
	if !types.ValidRole(role) {
		return nil, apierr.BadRequest("invalid_role", "Role must be admin, manager or employee")
	}
	dbc := dbctx.Context{Ctx: ctx}
	users, err := us.userRepo.GetByEmails(dbc, []string{normalizeEmail(email)})
	if err != nil {
		return nil, dbErr("load user", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	u := users[0]
	if err := us.userRepo.UpdateFields(dbc, u.ID, map[string]interface{}{"role": role, "updated_at": time.Now().UTC()}); err != nil {
		return nil, dbErr("set role", err)
	}
	u.Role = role
	return u, nil
}
