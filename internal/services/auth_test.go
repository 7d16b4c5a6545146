package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
)

func TestAuthRegisterLoginAuthenticate(t *testing.T) {
	e := newEnv(t)
	as := NewAuthService(e.tx, e.log, e.users, "secret", time.Hour)

	first, token, err := as.Register(e.ctx, RegisterInput{
		Name: "Ada", Email: " Ada@Example.com ", Password: "hunter22",
		Department: "Eng", Position: "Lead",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, types.RoleAdmin, first.Role, "first user bootstraps as admin")
	assert.NotEqual(t, "hunter22", first.Password)

	second, _, err := as.Register(e.ctx, RegisterInput{
		Name: "Bob", Email: "bob@example.com", Password: "hunter22",
		Department: "Eng", Position: "Dev",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleEmployee, second.Role)

	_, _, err = as.Register(e.ctx, RegisterInput{
		Name: "Dup", Email: "bob@example.com", Password: "hunter22",
		Department: "Eng", Position: "Dev",
	})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, _, err = as.Login(e.ctx, "bob@example.com", "wrong-pass")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	u, token, err := as.Login(e.ctx, "BOB@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, second.ID, u.ID)

	rd, err := as.Authenticate(e.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, second.ID, rd.UserID)
	assert.Equal(t, types.RoleEmployee, rd.Role)

	// Role changes take effect without a new token.
	require.NoError(t, e.users.UpdateFields(dbcOf(e), second.ID, map[string]interface{}{"role": types.RoleManager}))
	rd, err = as.Authenticate(e.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, rd.Role)

	require.NoError(t, e.users.SetActive(dbcOf(e), second.ID, false))
	_, err = as.Authenticate(e.ctx, token)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
	_, _, err = as.Login(e.ctx, "bob@example.com", "hunter22")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	_, err = as.Authenticate(e.ctx, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
}

func TestAuthRegisterValidation(t *testing.T) {
	e := newEnv(t)
	as := NewAuthService(e.tx, e.log, e.users, "secret", 0)

	_, _, err := as.Register(e.ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123", Department: "d", Position: "p"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, _, err = as.Register(e.ctx, RegisterInput{Name: "A", Email: "nope", Password: "123456", Department: "d", Position: "p"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestAuthRegisterRejectsOverlongPassword(t *testing.T) {
	e := newEnv(t)
	as := NewAuthService(e.tx, e.log, e.users, "secret", 0)

	_, _, err := as.Register(e.ctx, RegisterInput{
		Name: "A", Email: "a@example.com", Password: strings.Repeat("x", maxPasswordLength+1),
		Department: "d", Position: "p",
	})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	u, _, err := as.Register(e.ctx, RegisterInput{
		Name: "A", Email: "a@example.com", Password: strings.Repeat("x", maxPasswordLength),
		Department: "d", Position: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

// staleEmailCheck reports every email as free, as a racing registration would see it.
type staleEmailCheck struct {
	repos.UserRepo
}

func (staleEmailCheck) EmailExists(dbctx.Context, string) (bool, error) { return false, nil }

func TestAuthRegisterDuplicateEmailFromUniqueIndex(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "taken@example.com", types.RoleEmployee)
	as := NewAuthService(e.tx, e.log, staleEmailCheck{e.users}, "secret", 0)

	_, _, err := as.Register(e.ctx, RegisterInput{
		Name: "Late", Email: "taken@example.com", Password: "hunter22",
		Department: "d", Position: "p",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "email_taken", ae.Code)
}
