package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	types "github.com/yungbote/continuity-backend/internal/domain"
	"github.com/yungbote/continuity-backend/internal/platform/apierr"
	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/dbctx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordLength = 72
)

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	JoinDate   *time.Time `json:"joinDate,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	// Authenticate validates tokenString and returns the caller it belongs to.
	// Unknown or inactive users are rejected.
	Authenticate(ctx context.Context, tokenString string) (*ctxutil.RequestData, error)
	Me(ctx context.Context) (*types.User, error)
	AccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 30 * 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func errEmailTaken() error {
	return apierr.BadRequest("email_taken", "User already exists")
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	in.Position = strings.TrimSpace(in.Position)
	switch {
	case in.Name == "", in.Email == "", in.Department == "", in.Position == "":
		return nil, "", apierr.BadRequest("missing_fields", "Name, email, department and position are required")
	case !strings.Contains(in.Email, "@"):
		return nil, "", apierr.BadRequest("invalid_email", "Please provide a valid email")
	case len(in.Password) < minPasswordLength:
		return nil, "", apierr.BadRequest("weak_password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	case len(in.Password) > maxPasswordLength:
		return nil, "", apierr.BadRequest("password_too_long", fmt.Sprintf("Password must be at most %d bytes", maxPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	joinDate := time.Now().UTC()
	if in.JoinDate != nil && !in.JoinDate.IsZero() {
		joinDate = in.JoinDate.UTC()
	}

	user := &types.User{
		ID:         uuid.New(),
		Name:       in.Name,
		Email:      in.Email,
		Password:   string(hash),
		Role:       types.RoleEmployee,
		Department: in.Department,
		Position:   in.Position,
		JoinDate:   joinDate,
		IsActive:   true,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(inner, user.Email)
		if err != nil {
			return dbErr("check email", err)
		}
		if exists {
			return errEmailTaken()
		}
		// The very first account bootstraps the workspace as admin.
		n, err := as.userRepo.Count(inner)
		if err != nil {
			return dbErr("count users", err)
		}
		if n == 0 {
			user.Role = types.RoleAdmin
		}
		if _, err := as.userRepo.Create(inner, []*types.User{user}); err != nil {
			// A concurrent registration won the unique email index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errEmailTaken()
			}
			return dbErr("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	as.log.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apierr.BadRequest("missing_credentials", "Please provide an email and password")
	}

	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, "", dbErr("load user", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}
	if !user.IsActive {
		return nil, "", apierr.Unauthorized("inactive_user", "Account is deactivated")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	return user, token, nil
}

func (as *authService) Authenticate(ctx context.Context, tokenString string) (*ctxutil.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return nil, apierr.Unauthorized("unauthorized", "Invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthorized("unauthorized", "Invalid user id in token")
	}

	// The stored role wins over the claim so demotions apply immediately.
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, dbErr("load user", err)
	}
	if user == nil {
		return nil, apierr.Unauthorized("unauthorized", "User not found")
	}
	if !user.IsActive {
		return nil, apierr.Unauthorized("inactive_user", "Account is deactivated")
	}
	return &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

func (as *authService) Me(ctx context.Context) (*types.User, error) {
	rd, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return nil, dbErr("load user", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	if user == nil {
		return "", errors.New("nil user")
	}
	now := time.Now()
	claims := JWTClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
