package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/http/middleware"
	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type AuthHandler struct {
	log          *logger.Logger
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

func (ah *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", ah.cookieSecure, true)
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, ah.log, err)
		return
	}
	ah.setTokenCookie(c, token, int(ah.authService.AccessTTL().Seconds()))
	response.RespondToken(c, http.StatusCreated, token, user)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, ah.log, err)
		return
	}
	ah.setTokenCookie(c, token, int(ah.authService.AccessTTL().Seconds()))
	response.RespondToken(c, http.StatusOK, token, user)
}

// GET /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	ah.setTokenCookie(c, "", -1)
	response.RespondOK(c, http.StatusOK, gin.H{})
}

// GET /api/auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondError(c, ah.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, user)
}
