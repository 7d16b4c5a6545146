package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/data/repos"
	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /api/users?department=&role=&isActive=
func (uh *UserHandler) List(c *gin.Context) {
	active, ok := queryBool(c, "isActive")
	if !ok {
		return
	}
	users, err := uh.userService.List(c.Request.Context(), repos.UserFilter{
		Department: strings.TrimSpace(c.Query("department")),
		Role:       strings.TrimSpace(c.Query("role")),
		IsActive:   active,
	})
	if err != nil {
		response.RespondError(c, uh.log, err)
		return
	}
	response.RespondList(c, users)
}

// GET /api/users/:id
func (uh *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := uh.userService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, uh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, user)
}

// PUT /api/users/:id
func (uh *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.UserUpdate
	if !bindJSON(c, &req) {
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, uh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (uh *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := uh.userService.Deactivate(c.Request.Context(), id); err != nil {
		response.RespondError(c, uh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}
