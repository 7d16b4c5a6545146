package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/continuity-backend/internal/http/response"
)

// pathID parses the :id param. Malformed ids are reported as not found.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondFailure(c, http.StatusNotFound, "not_found", "Resource not found")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query param; ok is false after a 400 was written.
func queryID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_"+key, "Invalid "+key+" id")
		return uuid.Nil, false
	}
	return id, true
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_"+key, "Invalid "+key+" value")
		return nil, false
	}
	return &v, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}
