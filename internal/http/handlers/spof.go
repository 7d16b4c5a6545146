package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type SPOFHandler struct {
	log         *logger.Logger
	spofService services.SPOFService
}

func NewSPOFHandler(log *logger.Logger, spofService services.SPOFService) *SPOFHandler {
	return &SPOFHandler{log: log.With("handler", "SPOFHandler"), spofService: spofService}
}

// POST /api/spof/analyze
func (sh *SPOFHandler) Analyze(c *gin.Context) {
	recs, err := sh.spofService.Analyze(c.Request.Context())
	if err != nil {
		response.RespondError(c, sh.log, err)
		return
	}
	response.RespondList(c, recs)
}

// GET /api/spof
func (sh *SPOFHandler) List(c *gin.Context) {
	recs, err := sh.spofService.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, sh.log, err)
		return
	}
	response.RespondList(c, recs)
}

// GET /api/spof/:id
func (sh *SPOFHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := sh.spofService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, sh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, rec)
}

// PUT /api/spof/:id
func (sh *SPOFHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.SPOFUpdate
	if !bindJSON(c, &req) {
		return
	}
	rec, err := sh.spofService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, sh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, rec)
}

// DELETE /api/spof/:id
func (sh *SPOFHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := sh.spofService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, sh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}
