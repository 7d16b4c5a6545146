package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type HandoverHandler struct {
	log             *logger.Logger
	handoverService services.HandoverService
}

func NewHandoverHandler(log *logger.Logger, handoverService services.HandoverService) *HandoverHandler {
	return &HandoverHandler{log: log.With("handler", "HandoverHandler"), handoverService: handoverService}
}

// POST /api/handovers
func (hh *HandoverHandler) Create(c *gin.Context) {
	var req services.HandoverInput
	if !bindJSON(c, &req) {
		return
	}
	h, err := hh.handoverService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, h)
}

// GET /api/handovers?status=&employee=
func (hh *HandoverHandler) List(c *gin.Context) {
	employee, ok := queryID(c, "employee")
	if !ok {
		return
	}
	rows, err := hh.handoverService.List(c.Request.Context(), services.HandoverListParams{
		Status:     strings.TrimSpace(c.Query("status")),
		EmployeeID: employee,
	})
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /api/handovers/:id
func (hh *HandoverHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h, err := hh.handoverService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, h)
}

// PUT /api/handovers/:id
func (hh *HandoverHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.HandoverInput
	if !bindJSON(c, &req) {
		return
	}
	h, err := hh.handoverService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, h)
}

// DELETE /api/handovers/:id
func (hh *HandoverHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := hh.handoverService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}

// POST /api/handovers/:id/interview
func (hh *HandoverHandler) Interview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Transcript string `json:"transcript"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h, err := hh.handoverService.AttachInterview(c.Request.Context(), id, req.Transcript)
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, h)
}

// POST /api/handovers/:id/summary
func (hh *HandoverHandler) Summary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := hh.handoverService.GenerateSummary(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, hh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, res)
}
