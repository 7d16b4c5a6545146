package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/continuity-backend/internal/http/response"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

type KnowledgeHandler struct {
	log              *logger.Logger
	knowledgeService services.KnowledgeService
}

func NewKnowledgeHandler(log *logger.Logger, knowledgeService services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{log: log.With("handler", "KnowledgeHandler"), knowledgeService: knowledgeService}
}

// POST /api/knowledge
func (kh *KnowledgeHandler) Create(c *gin.Context) {
	var req services.KnowledgeInput
	if !bindJSON(c, &req) {
		return
	}
	k, err := kh.knowledgeService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, k)
}

// GET /api/knowledge?category=&tag=&importance=&owner=
func (kh *KnowledgeHandler) List(c *gin.Context) {
	owner, ok := queryID(c, "owner")
	if !ok {
		return
	}
	items, err := kh.knowledgeService.List(c.Request.Context(), services.KnowledgeListParams{
		Category:   strings.TrimSpace(c.Query("category")),
		Tag:        strings.TrimSpace(c.Query("tag")),
		Importance: strings.TrimSpace(c.Query("importance")),
		OwnerID:    owner,
	})
	if err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondList(c, items)
}

// GET /api/knowledge/search?query=
func (kh *KnowledgeHandler) Search(c *gin.Context) {
	items, err := kh.knowledgeService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondList(c, items)
}

// GET /api/knowledge/:id
func (kh *KnowledgeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k, err := kh.knowledgeService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, k)
}

// PUT /api/knowledge/:id
func (kh *KnowledgeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.KnowledgeInput
	if !bindJSON(c, &req) {
		return
	}
	k, err := kh.knowledgeService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, k)
}

// DELETE /api/knowledge/:id
func (kh *KnowledgeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := kh.knowledgeService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, kh.log, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}
