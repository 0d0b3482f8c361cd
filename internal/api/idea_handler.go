package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/service"
)

// IdeaHandler handles idea collection endpoints
type IdeaHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewIdeaHandler creates a new IdeaHandler
func NewIdeaHandler(services *service.Services, log zerolog.Logger) *IdeaHandler {
	return &IdeaHandler{
		services: services,
		log:      log.With().Str("handler", "ideas").Logger(),
	}
}

type mergeRequest struct {
	Ideas []models.IdeaPayload `json:"ideas" binding:"required"`
}

// List handles GET /v1/users/:user/ideas
func (h *IdeaHandler) List(c *gin.Context) {
	user := c.Param("user")

	ideas, err := h.services.Ideas.Load(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"count": len(ideas),
		"ideas": ideas,
	})
}

// Get handles GET /v1/users/:user/ideas/:keyword
func (h *IdeaHandler) Get(c *gin.Context) {
	idea, err := h.services.Ideas.Get(c.Request.Context(), c.Param("user"), c.Param("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "idea": idea})
}

// Merge handles POST /v1/users/:user/ideas
func (h *IdeaHandler) Merge(c *gin.Context) {
	user := c.Param("user")

	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	added, err := h.services.Ideas.Merge(c.Request.Context(), user, req.Ideas)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("user", user).Int("received", len(req.Ideas)).Int("new_count", added).Msg("Ideas merged")
	c.JSON(http.StatusOK, gin.H{"ok": true, "new_count": added})
}

// Delete handles DELETE /v1/users/:user/ideas/:keyword
func (h *IdeaHandler) Delete(c *gin.Context) {
	if err := h.services.Ideas.Delete(c.Request.Context(), c.Param("user"), c.Param("keyword")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
