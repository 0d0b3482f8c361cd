package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/service"
)

// ArticleHandler handles article version endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "articles").Logger(),
	}
}

type appendArticleRequest struct {
	HTML   string `json:"html" binding:"required"`
	Status string `json:"status" binding:"omitempty,article_status"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,article_status"`
}

// Append handles POST /v1/users/:user/ideas/:keyword/articles
func (h *ArticleHandler) Append(c *gin.Context) {
	var req appendArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.services.Articles.Append(c.Request.Context(), c.Param("user"), c.Param("keyword"), req.HTML, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "article": article})
}

// UpdateStatus handles PATCH /v1/users/:user/ideas/:keyword/articles/:id
func (h *ArticleHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.services.Articles.UpdateStatus(c.Request.Context(), c.Param("user"), c.Param("keyword"), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "article": article})
}

// Delete handles DELETE /v1/users/:user/ideas/:keyword/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Articles.Delete(c.Request.Context(), c.Param("user"), c.Param("keyword"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
