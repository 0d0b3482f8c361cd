package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// Export handles GET /v1/users/:user/export?format=...
// Streams the user's collection directly to the response
func (h *ExportHandler) Export(c *gin.Context) {
	user := c.Param("user")

	format := strings.ToLower(c.DefaultQuery("format", service.FormatNDJSON))
	contentType := service.ContentType(format)
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "format must be one of: ndjson, json, csv"})
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ideas.%s", format))

	n, err := h.services.Export.Export(c.Request.Context(), c.Writer, user, format)
	if err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
			respondError(c, err)
			return
		}
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Str("user", user).Msg("Export failed")
		return
	}

	h.log.Info().Str("user", user).Str("format", format).Int("records", n).Msg("Export completed")
}
