package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/service"
)

// ImportHandler handles bulk idea import
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// Import handles POST /v1/users/:user/import
// Accepts a multipart "file" upload or a raw NDJSON / JSON array body
func (h *ImportHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	user := c.Param("user")
	maxSize := h.cfg.Import.MaxUploadSize

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

	var body io.Reader = c.Request.Body
	source := "body"
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				h.rejectTooLarge(c, maxSize)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file upload is required"})
			return
		}
		defer file.Close()
		body = file
		source = header.Filename
	}

	result, err := h.services.Import.Import(ctx, user, body)
	if err != nil {
		if tooLarge(err) {
			h.rejectTooLarge(c, maxSize)
			return
		}
		respondError(c, err)
		return
	}

	h.log.Info().
		Str("user", user).
		Str("source", source).
		Int("total", result.Total).
		Int("accepted", result.Accepted).
		Int("failed", result.Failed).
		Int("new_count", result.NewCount).
		Msg("Import completed")

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

func (h *ImportHandler) rejectTooLarge(c *gin.Context, maxSize int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"ok":    false,
		"error": fmt.Sprintf("file too large, max size is %d MB", maxSize/(1024*1024)),
	})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
