package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/service"
)

// CounterHandler handles historical counter endpoints
type CounterHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCounterHandler creates a new CounterHandler
func NewCounterHandler(services *service.Services, log zerolog.Logger) *CounterHandler {
	return &CounterHandler{
		services: services,
		log:      log.With().Str("handler", "counters").Logger(),
	}
}

// Get handles GET /v1/users/:user/counts
func (h *CounterHandler) Get(c *gin.Context) {
	counts, err := h.services.Counters.GetCounts(c.Request.Context(), c.Param("user"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "counts": counts})
}

// Recalibrate handles POST /admin/users/:user/recalibrate
func (h *CounterHandler) Recalibrate(c *gin.Context) {
	result, err := h.services.Counters.Recalibrate(c.Request.Context(), c.Param("user"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

// RecalibrateAll handles POST /admin/recalibrate
func (h *CounterHandler) RecalibrateAll(c *gin.Context) {
	results, err := h.services.Counters.RecalibrateAll(c.Request.Context())

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if err != nil {
		h.log.Warn().Err(err).Int("failed", failed).Msg("Recalibration finished with errors")
	}

	// Per-user failures are reported in the results
	c.JSON(http.StatusOK, gin.H{
		"ok":      err == nil,
		"users":   len(results),
		"failed":  failed,
		"results": results,
	})
}
