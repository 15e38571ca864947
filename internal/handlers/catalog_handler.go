package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/middleware"
	"github.com/GabKongroo/NothingSpecial/internal/pricing"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	statsService   *services.StatsService
}

func NewCatalogHandler(catalogService *services.CatalogService, statsService *services.StatsService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, statsService: statsService}
}

// GetStats returns the dashboard counters.
func (h *CatalogHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListBeats returns the catalog, optionally filtered by title.
func (h *CatalogHandler) ListBeats(c *gin.Context) {
	beats, err := h.catalogService.ListBeats(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve beats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"beats": beats})
}

// UpdateBeats applies a batch of pricing edits. JSON bodies carry
// {"edits": {"<id>": {...}}}; form bodies use <field>_<id> names.
func (h *CatalogHandler) UpdateBeats(c *gin.Context) {
	edits, err := bindEdits(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(edits) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No edits submitted"})
		return
	}

	beats, err := h.catalogService.ApplyEdits(c.Request.Context(), c.GetString(middleware.OperatorKey), c.ClientIP(), edits)
	if err != nil {
		var rej *pricing.Rejection
		if errors.As(err, &rej) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   rej.Message,
				"message": rej.Message,
				"beat_id": rej.BeatID,
				"reason":  rej.Reason,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prices updated successfully",
		"beats":   beats,
	})
}

func bindEdits(c *gin.Context) (map[uint]pricing.Edit, error) {
	if c.ContentType() == gin.MIMEJSON {
		var body editsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		return body.toEdits()
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return parseEditForm(c.Request.PostForm)
}
