package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/GabKongroo/NothingSpecial/internal/middleware"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/GabKongroo/NothingSpecial/pkg/validation"
	"github.com/gin-gonic/gin"
)

type MigrationHandler struct {
	migrationService *services.MigrationService
}

func NewMigrationHandler(migrationService *services.MigrationService) *MigrationHandler {
	return &MigrationHandler{migrationService: migrationService}
}

// RunMigration executes a full migration and answers when it is done. The
// run is not cancelled if the client disconnects.
func (h *MigrationHandler) RunMigration(c *gin.Context) {
	var req struct {
		RunID string `json:"run_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.migrationService.Run(ctx, c.GetString(middleware.OperatorKey), req.RunID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRunID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrMigrationRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Migration failed"})
		}
		return
	}

	body := gin.H{
		"success":  result.Success,
		"summary":  result.Summary,
		"run_id":   result.RunID,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"unlisted": result.Unlisted,
	}
	if !result.Success {
		body["error"] = result.Summary
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// GetProgress returns the latest progress snapshot of a run.
func (h *MigrationHandler) GetProgress(c *gin.Context) {
	runID := c.Param("run_id")
	if !validation.ValidateRunID(runID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID"})
		return
	}
	progress, err := h.migrationService.Progress(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, services.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Migration run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve progress"})
		return
	}
	c.JSON(http.StatusOK, progress)
}
