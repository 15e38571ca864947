package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/gin-gonic/gin"
)

// AuditLogReader lists recorded operator actions.
type AuditLogReader interface {
	GetRecentActions(ctx context.Context, action string, limit int) ([]models.AuditLog, error)
}

type AuditHandler struct {
	auditService AuditLogReader
}

func NewAuditHandler(auditService AuditLogReader) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLogs returns the newest audit entries, filtered by ?action=.
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.auditService.GetRecentActions(c.Request.Context(), c.Query("action"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
