package services

import (
	"context"
	"encoding/json"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"gorm.io/gorm"
)

// Auditor records operator actions.
type Auditor interface {
	LogAction(ctx context.Context, actor, action, targetType, targetID string, details map[string]interface{}, ipAddress string) error
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// LogAction logs an operator action to the audit log
func (s *AuditService) LogAction(ctx context.Context, actor, action, targetType, targetID string, details map[string]interface{}, ipAddress string) error {
	entry := buildAuditLog(actor, action, targetType, targetID, details, ipAddress)
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Warn("audit log write failed", logger.String("action", action), logger.ErrorField(err))
		return err
	}
	return nil
}

// GetRecentActions returns the newest entries, optionally filtered by action.
func (s *AuditService) GetRecentActions(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.AuditLog
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func buildAuditLog(actor, action, targetType, targetID string, details map[string]interface{}, ipAddress string) *models.AuditLog {
	detailsJSON := ""
	if details != nil {
		if jsonBytes, err := json.Marshal(details); err == nil {
			detailsJSON = string(jsonBytes)
		}
	}
	return &models.AuditLog{
		Actor:      actor,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    detailsJSON,
		IPAddress:  ipAddress,
	}
}
