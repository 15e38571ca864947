package models

import "time"

// AuditLog represents an operator action log entry. Action is a verb such as
// "update_prices" or "run_migration"; Details holds a JSON document.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(100);not null" json:"actor"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	TargetType string    `gorm:"type:varchar(50);not null" json:"target_type"`
	TargetID   string    `gorm:"type:varchar(100)" json:"target_id"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
