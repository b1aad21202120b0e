package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionVerify   = "guest_pass.verify"
	AuditActionComplete = "guest_pass.complete"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action       string     `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType string     `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceUID  string     `gorm:"type:varchar(255);index" json:"resource_uid"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"` // granted, denied, not_found, success
	Reason       string     `gorm:"type:text" json:"reason,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	Duration     int64      `json:"duration_ms"` // milliseconds
	CreatedAt    time.Time  `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
