package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// AuditFilter narrows an audit trail lookup. Empty fields match everything.
type AuditFilter struct {
	// Code is the scanned code, or the completed session/pass id
	Code   string
	Action string
	Status string
}

// AuditRepository stores the verification and completion trail of a hospital
type AuditRepository struct{}

// NewAuditRepository creates a new audit repository
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Create records one verification attempt or completion
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := database.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns a hospital's audit entries matching the filter, newest first.
// Used by checkpoint staff to settle disputes over a scan.
func (r *AuditRepository) List(ctx context.Context, tenantID uuid.UUID, filter AuditFilter, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := database.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")

	if filter.Code != "" {
		query = query.Where("resource_uid = ?", filter.Code)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
