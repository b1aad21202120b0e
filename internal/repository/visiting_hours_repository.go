package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// VisitingHoursRepository handles visiting-hours rule database operations
type VisitingHoursRepository struct{}

// NewVisitingHoursRepository creates a new visiting hours repository
func NewVisitingHoursRepository() *VisitingHoursRepository {
	return &VisitingHoursRepository{}
}

// Create creates a new rule
func (r *VisitingHoursRepository) Create(ctx context.Context, rule *models.VisitingHoursRule) error {
	if err := database.DB.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create visiting hours rule: %w", err)
	}
	return nil
}

// ListApplicable returns the active hospital-wide rules plus those of the given wing
func (r *VisitingHoursRepository) ListApplicable(ctx context.Context, hospitalID uuid.UUID, wingID *uuid.UUID) ([]models.VisitingHoursRule, error) {
	var rules []models.VisitingHoursRule
	query := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND is_active = ?", hospitalID, true)

	if wingID != nil {
		query = query.Where("(wing_id IS NULL OR wing_id = ?)", *wingID)
	} else {
		query = query.Where("wing_id IS NULL")
	}

	if err := query.Order("start_time ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get visiting hours: %w", err)
	}
	return rules, nil
}

// ListByHospital returns every active rule of a hospital
func (r *VisitingHoursRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]models.VisitingHoursRule, error) {
	var rules []models.VisitingHoursRule
	if err := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND is_active = ?", hospitalID, true).
		Order("wing_id NULLS FIRST, day_of_week NULLS FIRST, start_time ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get visiting hours: %w", err)
	}
	return rules, nil
}
