package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// HospitalRepository reads tenant records
type HospitalRepository struct{}

// NewHospitalRepository creates a new hospital repository
func NewHospitalRepository() *HospitalRepository {
	return &HospitalRepository{}
}

// GetByID retrieves a hospital by ID
func (r *HospitalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := database.DB.WithContext(ctx).Where("id = ?", id).First(&hospital).Error; err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", notFound(err))
	}
	return &hospital, nil
}
