package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// GuestPassRepository handles guest pass database operations
type GuestPassRepository struct{}

// NewGuestPassRepository creates a new guest pass repository
func NewGuestPassRepository() *GuestPassRepository {
	return &GuestPassRepository{}
}

// Create creates a new guest pass
func (r *GuestPassRepository) Create(ctx context.Context, pass *models.GuestPass) error {
	if err := database.DB.WithContext(ctx).Create(pass).Error; err != nil {
		return fmt.Errorf("failed to create guest pass: %w", err)
	}
	return nil
}

// GetByCode retrieves a guest pass by its QR code within a hospital
func (r *GuestPassRepository) GetByCode(ctx context.Context, hospitalID uuid.UUID, code string) (*models.GuestPass, error) {
	var pass models.GuestPass
	if err := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND qr_code = ?", hospitalID, code).
		First(&pass).Error; err != nil {
		return nil, fmt.Errorf("failed to get guest pass: %w", notFound(err))
	}
	return &pass, nil
}

// GetByID retrieves a guest pass by ID within a hospital
func (r *GuestPassRepository) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.GuestPass, error) {
	var pass models.GuestPass
	if err := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND id = ?", hospitalID, id).
		First(&pass).Error; err != nil {
		return nil, fmt.Errorf("failed to get guest pass: %w", notFound(err))
	}
	return &pass, nil
}
