package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// SessionRepository reads patient sessions with their location
type SessionRepository struct{}

// NewSessionRepository creates a new session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Create creates a new patient session
func (r *SessionRepository) Create(ctx context.Context, session *models.PatientSession) error {
	if err := database.DB.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create patient session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with patient, wing and room preloaded
func (r *SessionRepository) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.PatientSession, error) {
	var session models.PatientSession
	if err := database.DB.WithContext(ctx).
		Preload("Patient").
		Preload("Wing").
		Preload("Room").
		Where("hospital_id = ? AND id = ?", hospitalID, id).
		First(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to get patient session: %w", notFound(err))
	}
	return &session, nil
}
