package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
)

// GuestPassStore reads guest passes scoped to a hospital
type GuestPassStore interface {
	GetByCode(ctx context.Context, hospitalID uuid.UUID, code string) (*models.GuestPass, error)
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.GuestPass, error)
}

// SessionStore reads patient sessions scoped to a hospital
type SessionStore interface {
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.PatientSession, error)
}

// HospitalStore reads tenant settings
type HospitalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
}

// VisitingHoursStore reads and writes visiting-hours rules
type VisitingHoursStore interface {
	ListApplicable(ctx context.Context, hospitalID uuid.UUID, wingID *uuid.UUID) ([]models.VisitingHoursRule, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]models.VisitingHoursRule, error)
	Create(ctx context.Context, rule *models.VisitingHoursRule) error
}

// GuestLogStore persists visit transitions
type GuestLogStore interface {
	GetOpen(ctx context.Context, hospitalID, guestPassID uuid.UUID) (*models.GuestLog, error)
	ListByGuestPass(ctx context.Context, hospitalID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error)
	RecordScan(ctx context.Context, rec repository.ScanRecord) (*models.GuestLog, error)
	CompleteGuests(ctx context.Context, filter repository.CompletionFilter, at time.Time, notes string) (*repository.CompletionCounts, error)
}

// AuditStore records verification attempts
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter, limit, offset int) ([]models.AuditLog, error)
}

// Stores groups the persistence collaborators of AccessService. Audit is
// optional; without it attempts are not recorded and the trail reads empty.
type Stores struct {
	Passes        GuestPassStore
	Sessions      SessionStore
	Hospitals     HospitalStore
	VisitingHours VisitingHoursStore
	Logs          GuestLogStore
	Audit         AuditStore
}

// NewStores wires the gorm repositories
func NewStores() Stores {
	return Stores{
		Passes:        repository.NewGuestPassRepository(),
		Sessions:      repository.NewSessionRepository(),
		Hospitals:     repository.NewHospitalRepository(),
		VisitingHours: repository.NewVisitingHoursRepository(),
		Logs:          repository.NewGuestLogRepository(),
		Audit:         repository.NewAuditRepository(),
	}
}
