package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/rs/zerolog/log"
)

// ListGuestLogs returns the visit history of a pass, newest first
func (s *AccessService) ListGuestLogs(ctx context.Context, tenantID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error) {
	if _, err := s.stores.Passes.GetByID(ctx, tenantID, guestPassID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get guest pass: %w", err)
	}

	logs, err := s.stores.Logs.ListByGuestPass(ctx, tenantID, guestPassID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest logs: %w", err)
	}
	return logs, nil
}

// ListVisitingHours returns every rule configured for the hospital
func (s *AccessService) ListVisitingHours(ctx context.Context, tenantID uuid.UUID) ([]models.VisitingHoursRule, error) {
	rules, err := s.stores.VisitingHours.ListByHospital(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visiting hours: %w", err)
	}
	return rules, nil
}

// CreateVisitingHours validates and stores a new rule. Day names are stored
// in their canonical English form.
func (s *AccessService) CreateVisitingHours(ctx context.Context, tenantID uuid.UUID, req *models.VisitingHoursRequest) (*models.VisitingHoursRule, error) {
	start, err := access.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time: %v", ErrInvalidRequest, err)
	}
	end, err := access.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: end_time: %v", ErrInvalidRequest, err)
	}

	var day *string
	if req.DayOfWeek != nil && *req.DayOfWeek != "" {
		weekday, err := access.ParseWeekday(*req.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("%w: day_of_week: %v", ErrInvalidRequest, err)
		}
		name := weekday.String()
		day = &name
	}

	rule := &models.VisitingHoursRule{
		HospitalID: tenantID,
		WingID:     req.WingID,
		DayOfWeek:  day,
		StartTime:  formatClock(start),
		EndTime:    formatClock(end),
		IsActive:   true,
	}
	if err := s.stores.VisitingHours.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create visiting hours: %w", err)
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("rule_id", rule.ID.String()).
		Str("window", rule.StartTime+"-"+rule.EndTime).
		Msg("Visiting hours rule created")

	return rule, nil
}

// ListAuditLogs returns verification and completion history matching the filter
func (s *AccessService) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter, limit, offset int) ([]models.AuditLog, error) {
	if s.stores.Audit == nil {
		return []models.AuditLog{}, nil
	}

	logs, err := s.stores.Audit.List(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
