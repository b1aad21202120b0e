package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScanRecord describes the persisted effect of one granted scan
type ScanRecord struct {
	HospitalID  uuid.UUID
	GuestPassID uuid.UUID
	SessionID   uuid.UUID
	// ScansUsed is the counter value the decision was made against
	ScansUsed  int
	Transition access.Transition
	At         time.Time
	ActorID    *uuid.UUID
}

// CompletionFilter selects the passes a bulk completion applies to.
// Exactly one of GuestPassID and SessionID is set.
type CompletionFilter struct {
	HospitalID  uuid.UUID
	GuestPassID *uuid.UUID
	SessionID   *uuid.UUID
}

// CompletionCounts reports what a bulk completion changed
type CompletionCounts struct {
	CheckedOut int64
	Completed  int64
}

// GuestLogRepository handles guest entry/exit log operations
type GuestLogRepository struct{}

// NewGuestLogRepository creates a new guest log repository
func NewGuestLogRepository() *GuestLogRepository {
	return &GuestLogRepository{}
}

// GetOpen returns the open visit of a pass, or nil when the guest is outside
func (r *GuestLogRepository) GetOpen(ctx context.Context, hospitalID, guestPassID uuid.UUID) (*models.GuestLog, error) {
	var logs []models.GuestLog
	if err := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND guest_pass_id = ? AND currently_inside = ?", hospitalID, guestPassID, true).
		Limit(1).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get open guest log: %w", err)
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// ListByGuestPass retrieves the visit history of a pass, newest first
func (r *GuestLogRepository) ListByGuestPass(ctx context.Context, hospitalID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error) {
	var logs []models.GuestLog
	query := database.DB.WithContext(ctx).
		Where("hospital_id = ? AND guest_pass_id = ?", hospitalID, guestPassID).
		Order("entry_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get guest logs: %w", err)
	}
	return logs, nil
}

// RecordScan increments the scan counter and applies the visit transition in
// one transaction. The counter update is conditional on the value the
// decision saw and on the pass still being approved and active, so a
// concurrent scan or a completion committed in between fails with ErrConflict.
func (r *GuestLogRepository) RecordScan(ctx context.Context, rec ScanRecord) (*models.GuestLog, error) {
	tx := database.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	res := tx.Model(&models.GuestPass{}).
		Where("id = ? AND hospital_id = ? AND scans_used = ? AND status = ? AND is_active = ?",
			rec.GuestPassID, rec.HospitalID, rec.ScansUsed, models.GuestPassApproved, true).
		Update("scans_used", gorm.Expr("scans_used + 1"))
	if res.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to increment scans: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrConflict
	}

	var entry *models.GuestLog
	var err error
	if rec.Transition.IsCheckIn() {
		entry, err = r.checkIn(tx, rec)
	} else {
		entry, err = r.checkOut(tx, rec)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit scan: %w", err)
	}
	return entry, nil
}

func (r *GuestLogRepository) checkIn(tx *gorm.DB, rec ScanRecord) (*models.GuestLog, error) {
	entry := &models.GuestLog{
		HospitalID:      rec.HospitalID,
		GuestPassID:     rec.GuestPassID,
		SessionID:       rec.SessionID,
		EntryTime:       rec.At,
		CurrentlyInside: true,
		EntryVerifiedBy: rec.ActorID,
	}
	if err := tx.Create(entry).Error; err != nil {
		// The open-visit unique index rejects a second check-in
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create guest log: %w", err)
	}
	return entry, nil
}

func (r *GuestLogRepository) checkOut(tx *gorm.DB, rec ScanRecord) (*models.GuestLog, error) {
	var entry models.GuestLog
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hospital_id = ? AND guest_pass_id = ? AND currently_inside = ?", rec.HospitalID, rec.GuestPassID, true).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to get open guest log: %w", err)
	}

	exit := rec.At
	entry.ExitTime = &exit
	entry.CurrentlyInside = false
	entry.ExitVerifiedBy = rec.ActorID

	if err := tx.Model(&entry).Updates(map[string]interface{}{
		"exit_time":        entry.ExitTime,
		"currently_inside": false,
		"exit_verified_by": entry.ExitVerifiedBy,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to close guest log: %w", err)
	}
	return &entry, nil
}

// CompleteGuests force-checks-out every guest still inside under the filter,
// then expires and deactivates the passes. Revoked passes keep their status.
func (r *GuestLogRepository) CompleteGuests(ctx context.Context, filter CompletionFilter, at time.Time, notes string) (*CompletionCounts, error) {
	counts := &CompletionCounts{}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		passQuery := tx.Model(&models.GuestPass{}).Where("hospital_id = ?", filter.HospitalID)
		if filter.GuestPassID != nil {
			passQuery = passQuery.Where("id = ?", *filter.GuestPassID)
		}
		if filter.SessionID != nil {
			passQuery = passQuery.Where("session_id = ?", *filter.SessionID)
		}

		var passIDs []uuid.UUID
		if err := passQuery.Clauses(clause.Locking{Strength: "UPDATE"}).Pluck("id", &passIDs).Error; err != nil {
			return fmt.Errorf("failed to get guest passes: %w", err)
		}
		if len(passIDs) == 0 {
			if filter.GuestPassID != nil {
				return ErrNotFound
			}
			return nil
		}

		res := tx.Model(&models.GuestLog{}).
			Where("hospital_id = ? AND guest_pass_id IN ? AND currently_inside = ?", filter.HospitalID, passIDs, true).
			Updates(map[string]interface{}{
				"exit_time":        at,
				"currently_inside": false,
				"notes":            notes,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close guest logs: %w", res.Error)
		}
		counts.CheckedOut = res.RowsAffected

		if err := tx.Model(&models.GuestPass{}).
			Where("hospital_id = ? AND id IN ?", filter.HospitalID, passIDs).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate guest passes: %w", err)
		}

		if err := tx.Model(&models.GuestPass{}).
			Where("hospital_id = ? AND id IN ? AND status NOT IN ?", filter.HospitalID, passIDs,
				[]models.GuestPassStatus{models.GuestPassRevoked, models.GuestPassExpired}).
			Update("status", models.GuestPassExpired).Error; err != nil {
			return fmt.Errorf("failed to expire guest passes: %w", err)
		}

		counts.Completed = int64(len(passIDs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
