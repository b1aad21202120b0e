package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/cache"
	"github.com/otcheredev/hospital-visitor-access/internal/events"
	"github.com/otcheredev/hospital-visitor-access/internal/metrics"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/rs/zerolog/log"
)

// DefaultCompletionNote is written on logs closed by an administrative completion
const DefaultCompletionNote = "Checked out by system on session completion"

// pendingMarker holds an idempotency key while its scan is in flight
var pendingMarker = []byte("pending")

// AccessService handles guest pass verification at security checkpoints
type AccessService struct {
	stores          Stores
	cache           cache.Cache
	publisher       events.Publisher
	defaultLocation *time.Location
	idempotencyTTL  time.Duration
	now             func() time.Time
}

// Option configures an AccessService
type Option func(*AccessService)

// WithClock overrides the source of the current instant
func WithClock(now func() time.Time) Option {
	return func(s *AccessService) { s.now = now }
}

// WithDefaultLocation sets the time zone used when a hospital has none
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *AccessService) { s.defaultLocation = loc }
}

// WithIdempotencyTTL sets how long a verification response can be replayed
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *AccessService) { s.idempotencyTTL = ttl }
}

// NewAccessService creates a new access service
func NewAccessService(stores Stores, c cache.Cache, publisher events.Publisher, opts ...Option) *AccessService {
	s := &AccessService{
		stores:          stores,
		cache:           c,
		publisher:       publisher,
		defaultLocation: time.UTC,
		idempotencyTTL:  10 * time.Minute,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	return s
}

// Verify decides whether the bearer of a scanned code may pass the checkpoint
// and, when granted, records the entry or exit. A denial is a normal result,
// not an error, and never touches persisted state.
func (s *AccessService) Verify(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req access.ScanRequest, idempotencyKey string) (*VerificationResult, error) {
	code, err := access.Normalize(req)
	if err != nil {
		metrics.ObserveVerification(metrics.OutcomeMalformed, "MALFORMED_PAYLOAD")
		return nil, err
	}

	if idempotencyKey == "" || s.cache == nil {
		return s.verify(ctx, tenantID, actorID, code)
	}

	key := cache.VerificationKey(tenantID.String(), idempotencyKey, code)
	replay, claimed, err := s.claim(ctx, key)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	result, err := s.verify(ctx, tenantID, actorID, code)
	if claimed {
		s.release(ctx, key, result, err)
	}
	return result, err
}

func (s *AccessService) verify(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, code string) (*VerificationResult, error) {
	started := time.Now()
	now := s.now()

	pass, err := s.stores.Passes.GetByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.ObserveVerification(metrics.OutcomeNotFound, "NOT_FOUND")
			s.recordAudit(ctx, &models.AuditLog{
				TenantID:     tenantID,
				UserID:       actorID,
				Action:       models.AuditActionVerify,
				ResourceType: "guest_pass",
				ResourceUID:  code,
				Status:       "not_found",
				Duration:     time.Since(started).Milliseconds(),
			})
			return nil, ErrNotFound
		}
		metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
		return nil, fmt.Errorf("failed to look up guest pass: %w", err)
	}

	session, err := s.stores.Sessions.GetByID(ctx, tenantID, pass.SessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
			return nil, fmt.Errorf("failed to look up patient session: %w", err)
		}
		// An orphaned pass is treated as belonging to an ended session
		session = nil
	}

	loc, err := s.location(ctx, tenantID)
	if err != nil {
		metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
		return nil, fmt.Errorf("failed to look up hospital: %w", err)
	}

	var wingID *uuid.UUID
	if session != nil {
		wingID = session.WingID
	}
	rules, err := s.stores.VisitingHours.ListApplicable(ctx, tenantID, wingID)
	if err != nil {
		metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
		return nil, fmt.Errorf("failed to get visiting hours: %w", err)
	}

	open, err := s.stores.Logs.GetOpen(ctx, tenantID, pass.ID)
	if err != nil {
		metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
		return nil, fmt.Errorf("failed to get guest log: %w", err)
	}

	decision := access.Evaluate(access.Input{
		Pass:              pass,
		Session:           session,
		Rules:             rules,
		IsCurrentlyInside: open != nil,
		Now:               now,
		Location:          loc,
	})

	var entry *models.GuestLog
	if transition, ok := decision.Next(); ok {
		entry, err = s.stores.Logs.RecordScan(ctx, repository.ScanRecord{
			HospitalID:  tenantID,
			GuestPassID: pass.ID,
			SessionID:   pass.SessionID,
			ScansUsed:   pass.ScansUsed,
			Transition:  transition,
			At:          now,
			ActorID:     actorID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				metrics.ObserveScanConflict()
				return nil, ErrScanConflict
			}
			metrics.ObserveVerification(metrics.OutcomeError, "STORE_FAILURE")
			return nil, fmt.Errorf("failed to record scan: %w", err)
		}
		pass.ScansUsed++
	}

	result := newVerificationResult(pass, session, rules, decision, now, loc)
	result.Log = entry

	s.observe(ctx, tenantID, actorID, pass, decision, result, time.Since(started), now)
	return result, nil
}

// observe reports a finished verdict to metrics, the audit trail and the event bus
func (s *AccessService) observe(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, pass *models.GuestPass, d access.Decision, result *VerificationResult, elapsed time.Duration, now time.Time) {
	outcome, reason, status, subject := metrics.OutcomeDenied, string(d.DenialCode), "denied", events.SubjectAccessDenied
	if d.Granted {
		outcome, reason, status, subject = metrics.OutcomeGranted, result.Action, "granted", events.SubjectAccessGranted
	}
	metrics.ObserveVerification(outcome, reason)

	s.recordAudit(ctx, &models.AuditLog{
		TenantID:     tenantID,
		UserID:       actorID,
		Action:       models.AuditActionVerify,
		ResourceType: "guest_pass",
		ResourceUID:  pass.QRCode,
		Status:       status,
		Reason:       d.AccessReason,
		Duration:     elapsed.Milliseconds(),
	})

	direction := ""
	switch result.Action {
	case ActionCheckIn:
		direction = "entry"
	case ActionCheckOut:
		direction = "exit"
	}
	s.publish(ctx, subject, events.AccessEvent{
		HospitalID:  tenantID,
		GuestPassID: pass.ID,
		SessionID:   pass.SessionID,
		Direction:   direction,
		Reason:      d.AccessReason,
		DenialCode:  string(d.DenialCode),
		VerifiedBy:  actorID,
		OccurredAt:  now,
	})

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("guest_pass_id", pass.ID.String()).
		Bool("granted", d.Granted).
		Str("reason", d.AccessReason).
		Msg("Guest pass verified")
}

// CompleteGuests force-checks-out and expires the passes of one guest or one
// session. It bypasses the decision engine.
func (s *AccessService) CompleteGuests(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req CompletionRequest) (*CompletionResult, error) {
	if (req.GuestID == nil) == (req.SessionID == nil) {
		return nil, fmt.Errorf("%w: exactly one of guestId or sessionId is required", ErrInvalidRequest)
	}

	notes := req.Notes
	if notes == "" {
		notes = DefaultCompletionNote
	}
	now := s.now()

	counts, err := s.stores.Logs.CompleteGuests(ctx, repository.CompletionFilter{
		HospitalID:  tenantID,
		GuestPassID: req.GuestID,
		SessionID:   req.SessionID,
	}, now, notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to complete guests: %w", err)
	}

	metrics.ObserveCompletion(counts.CheckedOut, counts.Completed)

	resource := ""
	if req.GuestID != nil {
		resource = req.GuestID.String()
	} else {
		resource = req.SessionID.String()
	}
	s.recordAudit(ctx, &models.AuditLog{
		TenantID:     tenantID,
		UserID:       actorID,
		Action:       models.AuditActionComplete,
		ResourceType: "guest_pass",
		ResourceUID:  resource,
		Status:       "success",
		Reason:       notes,
	})

	s.publish(ctx, events.SubjectSessionCompleted, events.CompletionEvent{
		HospitalID:  tenantID,
		GuestPassID: req.GuestID,
		SessionID:   req.SessionID,
		CheckedOut:  counts.CheckedOut,
		Completed:   counts.Completed,
		OccurredAt:  now,
	})

	log.Info().
		Str("tenant_id", tenantID.String()).
		Int64("checked_out", counts.CheckedOut).
		Int64("completed", counts.Completed).
		Msg("Guest passes completed")

	return &CompletionResult{
		CheckedOut:  counts.CheckedOut,
		Completed:   counts.Completed,
		CompletedAt: now,
	}, nil
}

// claim returns a stored response for a replayed key, or marks the key as in flight.
// Cache outages degrade to unprotected verification; the conditional write still
// prevents double counting.
func (s *AccessService) claim(ctx context.Context, key string) (*VerificationResult, bool, error) {
	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		if string(cached) == string(pendingMarker) {
			return nil, false, ErrScanConflict
		}
		var replay VerificationResult
		if err := json.Unmarshal(cached, &replay); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable idempotent response")
			if err := s.cache.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Idempotency cache unavailable")
				return nil, false, nil
			}
			break
		}
		replay.Replayed = true
		return &replay, false, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		log.Warn().Err(err).Msg("Idempotency cache unavailable")
		return nil, false, nil
	}

	ok, err := s.cache.SetNX(ctx, key, pendingMarker, s.idempotencyTTL)
	if err != nil {
		log.Warn().Err(err).Msg("Idempotency cache unavailable")
		return nil, false, nil
	}
	if !ok {
		return nil, false, ErrScanConflict
	}
	return nil, true, nil
}

// release stores the response for replay, or frees the key when the scan failed
func (s *AccessService) release(ctx context.Context, key string, result *VerificationResult, verifyErr error) {
	if verifyErr != nil || result == nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to release idempotency key")
		}
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode idempotent response")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.idempotencyTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to store idempotent response")
	}
}

// location resolves the hospital time zone. A hospital without a settings row
// uses the default zone; any other read failure is returned.
func (s *AccessService) location(ctx context.Context, tenantID uuid.UUID) (*time.Location, error) {
	hospital, err := s.stores.Hospitals.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug().Str("tenant_id", tenantID.String()).Msg("Using default time zone")
			return s.defaultLocation, nil
		}
		return nil, err
	}
	return hospital.Location(s.defaultLocation), nil
}

func (s *AccessService) recordAudit(ctx context.Context, entry *models.AuditLog) {
	if s.stores.Audit == nil {
		return
	}
	if err := s.stores.Audit.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", entry.Action).Msg("Failed to write audit log")
	}
}

func (s *AccessService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}
