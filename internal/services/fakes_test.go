package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/otcheredev/hospital-visitor-access/internal/repository"
	"github.com/stretchr/testify/mock"
)

// world is an in-memory stand-in for the database, shared by the fake stores
type world struct {
	mu        sync.Mutex
	passes    map[uuid.UUID]*models.GuestPass
	sessions  map[uuid.UUID]*models.PatientSession
	hospitals map[uuid.UUID]*models.Hospital
	rules     []models.VisitingHoursRule
	logs      []*models.GuestLog
	audits    []models.AuditLog

	// beforeRecord runs inside RecordScan before the compare-and-swap
	beforeRecord func()
	recordErr    error
	hospitalErr  error
}

func newWorld() *world {
	return &world{
		passes:    make(map[uuid.UUID]*models.GuestPass),
		sessions:  make(map[uuid.UUID]*models.PatientSession),
		hospitals: make(map[uuid.UUID]*models.Hospital),
	}
}

func (w *world) stores() Stores {
	return Stores{
		Passes:        fakePasses{w},
		Sessions:      fakeSessions{w},
		Hospitals:     fakeHospitals{w},
		VisitingHours: fakeVisitingHours{w},
		Logs:          fakeLogs{w},
		Audit:         fakeAudit{w},
	}
}

func (w *world) pass(id uuid.UUID) models.GuestPass {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.passes[id]
}

func (w *world) logsOf(passID uuid.UUID) []models.GuestLog {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.GuestLog
	for _, l := range w.logs {
		if l.GuestPassID == passID {
			out = append(out, *l)
		}
	}
	return out
}

func (w *world) openLog(hospitalID, passID uuid.UUID) *models.GuestLog {
	for _, l := range w.logs {
		if l.HospitalID == hospitalID && l.GuestPassID == passID && l.CurrentlyInside {
			return l
		}
	}
	return nil
}

type fakePasses struct{ w *world }

func (f fakePasses) GetByCode(ctx context.Context, hospitalID uuid.UUID, code string) (*models.GuestPass, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, p := range f.w.passes {
		if p.HospitalID == hospitalID && p.QRCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakePasses) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.GuestPass, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	p, ok := f.w.passes[id]
	if !ok || p.HospitalID != hospitalID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeSessions struct{ w *world }

func (f fakeSessions) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*models.PatientSession, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	s, ok := f.w.sessions[id]
	if !ok || s.HospitalID != hospitalID {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeHospitals struct{ w *world }

func (f fakeHospitals) GetByID(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.hospitalErr != nil {
		return nil, f.w.hospitalErr
	}
	h, ok := f.w.hospitals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

type fakeVisitingHours struct{ w *world }

func (f fakeVisitingHours) ListApplicable(ctx context.Context, hospitalID uuid.UUID, wingID *uuid.UUID) ([]models.VisitingHoursRule, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.VisitingHoursRule
	for _, r := range f.w.rules {
		if r.HospitalID != hospitalID || !r.IsActive {
			continue
		}
		if r.WingID == nil || (wingID != nil && *r.WingID == *wingID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeVisitingHours) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]models.VisitingHoursRule, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.VisitingHoursRule
	for _, r := range f.w.rules {
		if r.HospitalID == hospitalID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeVisitingHours) Create(ctx context.Context, rule *models.VisitingHoursRule) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	f.w.rules = append(f.w.rules, *rule)
	return nil
}

type fakeLogs struct{ w *world }

func (f fakeLogs) GetOpen(ctx context.Context, hospitalID, guestPassID uuid.UUID) (*models.GuestLog, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if l := f.w.openLog(hospitalID, guestPassID); l != nil {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (f fakeLogs) ListByGuestPass(ctx context.Context, hospitalID, guestPassID uuid.UUID, limit int) ([]models.GuestLog, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.GuestLog
	for _, l := range f.w.logs {
		if l.HospitalID == hospitalID && l.GuestPassID == guestPassID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeLogs) RecordScan(ctx context.Context, rec repository.ScanRecord) (*models.GuestLog, error) {
	if f.w.beforeRecord != nil {
		f.w.beforeRecord()
	}

	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.recordErr != nil {
		return nil, f.w.recordErr
	}

	p, ok := f.w.passes[rec.GuestPassID]
	if !ok || p.HospitalID != rec.HospitalID || p.ScansUsed != rec.ScansUsed ||
		p.Status != models.GuestPassApproved || !p.IsActive {
		return nil, repository.ErrConflict
	}

	open := f.w.openLog(rec.HospitalID, rec.GuestPassID)
	if rec.Transition.IsCheckIn() {
		if open != nil {
			return nil, repository.ErrConflict
		}
		entry := &models.GuestLog{
			ID:              uuid.New(),
			HospitalID:      rec.HospitalID,
			GuestPassID:     rec.GuestPassID,
			SessionID:       rec.SessionID,
			EntryTime:       rec.At,
			CurrentlyInside: true,
			EntryVerifiedBy: rec.ActorID,
		}
		f.w.logs = append(f.w.logs, entry)
		p.ScansUsed++
		cp := *entry
		return &cp, nil
	}

	if open == nil {
		return nil, repository.ErrConflict
	}
	exit := rec.At
	open.ExitTime = &exit
	open.CurrentlyInside = false
	open.ExitVerifiedBy = rec.ActorID
	p.ScansUsed++
	cp := *open
	return &cp, nil
}

func (f fakeLogs) CompleteGuests(ctx context.Context, filter repository.CompletionFilter, at time.Time, notes string) (*repository.CompletionCounts, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()

	var targets []*models.GuestPass
	for _, p := range f.w.passes {
		if p.HospitalID != filter.HospitalID {
			continue
		}
		if filter.GuestPassID != nil && p.ID != *filter.GuestPassID {
			continue
		}
		if filter.SessionID != nil && p.SessionID != *filter.SessionID {
			continue
		}
		targets = append(targets, p)
	}
	if len(targets) == 0 && filter.GuestPassID != nil {
		return nil, repository.ErrNotFound
	}

	counts := &repository.CompletionCounts{}
	for _, p := range targets {
		if open := f.w.openLog(filter.HospitalID, p.ID); open != nil {
			exit := at
			note := notes
			open.ExitTime = &exit
			open.CurrentlyInside = false
			open.Notes = &note
			counts.CheckedOut++
		}
		p.IsActive = false
		if !p.Status.IsTerminal() {
			p.Status = models.GuestPassExpired
		}
		counts.Completed++
	}
	return counts, nil
}

type fakeAudit struct{ w *world }

func (f fakeAudit) Create(ctx context.Context, entry *models.AuditLog) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.audits = append(f.w.audits, *entry)
	return nil
}

func (f fakeAudit) List(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter, limit, offset int) ([]models.AuditLog, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.AuditLog
	for _, a := range f.w.audits {
		if a.TenantID != tenantID ||
			(filter.Code != "" && a.ResourceUID != filter.Code) ||
			(filter.Action != "" && a.Action != filter.Action) ||
			(filter.Status != "" && a.Status != filter.Status) {
			continue
		}
		out = append(out, a)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mockPublisher records published events
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

var errStoreDown = errors.New("connection refused")
