package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/access"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// Scan directions reported with a granted verdict
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// VerificationResult is the checkpoint's view of one scan. It is returned for
// both granted and denied verdicts.
type VerificationResult struct {
	Verified              bool                   `json:"verified"`
	AccessGranted         bool                   `json:"accessGranted"`
	AccessReason          string                 `json:"accessReason"`
	DenialReason          string                 `json:"denialReason"`
	DenialCode            string                 `json:"denialCode,omitempty"`
	Action                string                 `json:"action,omitempty"`
	IsCurrentlyInside     bool                   `json:"isCurrentlyInside"`
	Guest                 GuestSummary           `json:"guest"`
	Patient               *PatientSummary        `json:"patient"`
	Session               *SessionSummary        `json:"session"`
	Location              LocationSummary        `json:"location"`
	VisitingHours         []VisitingHoursSummary `json:"visitingHours"`
	Validations           access.Validations     `json:"validations"`
	IsWithinVisitingHours bool                   `json:"isWithinVisitingHours"`
	CurrentTime           string                 `json:"currentTime"`
	Log                   *models.GuestLog       `json:"log,omitempty"`
	Replayed              bool                   `json:"replayed,omitempty"`
}

// GuestSummary describes the pass holder
type GuestSummary struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Phone       string                 `json:"phone,omitempty"`
	Relation    string                 `json:"relation,omitempty"`
	QRCode      string                 `json:"qrCode"`
	Status      models.GuestPassStatus `json:"status"`
	ValidFrom   time.Time              `json:"validFrom"`
	ValidUntil  time.Time              `json:"validUntil"`
	QRExpiresAt *time.Time             `json:"qrExpiresAt,omitempty"`
	ScanLimit   *int                   `json:"scanLimit"`
	ScansUsed   int                    `json:"scansUsed"`
}

// PatientSummary identifies the patient being visited
type PatientSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	MRN  string    `json:"mrn,omitempty"`
}

// SessionSummary describes the admission the pass is attached to
type SessionSummary struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
}

// LocationSummary tells the operator where to send the guest
type LocationSummary struct {
	WingID     *uuid.UUID `json:"wingId,omitempty"`
	WingName   string     `json:"wingName,omitempty"`
	Floor      string     `json:"floor,omitempty"`
	RoomID     *uuid.UUID `json:"roomId,omitempty"`
	RoomNumber string     `json:"roomNumber,omitempty"`
}

// VisitingHoursSummary is one rule that was considered for the scan
type VisitingHoursSummary struct {
	ID        uuid.UUID  `json:"id"`
	WingID    *uuid.UUID `json:"wingId"`
	DayOfWeek *string    `json:"dayOfWeek"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
}

// CompletionRequest closes out guest passes administratively
type CompletionRequest struct {
	GuestID   *uuid.UUID `json:"guestId,omitempty"`
	SessionID *uuid.UUID `json:"sessionId,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// CompletionResult reports how many guests were transitioned
type CompletionResult struct {
	CheckedOut  int64     `json:"checkedOut"`
	Completed   int64     `json:"completed"`
	CompletedAt time.Time `json:"completedAt"`
}

func newVerificationResult(pass *models.GuestPass, session *models.PatientSession, rules []models.VisitingHoursRule, d access.Decision, now time.Time, loc *time.Location) *VerificationResult {
	res := &VerificationResult{
		Verified:              d.Granted,
		AccessGranted:         d.Granted,
		AccessReason:          d.AccessReason,
		DenialReason:          d.DenialReason,
		DenialCode:            string(d.DenialCode),
		IsCurrentlyInside:     d.IsCurrentlyInside,
		Validations:           d.Validations,
		IsWithinVisitingHours: d.IsWithinVisitingHours,
		CurrentTime:           now.In(loc).Format(time.RFC3339),
		Guest: GuestSummary{
			ID:          pass.ID,
			Name:        pass.GuestName,
			Phone:       pass.GuestPhone,
			Relation:    pass.Relation,
			QRCode:      pass.QRCode,
			Status:      pass.Status,
			ValidFrom:   pass.ValidFrom,
			ValidUntil:  pass.ValidUntil,
			QRExpiresAt: pass.QRExpiresAt,
			ScanLimit:   pass.ScanLimit,
			ScansUsed:   pass.ScansUsed,
		},
		VisitingHours: make([]VisitingHoursSummary, 0, len(rules)),
	}

	if tr, ok := d.Next(); ok {
		if tr.IsCheckIn() {
			res.Action = ActionCheckIn
		} else {
			res.Action = ActionCheckOut
		}
	}

	if session != nil {
		res.Session = &SessionSummary{ID: session.ID, Status: session.Status, StartedAt: session.StartedAt}
		if session.Patient != nil {
			res.Patient = &PatientSummary{ID: session.Patient.ID, Name: session.Patient.Name, MRN: session.Patient.MRN}
		}
		res.Location.WingID = session.WingID
		res.Location.RoomID = session.RoomID
		if session.Wing != nil {
			res.Location.WingName = session.Wing.Name
			res.Location.Floor = session.Wing.Floor
		}
		if session.Room != nil {
			res.Location.RoomNumber = session.Room.Number
		}
	}

	for _, rule := range rules {
		res.VisitingHours = append(res.VisitingHours, VisitingHoursSummary{
			ID:        rule.ID,
			WingID:    rule.WingID,
			DayOfWeek: rule.DayOfWeek,
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
		})
	}
	return res
}
