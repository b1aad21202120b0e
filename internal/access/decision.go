package access

import (
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// DenialCode identifies the first check a scan failed
type DenialCode string

const (
	DenialNotApproved  DenialCode = "NOT_APPROVED"
	DenialRevoked      DenialCode = "REVOKED_OR_DENIED"
	DenialSessionEnded DenialCode = "SESSION_ENDED"
	DenialNotYetValid  DenialCode = "NOT_YET_VALID"
	DenialExpired      DenialCode = "EXPIRED"
	DenialQRExpired    DenialCode = "QR_EXPIRED"
	DenialScanLimit    DenialCode = "SCAN_LIMIT_EXCEEDED"
	DenialOutsideHours DenialCode = "OUTSIDE_VISITING_HOURS"
)

var denialReasons = map[DenialCode]string{
	DenialNotApproved:  "Guest pass not approved",
	DenialRevoked:      "Guest pass revoked or denied",
	DenialSessionEnded: "Patient session ended",
	DenialNotYetValid:  "Guest pass not yet valid",
	DenialExpired:      "Guest pass expired",
	DenialQRExpired:    "QR code expired",
	DenialScanLimit:    "Scan limit exceeded",
	DenialOutsideHours: "Outside visiting hours",
}

// Reason returns the operator-facing text for the code
func (c DenialCode) Reason() string {
	return denialReasons[c]
}

// Reasons shown when access is granted
const (
	ReasonCheckout = "Checkout (was inside)"
	ReasonEntry    = "Entry granted within visiting hours"
)

// Validations is the full vector of pass checks, reported even after a failure
type Validations struct {
	IsApproved          bool `json:"isApproved"`
	IsActive            bool `json:"isActive"`
	IsSessionActive     bool `json:"isSessionActive"`
	IsWithinValidPeriod bool `json:"isWithinValidPeriod"`
	IsQrNotExpired      bool `json:"isQrNotExpired"`
	HasScansRemaining   bool `json:"hasScansRemaining"`
}

// Input is everything a verdict depends on. Session is nil when the pass's
// session could not be found.
type Input struct {
	Pass              *models.GuestPass
	Session           *models.PatientSession
	Rules             []models.VisitingHoursRule
	IsCurrentlyInside bool
	Now               time.Time
	Location          *time.Location
}

// Decision is the verdict for one scan
type Decision struct {
	Granted               bool
	AccessReason          string
	DenialCode            DenialCode
	DenialReason          string
	Validations           Validations
	IsWithinVisitingHours bool
	IsCurrentlyInside     bool
}

// Evaluate runs every check against the pass and returns the verdict. The
// first failing check in order determines the denial reason.
func Evaluate(in Input) Decision {
	pass := in.Pass
	now := in.Now

	v := Validations{
		IsApproved:          pass.Status == models.GuestPassApproved,
		IsActive:            pass.IsActive && pass.Status != models.GuestPassRevoked && pass.Status != models.GuestPassDenied,
		IsSessionActive:     in.Session.IsActive(),
		IsWithinValidPeriod: !now.Before(pass.ValidFrom) && !now.After(pass.ValidUntil),
		IsQrNotExpired:      pass.QRExpiresAt == nil || !pass.QRExpiresAt.Before(now),
		HasScansRemaining:   pass.ScanLimit == nil || pass.ScansUsed < *pass.ScanLimit,
	}

	var wingID *uuid.UUID
	if in.Session != nil {
		wingID = in.Session.WingID
	}
	within := WithinVisitingHours(in.Rules, wingID, now, in.Location)

	d := Decision{
		Validations:           v,
		IsWithinVisitingHours: within,
		IsCurrentlyInside:     in.IsCurrentlyInside,
	}

	switch {
	case !v.IsApproved:
		d.DenialCode = DenialNotApproved
	case !v.IsActive:
		d.DenialCode = DenialRevoked
	case !v.IsSessionActive:
		d.DenialCode = DenialSessionEnded
	case !v.IsWithinValidPeriod && now.Before(pass.ValidFrom):
		d.DenialCode = DenialNotYetValid
	case !v.IsWithinValidPeriod:
		d.DenialCode = DenialExpired
	case !v.IsQrNotExpired:
		d.DenialCode = DenialQRExpired
	case !v.HasScansRemaining:
		d.DenialCode = DenialScanLimit
	case !in.IsCurrentlyInside && !within:
		// A guest already inside may always leave
		d.DenialCode = DenialOutsideHours
	}

	if d.DenialCode != "" {
		d.DenialReason = d.DenialCode.Reason()
		d.AccessReason = d.DenialReason
		return d
	}

	d.Granted = true
	if in.IsCurrentlyInside {
		d.AccessReason = ReasonCheckout
	} else {
		d.AccessReason = ReasonEntry
	}
	return d
}
