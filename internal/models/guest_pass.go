package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestPassStatus is the lifecycle state of a guest pass
type GuestPassStatus string

const (
	GuestPassPending  GuestPassStatus = "pending"
	GuestPassApproved GuestPassStatus = "approved"
	GuestPassDenied   GuestPassStatus = "denied"
	GuestPassExpired  GuestPassStatus = "expired"
	GuestPassRevoked  GuestPassStatus = "revoked"
)

// IsTerminal reports whether the status can never change again
func (s GuestPassStatus) IsTerminal() bool {
	return s == GuestPassExpired || s == GuestPassRevoked
}

// GuestPass is a visitor's QR pass attached to a patient session
type GuestPass struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_guest_passes_hospital_code" json:"hospital_id"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"session_id"`
	QRCode      string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_guest_passes_hospital_code" json:"qr_code"`
	GuestName   string          `gorm:"type:varchar(255);not null" json:"guest_name"`
	GuestPhone  string          `gorm:"type:varchar(50)" json:"guest_phone,omitempty"`
	Relation    string          `gorm:"type:varchar(100)" json:"relation,omitempty"`
	Status      GuestPassStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	ValidFrom   time.Time       `gorm:"not null" json:"valid_from"`
	ValidUntil  time.Time       `gorm:"not null" json:"valid_until"`
	QRExpiresAt *time.Time      `json:"qr_expires_at,omitempty"`
	ScanLimit   *int            `json:"scan_limit,omitempty"` // nil means unlimited
	ScansUsed   int             `gorm:"not null;default:0" json:"scans_used"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (GuestPass) TableName() string {
	return "guest_passes"
}

// BeforeCreate hook
func (g *GuestPass) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
