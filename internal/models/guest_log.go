package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestLog is one physical visit: opened on entry, closed on exit.
// The partial unique index keeps at most one open row per pass.
type GuestLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"hospital_id"`
	GuestPassID     uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_guest_logs_open_visit,unique,where:currently_inside = true" json:"guest_pass_id"`
	SessionID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	EntryTime       time.Time  `gorm:"not null" json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time,omitempty"`
	CurrentlyInside bool       `gorm:"not null;default:false;index" json:"currently_inside"`
	EntryVerifiedBy *uuid.UUID `gorm:"type:uuid" json:"entry_verified_by,omitempty"`
	ExitVerifiedBy  *uuid.UUID `gorm:"type:uuid" json:"exit_verified_by,omitempty"`
	Notes           *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (GuestLog) TableName() string {
	return "guest_logs"
}

// BeforeCreate hook
func (g *GuestLog) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
