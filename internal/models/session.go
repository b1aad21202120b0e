package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatusActive is the only status in which guest passes are honoured.
// Other labels (discharged, ended) are owned by the admission workflow.
const SessionStatusActive = "active"

// Patient is the admitted person a session belongs to
type Patient struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID uuid.UUID `gorm:"type:uuid;not null;index" json:"hospital_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	MRN        string    `gorm:"type:varchar(100);index" json:"mrn,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Patient) TableName() string {
	return "patients"
}

// BeforeCreate hook
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Wing is a building section with its own visiting-hours rules
type Wing struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID uuid.UUID `gorm:"type:uuid;not null;index" json:"hospital_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Floor      string    `gorm:"type:varchar(50)" json:"floor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Wing) TableName() string {
	return "wings"
}

// BeforeCreate hook
func (w *Wing) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Room belongs to a wing
type Room struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID uuid.UUID `gorm:"type:uuid;not null;index" json:"hospital_id"`
	WingID     uuid.UUID `gorm:"type:uuid;not null;index" json:"wing_id"`
	Number     string    `gorm:"type:varchar(50);not null" json:"number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Room) TableName() string {
	return "rooms"
}

// BeforeCreate hook
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PatientSession is one admission of a patient into a room
type PatientSession struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID uuid.UUID  `gorm:"type:uuid;not null;index" json:"hospital_id"`
	PatientID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	WingID     *uuid.UUID `gorm:"type:uuid;index" json:"wing_id,omitempty"`
	RoomID     *uuid.UUID `gorm:"type:uuid;index" json:"room_id,omitempty"`
	Status     string     `gorm:"type:varchar(20);not null;index" json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Wing    *Wing    `gorm:"foreignKey:WingID" json:"wing,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (PatientSession) TableName() string {
	return "patient_sessions"
}

// BeforeCreate hook
func (s *PatientSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether guests may still visit under this session
func (s *PatientSession) IsActive() bool {
	return s != nil && s.Status == SessionStatusActive
}
