package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitingHoursRule is a daily time window during which new guests may enter.
// A nil WingID applies hospital-wide, a nil DayOfWeek applies every day.
type VisitingHoursRule struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HospitalID uuid.UUID  `gorm:"type:uuid;not null;index" json:"hospital_id"`
	WingID     *uuid.UUID `gorm:"type:uuid;index" json:"wing_id"`
	DayOfWeek  *string    `gorm:"type:varchar(10)" json:"day_of_week"`
	StartTime  string     `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM
	EndTime    string     `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:MM
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (VisitingHoursRule) TableName() string {
	return "visiting_hours"
}

// BeforeCreate hook
func (v *VisitingHoursRule) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VisitingHoursRequest represents a request to create a visiting-hours rule
type VisitingHoursRequest struct {
	WingID    *uuid.UUID `json:"wing_id,omitempty"`
	DayOfWeek *string    `json:"day_of_week,omitempty"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
}
