package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hospital is the tenant every guest pass, session and rule belongs to
type Hospital struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Timezone  string    `gorm:"type:varchar(64)" json:"timezone"` // IANA name, e.g. Africa/Accra
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Hospital) TableName() string {
	return "hospitals"
}

// BeforeCreate hook
func (h *Hospital) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Location resolves the hospital's time zone, falling back when unset or unknown
func (h *Hospital) Location(fallback *time.Location) *time.Location {
	if h == nil || h.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// JWTClaims represents custom JWT claims issued to checkpoint staff
type JWTClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// User context from JWT
type UserContext struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}
