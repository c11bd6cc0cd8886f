package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleManajemen UserRole = "manajemen"
	RoleNakes     UserRole = "nakes"
	RoleUser      UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManajemen, RoleNakes, RoleUser:
		return true
	}
	return false
}

// ParseRole normalises the role names the backend has been seen to send.
func ParseRole(s string) UserRole {
	switch s {
	case "admin", "Admin", "superadmin":
		return RoleAdmin
	case "manajemen", "Manajemen", "management":
		return RoleManajemen
	case "nakes", "Nakes", "tenaga_kesehatan", "health_worker":
		return RoleNakes
	default:
		return RoleUser
	}
}

// JSONB type for GORM
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Session ties a dashboard session JWT to the upstream bearer token and the cached profile.
type Session struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Role          UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	UpstreamToken string     `gorm:"type:text;not null" json:"-"`
	Profile       JSONB      `gorm:"type:jsonb" json:"profile,omitempty"`
	UserAgent     *string    `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	IPAddress     *string    `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
}

func (Session) TableName() string { return "sessions" }

func (m *Session) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// Token Blacklist
type TokenBlacklist struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JTI           string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"jti"`
	SessionID     *uuid.UUID `gorm:"type:uuid" json:"session_id,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	BlacklistedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"blacklisted_at"`
	Reason        *string    `gorm:"type:varchar(100)" json:"reason,omitempty"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

func (m *TokenBlacklist) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// GeocodeCache stores reverse-geocoding answers keyed by coordinates rounded to 5 decimals
// (about one metre), so repeated clicks on one spot do not hit the public geocoder again.
type GeocodeCache struct {
	CoordKey  string    `gorm:"type:varchar(32);primaryKey" json:"coord_key"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Address   string    `gorm:"type:text;not null" json:"address"`
	HitCount  int       `gorm:"not null;default:0" json:"hit_count"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (GeocodeCache) TableName() string { return "geocode_cache" }

// AllModels lists the tables owned by the dashboard, in migration order.
func AllModels() []interface{} {
	return []interface{}{&Session{}, &TokenBlacklist{}, &GeocodeCache{}}
}

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
