package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record of one issued refresh token.
// Only the hash of the token is stored.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	AdminID    uuid.UUID  `json:"admin_id"`
	TokenHash  string     `json:"-"`
	IPAddress  string     `json:"ip_address"`
	DeviceInfo string     `json:"device_info"`
	ExpiresAt  time.Time  `json:"expires_at"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UsableAt reports whether the session can back a refresh at time t
func (s *Session) UsableAt(t time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(t)
}
