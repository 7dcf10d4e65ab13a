package models

import "time"

// Session is an authenticated backend session.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        Profile
}

// Expired reports whether the session is past its expiry at now. A zero
// ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
