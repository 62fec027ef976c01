package models

import "time"

// Session is one authenticated login. Records are never deleted; LoggedOutAt
// and the refresh token hash are the only fields that change after creation.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	LoggedOutAt      *time.Time
}

func (s Session) IsActive(now time.Time) bool {
	return now.Before(s.ExpiresAt) && s.LoggedOutAt == nil
}

func (s Session) IsLoggedOut() bool {
	return s.LoggedOutAt != nil
}
