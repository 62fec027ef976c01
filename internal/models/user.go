package models

import "time"

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleSeller   UserRole = "seller"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	ID                     string
	Username               string
	Email                  string
	PasswordHash           string
	FirstName              string
	LastName               string
	Role                   UserRole
	EmailValidated         bool
	Deleted                bool
	PasswordResetTokenHash *string
	PasswordResetExpiresAt *time.Time
	CreatedAt              time.Time
	LastLoginAt            *time.Time
	Address                Address
}

// HasActiveResetToken reports whether a reset token is stored and unexpired at now.
func (u User) HasActiveResetToken(now time.Time) bool {
	return u.PasswordResetTokenHash != nil &&
		u.PasswordResetExpiresAt != nil &&
		now.Before(*u.PasswordResetExpiresAt)
}

type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}
