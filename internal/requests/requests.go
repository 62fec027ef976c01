// Package requests holds inbound request shapes whose field rules are
// checked before any service is called. Messages are part of the API
// contract and must not change.
package requests

import (
	"strings"

	"marketplace/api/internal/models"
	"marketplace/api/internal/result"
)

const MinPasswordLength = 8

const (
	MsgUsernameRequired        = "Username is required."
	MsgCurrentPasswordRequired = "Current password is required."
	MsgNewPasswordRequired     = "New password is required."
	MsgConfirmPasswordRequired = "Confirm new password is required."
	MsgNewPasswordTooShort     = "New password must be at least 8 characters long."
	MsgNewPasswordMismatch     = "New password and confirm new password do not match."
	MsgNewPasswordSameAsOld    = "New password must be different from current password."

	MsgResetTokenRequired = "Reset token is required."
	MsgPasswordsMismatch  = "Passwords do not match."

	MsgStreetRequired     = "Street is required."
	MsgCityRequired       = "City is required."
	MsgPostalCodeRequired = "Postal code is required."
	MsgCountryRequired    = "Country is required."
	MsgCountryInvalid     = "Country must be a 2-letter ISO code."
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func invalid(message string) result.Result[result.Unit] {
	return result.Failure[result.Unit](result.StatusBadRequest, message)
}

type ChangePassword struct {
	Username           string `json:"username"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (r ChangePassword) Validate() result.Result[result.Unit] {
	switch {
	case blank(r.Username):
		return invalid(MsgUsernameRequired)
	case blank(r.CurrentPassword):
		return invalid(MsgCurrentPasswordRequired)
	case blank(r.NewPassword):
		return invalid(MsgNewPasswordRequired)
	case len(r.NewPassword) < MinPasswordLength:
		return invalid(MsgNewPasswordTooShort)
	case blank(r.ConfirmNewPassword):
		return invalid(MsgConfirmPasswordRequired)
	case r.NewPassword != r.ConfirmNewPassword:
		return invalid(MsgNewPasswordMismatch)
	case r.NewPassword == r.CurrentPassword:
		return invalid(MsgNewPasswordSameAsOld)
	}
	return result.Ok()
}

type ResetPassword struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPassword) Validate() result.Result[result.Unit] {
	switch {
	case blank(r.Token):
		return invalid(MsgResetTokenRequired)
	case blank(r.NewPassword):
		return invalid(MsgNewPasswordRequired)
	case len(r.NewPassword) < MinPasswordLength:
		return invalid(MsgNewPasswordTooShort)
	case r.NewPassword != r.ConfirmPassword:
		return invalid(MsgPasswordsMismatch)
	}
	return result.Ok()
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (r Address) Validate() result.Result[result.Unit] {
	switch {
	case blank(r.Street):
		return invalid(MsgStreetRequired)
	case blank(r.City):
		return invalid(MsgCityRequired)
	case blank(r.PostalCode):
		return invalid(MsgPostalCodeRequired)
	case blank(r.Country):
		return invalid(MsgCountryRequired)
	case len(strings.TrimSpace(r.Country)) != 2:
		return invalid(MsgCountryInvalid)
	}
	return result.Ok()
}

func (r Address) ToModel() models.Address {
	return models.Address{
		Street:     strings.TrimSpace(r.Street),
		City:       strings.TrimSpace(r.City),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(r.Country)),
	}
}
