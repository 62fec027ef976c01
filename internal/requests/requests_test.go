package requests_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/api/internal/requests"
	"marketplace/api/internal/result"
)

func validChangePassword() requests.ChangePassword {
	return requests.ChangePassword{
		Username:           "alice",
		CurrentPassword:    "OldPassword1!",
		NewPassword:        "NewPassword1!",
		ConfirmNewPassword: "NewPassword1!",
	}
}

func TestChangePassword_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*requests.ChangePassword)
		wantMsg string
	}{
		{"empty username", func(r *requests.ChangePassword) { r.Username = "" }, "Username is required."},
		{"whitespace username", func(r *requests.ChangePassword) { r.Username = "   " }, "Username is required."},
		{"empty current password", func(r *requests.ChangePassword) { r.CurrentPassword = "" }, "Current password is required."},
		{"empty new password", func(r *requests.ChangePassword) { r.NewPassword = "" }, "New password is required."},
		{"short new password", func(r *requests.ChangePassword) {
			r.NewPassword = "short"
			r.ConfirmNewPassword = "short"
		}, "New password must be at least 8 characters long."},
		{"mismatched confirmation", func(r *requests.ChangePassword) { r.ConfirmNewPassword = "Different1!" }, "New password and confirm new password do not match."},
		{"same as current", func(r *requests.ChangePassword) {
			r.NewPassword = r.CurrentPassword
			r.ConfirmNewPassword = r.CurrentPassword
		}, "New password must be different from current password."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validChangePassword()
			tt.mutate(&req)

			res := req.Validate()
			assert.True(t, res.IsFailure())
			assert.Equal(t, result.StatusBadRequest, res.Status())
			assert.Equal(t, tt.wantMsg, res.Message())
		})
	}
}

func TestChangePassword_ValidateSuccess(t *testing.T) {
	assert.True(t, validChangePassword().Validate().IsSuccess())
}

func TestResetPassword_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     requests.ResetPassword
		wantMsg string
	}{
		{"missing token", requests.ResetPassword{NewPassword: "Password1!", ConfirmPassword: "Password1!"}, "Reset token is required."},
		{"missing password", requests.ResetPassword{Token: "t"}, "New password is required."},
		{"short password", requests.ResetPassword{Token: "t", NewPassword: "abc", ConfirmPassword: "abc"}, "New password must be at least 8 characters long."},
		{"mismatch", requests.ResetPassword{Token: "t", NewPassword: "Password1!", ConfirmPassword: "Password2!"}, "Passwords do not match."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.req.Validate()
			assert.Equal(t, result.StatusBadRequest, res.Status())
			assert.Equal(t, tt.wantMsg, res.Message())
		})
	}

	ok := requests.ResetPassword{Token: "t", NewPassword: "Password1!", ConfirmPassword: "Password1!"}.Validate()
	assert.True(t, ok.IsSuccess())
}

func TestAddress_Validate(t *testing.T) {
	valid := requests.Address{Street: "1 Rue de Rivoli", City: "Paris", PostalCode: "75001", Country: "FR"}
	assert.True(t, valid.Validate().IsSuccess())

	tests := []struct {
		name    string
		mutate  func(*requests.Address)
		wantMsg string
	}{
		{"street", func(a *requests.Address) { a.Street = " " }, "Street is required."},
		{"city", func(a *requests.Address) { a.City = "" }, "City is required."},
		{"postal code", func(a *requests.Address) { a.PostalCode = "" }, "Postal code is required."},
		{"country", func(a *requests.Address) { a.Country = "" }, "Country is required."},
		{"country length", func(a *requests.Address) { a.Country = "France" }, "Country must be a 2-letter ISO code."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := valid
			tt.mutate(&addr)
			res := addr.Validate()
			assert.Equal(t, result.StatusBadRequest, res.Status())
			assert.Equal(t, tt.wantMsg, res.Message())
		})
	}
}
