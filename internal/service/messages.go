package service

// User-facing messages. Clients assert on these strings.
const (
	MsgInvalidCredentials    = "Invalid credentials"
	MsgEmailNotValidated     = "Please validate your email address before logging in"
	MsgSessionNotFound       = "Session not found."
	MsgRefreshTokenMissing   = "Refresh token not found"
	MsgRefreshTokenInvalid   = "Invalid or expired refresh token"
	MsgEmailRequired         = "Email is required."
	MsgEmailInvalid          = "Invalid email format."
	MsgResetLinkSent         = "If the email address exists in our system, you will receive a password reset link shortly."
	MsgPasswordReset         = "Password has been reset successfully."
	MsgResetTokenInvalid     = "Invalid or expired reset token."
	MsgUserNotFound          = "User not found."
	MsgEmailAlreadyValidated = "Email is already validated."
	MsgCurrentPasswordWrong  = "Current password is incorrect."
	MsgPasswordChanged       = "Password has been changed successfully."
	MsgNotYourAccount        = "You can only change your own password."
	MsgSessionInactive       = "Session is no longer active."
	MsgCompanyNotFound       = "Company not found."
	MsgCategoriesFailed      = "Failed to retrieve categories: "
	MsgUnexpected            = "An unexpected error occurred."
)
