// Package mail delivers password reset notifications. The api enqueues them
// on a redis stream; the worker drains the stream and sends over SMTP.
package mail

import (
	"context"
	"time"
)

// TaskPasswordReset is the stream task type carrying a PasswordResetMessage.
const TaskPasswordReset = "password_reset"

type PasswordResetMessage struct {
	UserID    string
	Username  string
	Email     string
	Token     string
	ExpiresAt time.Time
}

type Gateway interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}
