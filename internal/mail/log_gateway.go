package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogGateway only records that a message would have been sent. Used when
// redis is disabled in development.
type LogGateway struct {
	logger zerolog.Logger
}

func NewLogGateway(logger zerolog.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) SendPasswordReset(_ context.Context, msg PasswordResetMessage) error {
	g.logger.Info().
		Str("user_id", msg.UserID).
		Str("email", msg.Email).
		Time("expires_at", msg.ExpiresAt).
		Msg("password reset email suppressed")
	return nil
}
