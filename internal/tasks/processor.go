package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"marketplace/api/internal/mail"
)

type Processor struct {
	logger zerolog.Logger
	mailer mail.Gateway
}

type TaskPayload struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

func NewProcessor(logger zerolog.Logger, mailer mail.Gateway) *Processor {
	return &Processor{
		logger: logger,
		mailer: mailer,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case mail.TaskPasswordReset:
		return p.handlePasswordReset(ctx, msg.ID, payload)
	default:
		// Unknown types are acked so they do not cycle through claims forever.
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handlePasswordReset(ctx context.Context, messageID string, payload TaskPayload) error {
	if payload.Email == "" || payload.Token == "" {
		p.logger.Warn().Str("message_id", messageID).Msg("password reset task missing email or token, dropping")
		return nil
	}

	expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return fmt.Errorf("parse expiresAt: %w", err)
	}
	if !time.Now().Before(expiresAt) {
		p.logger.Info().Str("user_id", payload.UserID).Msg("password reset token already expired, skipping email")
		return nil
	}

	err = p.mailer.SendPasswordReset(ctx, mail.PasswordResetMessage{
		UserID:    payload.UserID,
		Username:  payload.Username,
		Email:     payload.Email,
		Token:     payload.Token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("send password reset: %w", err)
	}

	p.logger.Info().Str("user_id", payload.UserID).Str("message_id", messageID).Msg("password reset email sent")
	return nil
}
