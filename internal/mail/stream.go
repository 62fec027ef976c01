package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamGateway enqueues messages for the worker. It returns once redis has
// accepted the entry; delivery happens later.
type StreamGateway struct {
	client redis.Cmdable
	stream string
}

func NewStreamGateway(client redis.Cmdable, stream string) *StreamGateway {
	return &StreamGateway{client: client, stream: stream}
}

func (g *StreamGateway) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	err := g.client.XAdd(ctx, &redis.XAddArgs{
		Stream: g.stream,
		Values: map[string]interface{}{
			"type":      TaskPasswordReset,
			"userId":    msg.UserID,
			"username":  msg.Username,
			"email":     msg.Email,
			"token":     msg.Token,
			"expiresAt": msg.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue password reset: %w", err)
	}
	return nil
}
