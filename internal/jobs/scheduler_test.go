package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/api/internal/models"
	"marketplace/api/internal/repository/memory"
)

type failingSweeper struct{ calls int }

func (f *failingSweeper) ClearExpiredResetTokens(context.Context, time.Time) (int64, error) {
	f.calls++
	return 0, errors.New("connection reset")
}

func TestSweepClearsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := memory.NewUserStore(models.User{ID: "u-1", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, users.SetPasswordResetToken(ctx, "u-1", "hash", now.Add(-time.Minute)))

	s := NewScheduler(users, "0 0 * * * *", zerolog.Nop())
	s.now = func() time.Time { return now }
	s.sweepResetTokens()

	user, err := users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, user.PasswordResetTokenHash)
	assert.Nil(t, user.PasswordResetExpiresAt)
}

func TestSweepSurvivesStoreFailure(t *testing.T) {
	sweeper := &failingSweeper{}
	s := NewScheduler(sweeper, "0 0 * * * *", zerolog.Nop())

	assert.NotPanics(t, s.sweepResetTokens)
	assert.Equal(t, 1, sweeper.calls)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&failingSweeper{}, "every tuesday", zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStartWithoutSweeperIsNoop(t *testing.T) {
	s := NewScheduler(nil, "0 0 * * * *", zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}
