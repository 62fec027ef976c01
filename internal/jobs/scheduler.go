package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ResetTokenSweeper clears password reset tokens whose expiry has passed.
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper ResetTokenSweeper
	spec    string
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewScheduler(sweeper ResetTokenSweeper, spec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		spec:    spec,
		timeout: 30 * time.Second,
		now:     time.Now,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.sweeper == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweepResetTokens); err != nil {
		return fmt.Errorf("schedule reset token sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done once a running sweep
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cleared, err := s.sweeper.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("reset token sweep failed")
		return
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("expired reset tokens cleared")
	}
}
