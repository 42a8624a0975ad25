package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler drives the two at-most-once-per-period transitions: recurring
// transaction materialization and budget rollover close. Both underlying
// operations carry their own idempotency guard, so a missed or repeated tick
// is harmless.
type Scheduler struct {
	recurring *RecurringService
	budgets   *BudgetService
	interval  time.Duration
	log       zerolog.Logger
}

func NewScheduler(recurring *RecurringService, budgets *BudgetService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		recurring: recurring,
		budgets:   budgets,
		interval:  time.Hour,
		log:       log,
	}
}

// Start runs the processing loop until the context is cancelled. It ticks
// once immediately on startup.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single processing pass. Also exposed as the one-shot
// batch command.
func (s *Scheduler) RunOnce(ctx context.Context) {
	created, err := s.recurring.ProcessDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("recurring processing failed")
	} else if created > 0 {
		s.log.Info().Int("created", created).Msg("recurring transactions materialized")
	}

	closed, err := s.budgets.CloseDuePeriods(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("budget rollover processing failed")
	} else if closed > 0 {
		s.log.Info().Int("closed", closed).Msg("budget periods rolled over")
	}
}
