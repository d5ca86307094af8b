package campaign

import (
	"context"
	"errors"
	"log"
	"time"
)

// Stepper is the engine surface the supervisor drives.
type Stepper interface {
	Step(ctx context.Context, campaignID string, input StepInput) (CampaignState, error)
}

// Supervisor repeatedly steps a campaign with no new input at a fixed
// interval for as long as any monitor entry remains active. This polling
// is what advances time-based follow-up and expiry triggers.
type Supervisor struct {
	engine   Stepper
	interval time.Duration
	logf     func(format string, args ...any)
}

func NewSupervisor(engine Stepper, interval time.Duration) *Supervisor {
	if interval <= 0 {
		interval = DefaultConfig().PollInterval
	}
	return &Supervisor{
		engine:   engine,
		interval: interval,
		logf:     log.Printf,
	}
}

// WithLogf overrides the supervisor's log sink.
func (s *Supervisor) WithLogf(logf func(format string, args ...any)) *Supervisor {
	s.logf = logf
	return s
}

// Run polls until no monitor entry remains active or the context ends.
// Step errors are logged and retried on the next tick; they never stop
// the loop.
func (s *Supervisor) Run(ctx context.Context, campaignID string) error {
	for {
		st, err := s.engine.Step(ctx, campaignID, StepInput{})
		switch {
		case errors.Is(err, ErrCampaignNotFound):
			return err
		case err != nil:
			s.logf("campaign %s: step: %v", campaignID, err)
		default:
			if st.ActiveMonitorCount() == 0 {
				return nil
			}
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
