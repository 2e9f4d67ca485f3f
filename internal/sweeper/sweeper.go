// Package sweeper finalizes sessions whose deadline passed while their
// owner stayed silent. Expiry is otherwise lazy: a session is only
// finalized when its owner next interacts with it.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abhisek/lingoquiz/internal/engine"
)

// DefaultSchedule checks for expired sessions every 30 seconds.
const DefaultSchedule = "@every 30s"

// Target is the engine operation the sweeper drives.
type Target interface {
	SweepExpired(ctx context.Context, now time.Time) ([]*engine.Summary, error)
}

// Sweeper runs Target.SweepExpired on a cron schedule.
type Sweeper struct {
	target Target
	logger *log.Logger
	now    func() time.Time
	cron   *cron.Cron

	mu    sync.Mutex
	swept int
}

// New returns a Sweeper for the cron spec (standard five-field syntax or
// descriptors such as "@every 1m"). It does not start.
func New(target Target, spec string, logger *log.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Sweeper{
		target: target,
		logger: logger,
		now:    time.Now,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger)))),
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Printf("[SWEEPER] %v", err)
	}
}

// RunOnce finalizes every expired session now and returns how many
// were finalized.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	sums, err := s.target.SweepExpired(ctx, s.now())
	s.mu.Lock()
	s.swept += len(sums)
	s.mu.Unlock()
	for _, sum := range sums {
		s.logger.Printf("[SWEEPER] expired session %s of %s (%d/%d)", sum.SessionID, sum.Owner, sum.Score, sum.Total)
	}
	if err != nil {
		return len(sums), fmt.Errorf("sweep expired sessions: %w", err)
	}
	return len(sums), nil
}

// Swept returns the number of sessions finalized since creation.
func (s *Sweeper) Swept() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swept
}

// Run starts the schedule and blocks until ctx is cancelled, then waits
// for a running sweep to finish.
func (s *Sweeper) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Printf("[SWEEPER] started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Printf("[SWEEPER] stopped after %d sessions", s.Swept())
}
