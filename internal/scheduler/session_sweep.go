// Package scheduler runs the optional periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
)

// SessionSweepScheduler periodically clears expired session tokens from
// the users table. Expiry is already enforced by the lookup predicate;
// the sweep only keeps stale tokens from lingering in the database file.
// Disabled by default.
type SessionSweepScheduler struct {
	db  *database.Database
	cfg config.Sessions

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewSessionSweepScheduler(db *database.Database, cfg config.Sessions) *SessionSweepScheduler {
	return &SessionSweepScheduler{
		db:   db,
		cfg:  cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *SessionSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.SweepEnabled {
		log.Printf("Session sweep scheduler: disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.cfg.SweepSchedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Session sweep scheduler: started with schedule '%s'", s.cfg.SweepSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *SessionSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Session sweep scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *SessionSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *SessionSweepScheduler) runSweep() {
	if err := s.db.ClearExpiredSessions(); err != nil {
		log.Printf("Session sweep failed: %v", err)
	}
}
