// Package scheduler runs synchronization on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/services/sync"
)

// runTimeout bounds one scheduled synchronization pass.
const runTimeout = 5 * time.Minute

// Scheduler triggers sync runs on a cron expression.
type Scheduler struct {
	cron     *cron.Cron
	sync     *sync.Service
	schedule string
	atStart  bool
	logger   *events.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. schedule accepts standard five-field cron
// expressions and descriptors like "@every 1h". atStart additionally runs
// one pass as soon as the scheduler starts.
func New(syncSvc *sync.Service, schedule string, atStart bool, logger *events.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(),
		sync:     syncSvc,
		schedule: schedule,
		atStart:  atStart,
		logger:   logger.WithField("component", "scheduler"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.schedule, s.runJob)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithFields(map[string]interface{}{
		"job_id":   int(id),
		"schedule": s.schedule,
	}).Info("Scheduler started")

	if s.atStart {
		go s.runJob()
	}
	return nil
}

// Stop cancels in-flight runs and waits for the cron loop to drain.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	if _, err := s.sync.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled sync run failed")
	}
}
