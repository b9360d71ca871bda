package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/config"
	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/finder"
)

const runTimeout = 5 * time.Minute

// Scheduler re-runs a standing query on a fixed interval so the memory
// keeps accumulating fresh opportunities between interactive sessions.
type Scheduler struct {
	cron    *cron.Cron
	finder  *finder.Finder
	cfg     config.SchedulerConfig
	profile *domain.UserProfile
	log     *zap.Logger
}

func New(f *finder.Finder, cfg config.SchedulerConfig, profile *domain.UserProfile, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		finder:  f,
		cfg:     cfg,
		profile: profile,
		log:     log,
	}
}

// Start registers the standing query job and runs it once immediately
// so a fresh deployment does not wait a full interval for data.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %dh", s.cfg.IntervalHours)
	if _, err := s.cron.AddFunc(spec, s.runStandingQuery); err != nil {
		return fmt.Errorf("failed to schedule standing query: %w", err)
	}

	go s.runStandingQuery()
	s.cron.Start()

	s.log.Info("scheduler started",
		zap.String("interval", spec),
		zap.String("query", s.cfg.StandingQuery))
	return nil
}

// Stop halts the cron loop. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runStandingQuery() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.finder.Find(ctx, s.cfg.StandingQuery, s.profile, false)
	if err != nil {
		s.log.Error("standing query run failed", zap.Error(err))
		return
	}

	s.log.Info("standing query run complete",
		zap.Int("total_found", resp.TotalFound),
		zap.Int("recommendations", len(resp.Recommendations)),
		zap.Duration("took", time.Since(started)))
}
