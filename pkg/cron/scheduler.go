// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mwhitmore/budget-agent/internal/domain/balance"
	"github.com/mwhitmore/budget-agent/pkg/config"
)

// Scheduler manages background scheduled jobs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.JobsConfig
	balance *balance.Service
	logger  *slog.Logger
}

// NewScheduler creates a job scheduler over the balance service.
func NewScheduler(cfg config.JobsConfig, balanceSvc *balance.Service, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	return &Scheduler{
		cron:    c,
		cfg:     cfg,
		balance: balanceSvc,
		logger:  logger,
	}
}

// Start registers and begins the configured jobs.
func (s *Scheduler) Start() error {
	if s.cfg.SnapshotEnabled {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotSpec, s.snapshotBalance); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the balance snapshot (for admin use).
func (s *Scheduler) RunNow() {
	go s.snapshotBalance()
}

// snapshotBalance records the reconstructed running balance so the series
// seed keeps up even if no manual snapshot is taken.
func (s *Scheduler) snapshotBalance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting nightly balance snapshot")
	if err := s.balance.SnapshotCurrent(ctx); err != nil {
		s.logger.Error("balance snapshot failed", slog.Any("error", err))
		return
	}
	s.logger.Info("nightly balance snapshot complete")
}
