package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwhitmore/budget-agent/internal/api"
	"github.com/mwhitmore/budget-agent/internal/domain/balance"
	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/internal/domain/projection"
	"github.com/mwhitmore/budget-agent/internal/domain/schedule"
	"github.com/mwhitmore/budget-agent/internal/domain/statements"
	"github.com/mwhitmore/budget-agent/internal/domain/summary"
	"github.com/mwhitmore/budget-agent/pkg/config"
	"github.com/mwhitmore/budget-agent/pkg/cron"
	"github.com/mwhitmore/budget-agent/pkg/db"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	LedgerRepo   ledger.Repository
	ScheduleRepo schedule.Repository
	BalanceRepo  balance.Repository

	// Services
	LedgerService     *ledger.Service
	StatementsService *statements.Service
	BalanceService    *balance.Service
	ProjectionService *projection.Service
	ScheduleService   *schedule.Service
	SummaryService    *summary.Service

	Scheduler *cron.Scheduler
	Server    *api.Server
}

// InitDependencies wires config, database, repositories, services and the
// HTTP server.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.Scheduler = cron.NewScheduler(cfg.Jobs, deps.BalanceService, logger)
	deps.Server = api.NewServer(cfg.Server, &api.Handlers{
		Ledger:     deps.LedgerService,
		Statements: deps.StatementsService,
		Balance:    deps.BalanceService,
		Projection: deps.ProjectionService,
		Schedule:   deps.ScheduleService,
		Summary:    deps.SummaryService,
		Metrics:    deps.Metrics,
		Logger:     logger,
	})

	logger.Info("all dependencies initialized")
	return deps, nil
}

func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	d.Logger.Info("database connected and migrations completed")
	return nil
}

func (d *Dependencies) initServices(ctx context.Context) error {
	d.LedgerRepo = ledger.NewPostgresRepository(d.DB.Pool)
	d.ScheduleRepo = schedule.NewPostgresRepository(d.DB.Pool)
	d.BalanceRepo = balance.NewPostgresRepository(d.DB.Pool)

	d.LedgerService = ledger.NewService(d.LedgerRepo, d.Logger)
	d.StatementsService = statements.NewService(d.LedgerRepo, d.LedgerService.Classifier(), d.Metrics, d.Logger)
	d.BalanceService = balance.NewService(d.BalanceRepo, d.LedgerService, d.Logger)
	d.ProjectionService = projection.NewService(d.LedgerService, d.Logger)
	d.ScheduleService = schedule.NewService(d.ScheduleRepo, d.Metrics, d.Logger)

	summarySvc, err := summary.NewService(ctx, d.Config.Gemini, d.LedgerService, d.Logger)
	if err != nil {
		return err
	}
	d.SummaryService = summarySvc
	return nil
}

// Cleanup releases held resources.
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("dependencies cleaned up")
}
