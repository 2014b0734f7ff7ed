package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invoiceflow/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// BackupRunner writes a backup to object storage and returns its object name.
type BackupRunner interface {
	ScheduledBackup(ctx context.Context) (string, error)
}

// SchedulerConfig selects when recurring jobs run.
type SchedulerConfig struct {
	Location        *time.Location
	BackupCron      string
	LowStockEvery   time.Duration
	ReportWarmEvery time.Duration
}

// JobScheduler runs the recurring background jobs of the server.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *InventoryAlertService
	reports   *ReportRefreshService
	backups   BackupRunner
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with every job registered. A nil
// service skips its job.
func NewJobScheduler(ctx context.Context, cfg SchedulerConfig, alerts *InventoryAlertService, reports *ReportRefreshService, backups BackupRunner) (*JobScheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LowStockEvery <= 0 {
		cfg.LowStockEvery = 30 * time.Minute
	}
	if cfg.ReportWarmEvery <= 0 {
		cfg.ReportWarmEvery = 5 * time.Minute
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		reports:   reports,
		backups:   backups,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(ctx, cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) add(name string, def gocron.JobDefinition, task gocron.Task) error {
	job, err := js.scheduler.NewJob(def, task,
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) registerJobs(ctx context.Context, cfg SchedulerConfig) error {
	if js.alerts != nil {
		if err := js.add("inventory-alerts",
			gocron.DurationJob(cfg.LowStockEvery),
			gocron.NewTask(func() { _ = js.alerts.ScheduledLowStockCheck(ctx) }),
		); err != nil {
			return err
		}
	}

	if js.reports != nil {
		if err := js.add("report-refresh",
			gocron.DurationJob(cfg.ReportWarmEvery),
			gocron.NewTask(func() { _ = js.refreshReports(ctx) }),
		); err != nil {
			return err
		}
	}

	if js.backups != nil && cfg.BackupCron != "" {
		if err := js.add("daily-backup",
			gocron.CronJob(cfg.BackupCron, false),
			gocron.NewTask(func() { _ = js.runBackup(ctx) }),
		); err != nil {
			return err
		}
	}

	log := logger.WithComponent("scheduler")
	log.Info().Int("jobs", len(js.jobs)).Msg("registered background jobs")
	return nil
}

func (js *JobScheduler) refreshReports(ctx context.Context) error {
	_, err := js.reports.Refresh(ctx)
	if err != nil {
		log := logger.WithComponent("scheduler")
		log.Error().Err(err).Msg("report refresh failed")
	}
	return err
}

func (js *JobScheduler) runBackup(ctx context.Context) error {
	log := logger.WithComponent("scheduler")
	object, err := js.backups.ScheduledBackup(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled backup failed")
		return err
	}
	log.Info().Str("object", object).Msg("scheduled backup written")
	return nil
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

// RunNow triggers a registered job immediately.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log := logger.WithComponent("scheduler")
	log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log := logger.WithComponent("scheduler")
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}
