package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

// Runner executes one routine pass. JobOrchestratorService implements it.
type Runner interface {
	Has(routine usecase.Routine) bool
	Run(ctx context.Context, routine usecase.Routine, trigger jobrun.Trigger) (usecase.JobRunResult, error)
	Drain(ctx context.Context) error
}

type Config struct {
	Location          *time.Location
	OddsSyncInterval  time.Duration
	CleanupCron       string
	LiveCheckInterval time.Duration
	MappingInterval   time.Duration
	// RunCleanupOnStart runs the cleanup routine once, synchronously, before
	// the periodic jobs start.
	RunCleanupOnStart bool
}

// Scheduler drives the orchestrator routines on gocron timers.
type Scheduler struct {
	runner Runner
	cron   *gocron.Scheduler
	cfg    Config
	logger *logging.Logger
	ctx    context.Context
}

func New(runner Runner, cfg Config, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		runner: runner,
		cron:   gocron.NewScheduler(cfg.Location),
		cfg:    cfg,
		logger: logger.Named("scheduler"),
	}
}

// Start registers the jobs and starts the timers. Routine contexts are
// detached from ctx so a shutdown signal does not cut a pass in half.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = context.WithoutCancel(ctx)

	if s.cfg.RunCleanupOnStart && s.runner.Has(usecase.RoutineCleanup) {
		s.tick(usecase.RoutineCleanup, jobrun.TriggerStartup)
	}

	if err := s.every(usecase.RoutineOddsSync, s.cfg.OddsSyncInterval); err != nil {
		return err
	}
	if err := s.every(usecase.RoutineLiveCheck, s.cfg.LiveCheckInterval); err != nil {
		return err
	}
	if err := s.every(usecase.RoutineMapping, s.cfg.MappingInterval); err != nil {
		return err
	}
	if expr := strings.TrimSpace(s.cfg.CleanupCron); expr != "" && s.runner.Has(usecase.RoutineCleanup) {
		if _, err := s.cron.Cron(expr).Tag(string(usecase.RoutineCleanup)).SingletonMode().WaitForSchedule().
			Do(s.tick, usecase.RoutineCleanup, jobrun.TriggerSchedule); err != nil {
			return fmt.Errorf("schedule %s cron=%q: %w", usecase.RoutineCleanup, expr, err)
		}
	}

	s.cron.StartAsync()
	s.logger.InfoContext(ctx, "scheduler started", "jobs", s.cron.Len())
	return nil
}

// Stop halts new ticks and waits for in-flight passes until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cron.Stop()
	if err := s.runner.Drain(ctx); err != nil {
		return fmt.Errorf("drain routines: %w", err)
	}
	s.logger.InfoContext(ctx, "scheduler stopped")
	return nil
}

func (s *Scheduler) every(routine usecase.Routine, interval time.Duration) error {
	if interval <= 0 || !s.runner.Has(routine) {
		s.logger.Info("routine not scheduled", "routine", routine, "interval", interval.String())
		return nil
	}
	if _, err := s.cron.Every(interval).Tag(string(routine)).SingletonMode().
		Do(s.tick, routine, jobrun.TriggerSchedule); err != nil {
		return fmt.Errorf("schedule %s every %s: %w", routine, interval, err)
	}
	return nil
}

// tick never returns an error; a failed pass is logged and the next tick
// retries.
func (s *Scheduler) tick(routine usecase.Routine, trigger jobrun.Trigger) {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.runner.Run(ctx, routine, trigger)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrRoutineBusy):
		s.logger.DebugContext(ctx, "tick skipped", "routine", routine, "run_id", result.RunID)
	default:
		s.logger.WarnContext(ctx, "tick failed", "routine", routine, "run_id", result.RunID, "error", err)
	}
}
