package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	idgen "github.com/riskibarqy/cricket-odds/internal/platform/id"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type Routine string

const (
	RoutineOddsSync  Routine = "odds-sync"
	RoutineCleanup   Routine = "cleanup"
	RoutineLiveCheck Routine = "live-check"
	RoutineMapping   Routine = "mapping"
)

// RoutineFunc runs one pass and returns a summary for the run log.
type RoutineFunc func(ctx context.Context) (map[string]any, error)

type JobRunResult struct {
	RunID      string         `json:"run_id"`
	Routine    Routine        `json:"routine"`
	Trigger    jobrun.Trigger `json:"trigger"`
	Status     jobrun.Status  `json:"status"`
	DurationMs int64          `json:"duration_ms"`
	Summary    map[string]any `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// JobOrchestratorService owns the pipeline routines. Each routine runs at
// most once at a time; different routines never block each other.
type JobOrchestratorService struct {
	routines map[Routine]RoutineFunc
	running  map[Routine]*atomic.Bool
	runRepo  jobrun.Repository
	ids      idgen.Generator
	logger   *logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	draining bool
	inFlight sync.WaitGroup
}

func NewJobOrchestratorService(
	reconciler *ReconcilerService,
	liveCheck *LiveCrossCheckService,
	mapping *MatchMappingService,
	runRepo jobrun.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *JobOrchestratorService {
	s := newJobOrchestrator(runRepo, ids, logger)

	if reconciler != nil {
		s.Register(RoutineOddsSync, func(ctx context.Context) (map[string]any, error) {
			result, err := reconciler.SyncOdds(ctx)
			return result.Summary(), err
		})
		s.Register(RoutineCleanup, func(ctx context.Context) (map[string]any, error) {
			result, err := reconciler.CleanupStaleMatches(ctx)
			return result.Summary(), err
		})
	}
	if liveCheck != nil {
		s.Register(RoutineLiveCheck, func(ctx context.Context) (map[string]any, error) {
			result, err := liveCheck.CrossCheckLive(ctx)
			return result.Summary(), err
		})
	}
	if mapping != nil {
		s.Register(RoutineMapping, func(ctx context.Context) (map[string]any, error) {
			result, err := mapping.MapProviderMatches(ctx)
			return result.Summary(), err
		})
	}

	return s
}

func newJobOrchestrator(runRepo jobrun.Repository, ids idgen.Generator, logger *logging.Logger) *JobOrchestratorService {
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobOrchestratorService{
		routines: make(map[Routine]RoutineFunc),
		running:  make(map[Routine]*atomic.Bool),
		runRepo:  runRepo,
		ids:      ids,
		logger:   logger.Named("jobs"),
		now:      time.Now,
	}
}

// Register adds or replaces a routine. Call before the scheduler starts.
func (s *JobOrchestratorService) Register(routine Routine, fn RoutineFunc) {
	s.routines[routine] = fn
	if _, ok := s.running[routine]; !ok {
		s.running[routine] = &atomic.Bool{}
	}
}

func (s *JobOrchestratorService) Routines() []Routine {
	out := make([]Routine, 0, len(s.routines))
	for routine := range s.routines {
		out = append(out, routine)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *JobOrchestratorService) Has(routine Routine) bool {
	_, ok := s.routines[routine]
	return ok
}

// Run executes routine unless a previous run is still in progress, in which
// case it returns ErrRoutineBusy without waiting.
func (s *JobOrchestratorService) Run(ctx context.Context, routine Routine, trigger jobrun.Trigger) (JobRunResult, error) {
	fn, ok := s.routines[routine]
	if !ok {
		return JobRunResult{}, fmt.Errorf("%w: routine=%s", ErrNotFound, routine)
	}

	result := JobRunResult{Routine: routine, Trigger: trigger}
	runID, err := s.ids.NewID()
	if err != nil {
		return result, fmt.Errorf("generate run id: %w", err)
	}
	result.RunID = runID

	if !s.enter() {
		result.Status = jobrun.StatusSkipped
		return result, fmt.Errorf("%w: routine=%s shutting down", ErrRoutineBusy, routine)
	}
	defer s.inFlight.Done()

	guard := s.running[routine]
	if !guard.CompareAndSwap(false, true) {
		result.Status = jobrun.StatusSkipped
		s.record(ctx, result, nil)
		s.logger.WarnContext(ctx, "routine still running, tick skipped", "routine", routine, "trigger", trigger)
		return result, fmt.Errorf("%w: routine=%s", ErrRoutineBusy, routine)
	}
	defer guard.Store(false)

	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.Run."+string(routine))
	defer span.End()

	result.Status = jobrun.StatusStarted
	s.record(ctx, result, nil)

	start := s.now()
	summary, runErr := invokeRoutine(ctx, fn)
	result.DurationMs = s.now().Sub(start).Milliseconds()
	result.Summary = summary

	if runErr != nil {
		result.Status = jobrun.StatusFailed
		result.Error = runErr.Error()
		s.record(ctx, result, runErr)
		s.logger.ErrorContext(ctx, "routine failed",
			"routine", routine,
			"trigger", trigger,
			"run_id", runID,
			"duration_ms", result.DurationMs,
			"error", runErr,
		)
		return result, runErr
	}

	result.Status = jobrun.StatusCompleted
	s.record(ctx, result, nil)
	s.logger.DebugContext(ctx, "routine completed",
		"routine", routine,
		"trigger", trigger,
		"run_id", runID,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// Drain rejects new runs and waits for in-flight ones until ctx is done.
func (s *JobOrchestratorService) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for in-flight routines: %w", ctx.Err())
	}
}

func (s *JobOrchestratorService) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.inFlight.Add(1)
	return true
}

func invokeRoutine(ctx context.Context, fn RoutineFunc) (summary map[string]any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("routine panic: %v", recovered)
		}
	}()
	return fn(ctx)
}

func (s *JobOrchestratorService) record(ctx context.Context, result JobRunResult, runErr error) {
	if s.runRepo == nil || strings.TrimSpace(result.RunID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	run := jobrun.Run{
		RunID:      result.RunID,
		Routine:    string(result.Routine),
		Trigger:    result.Trigger,
		Status:     result.Status,
		Summary:    result.Summary,
		OccurredAt: s.now().UTC(),
		TraceID:    traceID,
		SpanID:     spanID,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	if err := s.runRepo.UpsertRun(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record job run failed",
			"run_id", run.RunID,
			"routine", run.Routine,
			"status", run.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
