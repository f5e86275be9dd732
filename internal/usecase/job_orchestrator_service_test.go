package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/repository/memory"
	jobrunmock "github.com/riskibarqy/cricket-odds/internal/mocks/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTestOrchestrator(runRepo jobrun.Repository) *JobOrchestratorService {
	return newJobOrchestrator(runRepo, &sequenceIDs{}, logging.NewNop())
}

// blockingRoutine signals started and then waits for release.
func blockingRoutine() (RoutineFunc, <-chan struct{}, chan<- struct{}) {
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (map[string]any, error) {
		close(started)
		<-release
		return map[string]any{"ok": true}, nil
	}
	return fn, started, release
}

func TestJobOrchestratorService_RegistersAvailableRoutines(t *testing.T) {
	t.Parallel()

	reconciler := NewReconcilerService(&fakeFeed{}, memory.NewMatchRepository(), memory.NewOddsRepository(), nil, nil, ReconcilerConfig{}, logging.NewNop())
	svc := NewJobOrchestratorService(reconciler, nil, nil, nil, nil, logging.NewNop())

	got := svc.Routines()
	if len(got) != 2 || got[0] != RoutineCleanup || got[1] != RoutineOddsSync {
		t.Fatalf("unexpected routines: %v", got)
	}
	if svc.Has(RoutineMapping) || svc.Has(RoutineLiveCheck) {
		t.Fatalf("provider routines must not be registered without a provider")
	}
}

func TestJobOrchestratorService_Run_RecordsCompletedRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runs := memory.NewJobRunRepository()
	svc := newTestOrchestrator(runs)
	svc.Register(RoutineOddsSync, func(context.Context) (map[string]any, error) {
		return map[string]any{"upserted": 3}, nil
	})

	result, err := svc.Run(ctx, RoutineOddsSync, jobrun.TriggerManual)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != jobrun.StatusCompleted || result.RunID != "run-1" || result.Trigger != jobrun.TriggerManual {
		t.Fatalf("unexpected result: %+v", result)
	}

	recent, err := runs.ListRecent(ctx, string(RoutineOddsSync), 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(recent) != 1 || recent[0].Status != jobrun.StatusCompleted || recent[0].Summary["upserted"] != 3 {
		t.Fatalf("unexpected recorded runs: %+v", recent)
	}
}

func TestJobOrchestratorService_Run_SkipsOverlappingTick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runs := memory.NewJobRunRepository()
	svc := newTestOrchestrator(runs)
	fn, started, release := blockingRoutine()
	svc.Register(RoutineOddsSync, fn)
	svc.Register(RoutineCleanup, func(context.Context) (map[string]any, error) { return nil, nil })

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(ctx, RoutineOddsSync, jobrun.TriggerSchedule)
		done <- err
	}()
	<-started

	result, err := svc.Run(ctx, RoutineOddsSync, jobrun.TriggerSchedule)
	if !errors.Is(err, ErrRoutineBusy) {
		t.Fatalf("expected ErrRoutineBusy, got %v", err)
	}
	if result.Status != jobrun.StatusSkipped {
		t.Fatalf("expected skipped status, got %s", result.Status)
	}

	if _, err := svc.Run(ctx, RoutineCleanup, jobrun.TriggerSchedule); err != nil {
		t.Fatalf("other routine must not be blocked: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}

	if _, err := svc.Run(ctx, RoutineOddsSync, jobrun.TriggerSchedule); err != nil {
		t.Fatalf("run after release: %v", err)
	}

	recent, _ := runs.ListRecent(ctx, string(RoutineOddsSync), 10)
	skipped := 0
	for _, run := range recent {
		if run.Status == jobrun.StatusSkipped {
			skipped++
		}
	}
	if len(recent) != 3 || skipped != 1 {
		t.Fatalf("expected 3 recorded runs with 1 skipped, got %d runs and %d skipped", len(recent), skipped)
	}
}

func TestJobOrchestratorService_Run_RecoversPanic(t *testing.T) {
	t.Parallel()

	svc := newTestOrchestrator(memory.NewJobRunRepository())
	svc.Register(RoutineCleanup, func(context.Context) (map[string]any, error) {
		panic("nil map")
	})

	result, err := svc.Run(context.Background(), RoutineCleanup, jobrun.TriggerSchedule)
	if err == nil || !strings.Contains(err.Error(), "routine panic") {
		t.Fatalf("expected recovered panic error, got %v", err)
	}
	if result.Status != jobrun.StatusFailed {
		t.Fatalf("expected failed status, got %s", result.Status)
	}

	_, err = svc.Run(context.Background(), RoutineCleanup, jobrun.TriggerSchedule)
	if errors.Is(err, ErrRoutineBusy) || err == nil || !strings.Contains(err.Error(), "routine panic") {
		t.Fatalf("expected the guard released after a panic, got %v", err)
	}
}

func TestJobOrchestratorService_Run_UnknownRoutine(t *testing.T) {
	t.Parallel()

	svc := newTestOrchestrator(nil)
	if _, err := svc.Run(context.Background(), Routine("reindex"), jobrun.TriggerManual); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobOrchestratorService_Run_RecordFailureDoesNotFailRunUsingMockery(t *testing.T) {
	t.Parallel()

	runRepo := jobrunmock.NewRepository(t)
	runRepo.
		On("UpsertRun", mock.Anything, mock.AnythingOfType("jobrun.Run")).
		Return(errors.New("connection refused")).
		Twice()

	svc := newTestOrchestrator(runRepo)
	svc.Register(RoutineMapping, func(context.Context) (map[string]any, error) { return nil, nil })

	result, err := svc.Run(context.Background(), RoutineMapping, jobrun.TriggerSchedule)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != jobrun.StatusCompleted {
		t.Fatalf("unexpected status %s", result.Status)
	}
}

func TestJobOrchestratorService_Drain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestOrchestrator(nil)
	fn, started, release := blockingRoutine()
	svc.Register(RoutineLiveCheck, fn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(ctx, RoutineLiveCheck, jobrun.TriggerSchedule)
	}()
	<-started

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := svc.Drain(shortCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected drain to time out while routine runs, got %v", err)
	}

	if _, err := svc.Run(ctx, RoutineLiveCheck, jobrun.TriggerManual); !errors.Is(err, ErrRoutineBusy) {
		t.Fatalf("expected new runs rejected while draining, got %v", err)
	}

	close(release)
	<-done
	if err := svc.Drain(ctx); err != nil {
		t.Fatalf("drain after release: %v", err)
	}
}
