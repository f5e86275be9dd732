package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

type call struct {
	routine usecase.Routine
	trigger jobrun.Trigger
}

type fakeRunner struct {
	mu       sync.Mutex
	routines map[usecase.Routine]bool
	calls    []call
	err      error
	drained  bool
}

func (f *fakeRunner) Has(routine usecase.Routine) bool { return f.routines[routine] }

func (f *fakeRunner) Run(_ context.Context, routine usecase.Routine, trigger jobrun.Trigger) (usecase.JobRunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{routine: routine, trigger: trigger})
	return usecase.JobRunResult{Routine: routine, Trigger: trigger}, f.err
}

func (f *fakeRunner) Drain(context.Context) error {
	f.mu.Lock()
	f.drained = true
	f.mu.Unlock()
	return nil
}

func (f *fakeRunner) count(routine usecase.Routine, trigger jobrun.Trigger) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.routine == routine && c.trigger == trigger {
			n++
		}
	}
	return n
}

func TestScheduler_StartupCleanupAndTicks(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{routines: map[usecase.Routine]bool{
		usecase.RoutineOddsSync: true,
		usecase.RoutineCleanup:  true,
	}}
	s := New(runner, Config{
		OddsSyncInterval:  50 * time.Millisecond,
		CleanupCron:       "5 0 * * *",
		LiveCheckInterval: time.Minute,
		RunCleanupOnStart: true,
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if runner.count(usecase.RoutineCleanup, jobrun.TriggerStartup) != 1 {
		t.Fatalf("expected startup cleanup to run synchronously")
	}

	deadline := time.Now().Add(2 * time.Second)
	for runner.count(usecase.RoutineOddsSync, jobrun.TriggerSchedule) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := runner.count(usecase.RoutineOddsSync, jobrun.TriggerSchedule); got < 2 {
		t.Fatalf("expected odds-sync to tick at least twice, got %d", got)
	}
	if runner.count(usecase.RoutineLiveCheck, jobrun.TriggerSchedule) != 0 {
		t.Fatalf("expected unregistered routine to stay unscheduled")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !runner.drained {
		t.Fatalf("expected stop to drain the runner")
	}
}

func TestScheduler_TickSwallowsErrors(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		routines: map[usecase.Routine]bool{usecase.RoutineOddsSync: true},
		err:      errors.New("feed down"),
	}
	s := New(runner, Config{}, nil)

	s.tick(usecase.RoutineOddsSync, jobrun.TriggerSchedule)
	runner.err = usecase.ErrRoutineBusy
	s.tick(usecase.RoutineOddsSync, jobrun.TriggerSchedule)

	if got := runner.count(usecase.RoutineOddsSync, jobrun.TriggerSchedule); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
}

func TestScheduler_InvalidCron(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{routines: map[usecase.Routine]bool{usecase.RoutineCleanup: true}}
	s := New(runner, Config{CleanupCron: "not a cron"}, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid cron to fail start")
	}
}
