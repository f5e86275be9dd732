package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
)

// JobRunRepository keeps the latest state of each run in memory.
type JobRunRepository struct {
	mu   sync.RWMutex
	runs map[string]jobrun.Run
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{runs: make(map[string]jobrun.Run)}
}

func (r *JobRunRepository) UpsertRun(_ context.Context, run jobrun.Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.RunID] = run
	return nil
}

func (r *JobRunRepository) ListRecent(_ context.Context, routine string, limit int) ([]jobrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]jobrun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		if routine != "" && run.Routine != routine {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
