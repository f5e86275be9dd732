package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
}

func NewMatchRepository(seed ...match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(seed))
	for _, item := range seed {
		items[item.MatchID] = cloneMatch(item)
	}
	return &MatchRepository{matches: items}
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.matches[item.MatchID]
	if !ok {
		stored := cloneMatch(item)
		r.matches[item.MatchID] = stored
		return cloneMatch(stored), nil
	}

	// Names and provider-owned fields stay as stored.
	existing.ScheduledAt = cloneTime(item.ScheduledAt)
	existing.Status = item.Status
	existing.LastUpdated = item.LastUpdated
	r.matches[item.MatchID] = existing
	return cloneMatch(existing), nil
}

func (r *MatchRepository) ApplyPatch(_ context.Context, matchID string, patch match.Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.matches[matchID]
	if !ok {
		return false, nil
	}
	updated := patch.Apply(existing)
	updated.LastUpdated = time.Now().UTC()
	r.matches[matchID] = updated
	return true, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) List(_ context.Context, filter match.ListFilter) ([]match.Match, error) {
	return r.collect(filter.Limit, func(item match.Match) bool {
		return filter.Status == "" || item.Status == filter.Status
	}), nil
}

func (r *MatchRepository) ListActive(_ context.Context) ([]match.Match, error) {
	return r.collect(0, func(item match.Match) bool {
		return item.Status != match.StatusCompleted
	}), nil
}

func (r *MatchRepository) ListActiveScheduledBefore(_ context.Context, cutoff time.Time) ([]match.Match, error) {
	return r.collect(0, func(item match.Match) bool {
		return item.Status != match.StatusCompleted &&
			item.ScheduledAt != nil &&
			item.ScheduledAt.Before(cutoff)
	}), nil
}

func (r *MatchRepository) ListScheduledSince(_ context.Context, since time.Time) ([]match.Match, error) {
	return r.collect(0, func(item match.Match) bool {
		return item.ScheduledAt == nil || !item.ScheduledAt.Before(since)
	}), nil
}

func (r *MatchRepository) MarkCompleted(_ context.Context, matchIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	count := 0
	for _, id := range matchIDs {
		item, ok := r.matches[id]
		if !ok || item.Status == match.StatusCompleted {
			continue
		}
		item.Status = match.StatusCompleted
		item.LastUpdated = now
		r.matches[id] = item
		count++
	}
	return count, nil
}

func (r *MatchRepository) collect(limit int, keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.matches))
	for _, item := range r.matches {
		if keep(item) {
			out = append(out, cloneMatch(item))
		}
	}
	sortMatches(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sortMatches orders by kickoff, unscheduled last, then by id.
func sortMatches(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].ScheduledAt, items[j].ScheduledAt
		switch {
		case a == nil && b == nil:
			return items[i].MatchID < items[j].MatchID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return items[i].MatchID < items[j].MatchID
		}
	})
}

func cloneMatch(item match.Match) match.Match {
	item.ScheduledAt = cloneTime(item.ScheduledAt)
	return item
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
