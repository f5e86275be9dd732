package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
)

type OddsRepository struct {
	mu      sync.RWMutex
	byMatch map[string]odds.Odds
}

func NewOddsRepository(seed ...odds.Odds) *OddsRepository {
	items := make(map[string]odds.Odds, len(seed))
	for _, item := range seed {
		item.ScheduledAt = cloneTime(item.ScheduledAt)
		items[item.MatchID] = item
	}
	return &OddsRepository{byMatch: items}
}

func (r *OddsRepository) ResetInSheet(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, item := range r.byMatch {
		if !item.IsInSheet {
			continue
		}
		item.IsInSheet = false
		r.byMatch[id] = item
		count++
	}
	return count, nil
}

func (r *OddsRepository) Upsert(_ context.Context, item odds.Odds) (odds.Odds, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ScheduledAt = cloneTime(item.ScheduledAt)
	if existing, ok := r.byMatch[item.MatchID]; ok {
		item.HomeTeam = existing.HomeTeam
		item.AwayTeam = existing.AwayTeam
	}
	r.byMatch[item.MatchID] = item

	out := item
	out.ScheduledAt = cloneTime(item.ScheduledAt)
	return out, nil
}

func (r *OddsRepository) MarkCompleted(_ context.Context, matchIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	count := 0
	for _, id := range matchIDs {
		item, ok := r.byMatch[id]
		if !ok {
			continue
		}
		item.Status = odds.StatusCompleted
		item.LastUpdated = now
		r.byMatch[id] = item
		count++
	}
	return count, nil
}

func (r *OddsRepository) GetByMatchID(_ context.Context, matchID string) (odds.Odds, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byMatch[matchID]
	if !ok {
		return odds.Odds{}, false, nil
	}
	item.ScheduledAt = cloneTime(item.ScheduledAt)
	return item, true, nil
}

func (r *OddsRepository) List(_ context.Context, filter odds.ListFilter) ([]odds.Odds, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]odds.Odds, 0, len(r.byMatch))
	for _, item := range r.byMatch {
		if filter.InSheetOnly && !item.IsInSheet {
			continue
		}
		item.ScheduledAt = cloneTime(item.ScheduledAt)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
