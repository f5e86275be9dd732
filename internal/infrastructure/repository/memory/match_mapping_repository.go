package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
)

type MatchMappingRepository struct {
	mu           sync.RWMutex
	byOddsID     map[string]matchmapping.Mapping
	byProviderID map[string]string
}

func NewMatchMappingRepository(seed ...matchmapping.Mapping) *MatchMappingRepository {
	r := &MatchMappingRepository{
		byOddsID:     make(map[string]matchmapping.Mapping, len(seed)),
		byProviderID: make(map[string]string, len(seed)),
	}
	for _, item := range seed {
		r.byOddsID[item.OddsMatchID] = item
		r.byProviderID[item.SportradarMatchID] = item.OddsMatchID
	}
	return r
}

func (r *MatchMappingRepository) Create(_ context.Context, item matchmapping.Mapping) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOddsID[item.OddsMatchID]; exists {
		return false, nil
	}
	r.byOddsID[item.OddsMatchID] = item
	r.byProviderID[item.SportradarMatchID] = item.OddsMatchID
	return true, nil
}

func (r *MatchMappingRepository) GetByOddsMatchID(_ context.Context, oddsMatchID string) (matchmapping.Mapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byOddsID[oddsMatchID]
	return item, ok, nil
}

func (r *MatchMappingRepository) GetBySportradarID(_ context.Context, sportradarMatchID string) (matchmapping.Mapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oddsID, ok := r.byProviderID[sportradarMatchID]
	if !ok {
		return matchmapping.Mapping{}, false, nil
	}
	item, ok := r.byOddsID[oddsID]
	return item, ok, nil
}

func (r *MatchMappingRepository) ListByOddsMatchIDs(_ context.Context, oddsMatchIDs []string) (map[string]matchmapping.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]matchmapping.Mapping, len(oddsMatchIDs))
	for _, id := range oddsMatchIDs {
		if item, ok := r.byOddsID[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}
