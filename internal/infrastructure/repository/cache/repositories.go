package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	basecache "github.com/riskibarqy/cricket-odds/internal/platform/cache"
)

// Invalidator drops every cached read after a write pass.
type Invalidator struct {
	cache *basecache.Store
}

func NewInvalidator(cache *basecache.Store) *Invalidator {
	return &Invalidator{cache: cache}
}

func (i *Invalidator) Invalidate(ctx context.Context) {
	if i == nil || i.cache == nil {
		return
	}
	i.cache.Purge(ctx)
}

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) (match.Match, error) {
	out, err := r.next.Upsert(ctx, item)
	if err == nil {
		r.cache.DeletePrefix(ctx, "match:")
	}
	return out, err
}

func (r *MatchRepository) ApplyPatch(ctx context.Context, matchID string, patch match.Patch) (bool, error) {
	updated, err := r.next.ApplyPatch(ctx, matchID, patch)
	if err == nil && updated {
		r.cache.DeletePrefix(ctx, "match:")
	}
	return updated, err
}

func (r *MatchRepository) MarkCompleted(ctx context.Context, matchIDs []string) (int, error) {
	count, err := r.next.MarkCompleted(ctx, matchIDs)
	if err == nil && count > 0 {
		r.cache.DeletePrefix(ctx, "match:")
	}
	return count, err
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	key := "match:id:" + matchID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.ListFilter) ([]match.Match, error) {
	key := "match:list:" + string(filter.Status) + ":" + strconv.Itoa(filter.Limit)
	return r.loadList(ctx, key, func(ctx context.Context) ([]match.Match, error) {
		return r.next.List(ctx, filter)
	})
}

// Reconciliation reads bypass the cache.

func (r *MatchRepository) ListActive(ctx context.Context) ([]match.Match, error) {
	return r.next.ListActive(ctx)
}

func (r *MatchRepository) ListActiveScheduledBefore(ctx context.Context, cutoff time.Time) ([]match.Match, error) {
	return r.next.ListActiveScheduledBefore(ctx, cutoff)
}

func (r *MatchRepository) ListScheduledSince(ctx context.Context, since time.Time) ([]match.Match, error) {
	return r.next.ListScheduledSince(ctx, since)
}

func (r *MatchRepository) loadList(ctx context.Context, key string, load func(context.Context) ([]match.Match, error)) ([]match.Match, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

type OddsRepository struct {
	next  odds.Repository
	cache *basecache.Store
}

func NewOddsRepository(next odds.Repository, cache *basecache.Store) *OddsRepository {
	return &OddsRepository{next: next, cache: cache}
}

func (r *OddsRepository) ResetInSheet(ctx context.Context) (int64, error) {
	count, err := r.next.ResetInSheet(ctx)
	if err == nil && count > 0 {
		r.cache.DeletePrefix(ctx, "odds:")
	}
	return count, err
}

func (r *OddsRepository) Upsert(ctx context.Context, item odds.Odds) (odds.Odds, error) {
	out, err := r.next.Upsert(ctx, item)
	if err == nil {
		r.cache.DeletePrefix(ctx, "odds:")
	}
	return out, err
}

func (r *OddsRepository) MarkCompleted(ctx context.Context, matchIDs []string) (int, error) {
	count, err := r.next.MarkCompleted(ctx, matchIDs)
	if err == nil && count > 0 {
		r.cache.DeletePrefix(ctx, "odds:")
	}
	return count, err
}

func (r *OddsRepository) GetByMatchID(ctx context.Context, matchID string) (odds.Odds, bool, error) {
	key := "odds:match:" + matchID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByMatchID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedOddsByMatch{value: item, exists: exists}, nil
	})
	if err != nil {
		return odds.Odds{}, false, err
	}

	cached, _ := v.(cachedOddsByMatch)
	return cached.value, cached.exists, nil
}

func (r *OddsRepository) List(ctx context.Context, filter odds.ListFilter) ([]odds.Odds, error) {
	key := "odds:list:" + strconv.FormatBool(filter.InSheetOnly) + ":" + strconv.Itoa(filter.Limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]odds.Odds(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]odds.Odds)
	return append([]odds.Odds(nil), items...), nil
}

type cachedOddsByMatch struct {
	value  odds.Odds
	exists bool
}
