package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	basecache "github.com/riskibarqy/cricket-odds/internal/platform/cache"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

const (
	defaultMappingWorkers  = 4
	defaultMappingLookback = 7 * 24 * time.Hour
	defaultScheduleTTL     = 30 * time.Minute
)

type MatchMappingConfig struct {
	Workers     int
	Lookback    time.Duration
	ScheduleTTL time.Duration
	Location    *time.Location
	Normalizer  *match.Normalizer
}

type MappingResult struct {
	Candidates int `json:"candidates"`
	Mapped     int `json:"mapped"`
	Unmapped   int `json:"unmapped"`
	Enriched   int `json:"enriched"`
	Failed     int `json:"failed"`
	Workers    int `json:"workers"`
}

func (r MappingResult) Summary() map[string]any {
	return map[string]any{
		"candidates": r.Candidates,
		"mapped":     r.Mapped,
		"unmapped":   r.Unmapped,
		"enriched":   r.Enriched,
		"failed":     r.Failed,
		"workers":    r.Workers,
	}
}

type mappingOutcome int

const (
	mappingOutcomeUnmapped mappingOutcome = iota
	mappingOutcomeMapped
	mappingOutcomeFailed
)

// MatchMappingService links stored matches to provider match ids and
// enriches them once linked. Unresolved matches are retried next pass.
type MatchMappingService struct {
	provider    MatchDataProvider
	matchRepo   match.Repository
	mappingRepo matchmapping.Repository
	invalidator ReadCacheInvalidator
	schedules   *basecache.Store
	cfg         MatchMappingConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewMatchMappingService(
	provider MatchDataProvider,
	matchRepo match.Repository,
	mappingRepo matchmapping.Repository,
	invalidator ReadCacheInvalidator,
	cfg MatchMappingConfig,
	logger *logging.Logger,
) *MatchMappingService {
	if invalidator == nil {
		invalidator = noopReadCacheInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultMappingWorkers
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultMappingLookback
	}
	if cfg.ScheduleTTL <= 0 {
		cfg.ScheduleTTL = defaultScheduleTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = match.NewNormalizer(match.DefaultSynonyms())
	}

	return &MatchMappingService{
		provider:    provider,
		matchRepo:   matchRepo,
		mappingRepo: mappingRepo,
		invalidator: invalidator,
		schedules:   basecache.NewStore(cfg.ScheduleTTL),
		cfg:         cfg,
		logger:      logger.Named("mapping"),
		now:         time.Now,
	}
}

func (s *MatchMappingService) MapProviderMatches(ctx context.Context) (MappingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchMappingService.MapProviderMatches")
	defer span.End()

	if s.provider == nil {
		return MappingResult{}, fmt.Errorf("%w: match data provider is disabled", ErrDependencyUnavailable)
	}

	now := s.now()
	candidates, err := s.unmappedCandidates(ctx, now)
	if err != nil {
		return MappingResult{}, err
	}

	result := MappingResult{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	schedules := s.loadSchedules(ctx, candidates, now)

	workerCount := min(s.cfg.Workers, len(candidates))
	result.Workers = workerCount
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mapped, unmapped, enriched, failed atomic.Int32
	var workers sync.WaitGroup
	for _, item := range candidates {
		dateKey := s.dateKey(item, now)
		schedule, ok := schedules[dateKey]
		if !ok {
			failed.Add(1)
			continue
		}

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome, didEnrich := s.resolveOne(ctx, item, schedule, now)
			switch outcome {
			case mappingOutcomeMapped:
				mapped.Add(1)
			case mappingOutcomeFailed:
				failed.Add(1)
			default:
				unmapped.Add(1)
			}
			if didEnrich {
				enriched.Add(1)
			}
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit mapping task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Mapped = int(mapped.Load())
	result.Unmapped = int(unmapped.Load())
	result.Enriched = int(enriched.Load())
	result.Failed = int(failed.Load())

	if result.Enriched > 0 {
		s.invalidator.Invalidate(ctx)
	}
	s.logger.InfoContext(ctx, "mapping pass finished",
		"candidates", result.Candidates,
		"mapped", result.Mapped,
		"unmapped", result.Unmapped,
		"enriched", result.Enriched,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *MatchMappingService) unmappedCandidates(ctx context.Context, now time.Time) ([]match.Match, error) {
	items, err := s.matchRepo.ListScheduledSince(ctx, now.Add(-s.cfg.Lookback))
	if err != nil {
		return nil, fmt.Errorf("list mapping candidates: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MatchID)
	}
	existing, err := s.mappingRepo.ListByOddsMatchIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list existing mappings: %w", err)
	}

	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		if _, ok := existing[item.MatchID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// loadSchedules fetches each candidate date once. Dates whose schedule could
// not be fetched are absent from the result.
func (s *MatchMappingService) loadSchedules(ctx context.Context, candidates []match.Match, now time.Time) map[string][]ExternalMatch {
	dates := make(map[string]time.Time)
	for _, item := range candidates {
		key := s.dateKey(item, now)
		if _, ok := dates[key]; ok {
			continue
		}
		day := now
		if item.ScheduledAt != nil {
			day = *item.ScheduledAt
		}
		dates[key] = match.StartOfDay(day, s.cfg.Location)
	}

	keys := make([]string, 0, len(dates))
	for key := range dates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string][]ExternalMatch, len(keys))
	for _, key := range keys {
		date := dates[key]
		value, err := s.schedules.GetOrLoad(ctx, "sportradar:schedule:"+key, func(ctx context.Context) (any, error) {
			return s.provider.FetchScheduleByDate(ctx, date)
		})
		if err != nil {
			s.logger.WarnContext(ctx, "fetch provider schedule failed", "date", key, "error", err)
			continue
		}
		items, _ := value.([]ExternalMatch)
		out[key] = items
	}
	return out
}

func (s *MatchMappingService) resolveOne(ctx context.Context, item match.Match, schedule []ExternalMatch, now time.Time) (mappingOutcome, bool) {
	var (
		found   ExternalMatch
		swapped bool
		ok      bool
	)
	for _, candidate := range schedule {
		if matched, isSwapped := s.cfg.Normalizer.SameFixture(item.HomeTeam, item.AwayTeam, candidate.HomeTeam, candidate.AwayTeam); matched {
			found, swapped, ok = candidate, isSwapped, true
			break
		}
	}
	if !ok || found.ProviderID == "" {
		return mappingOutcomeUnmapped, false
	}

	created, err := s.mappingRepo.Create(ctx, matchmapping.Mapping{
		OddsMatchID:       item.MatchID,
		SportradarMatchID: found.ProviderID,
		CreatedAt:         now,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "create match mapping failed",
			"match_id", item.MatchID,
			"provider_id", found.ProviderID,
			"error", err,
		)
		return mappingOutcomeFailed, false
	}
	if !created {
		return mappingOutcomeMapped, false
	}

	return mappingOutcomeMapped, s.enrich(ctx, item.MatchID, found.ProviderID, swapped)
}

// enrich is best-effort; a failed summary lookup keeps the mapping.
func (s *MatchMappingService) enrich(ctx context.Context, matchID, providerID string, swapped bool) bool {
	summary, err := s.provider.FetchMatchSummary(ctx, providerID)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch match summary failed",
			"match_id", matchID,
			"provider_id", providerID,
			"error", err,
		)
		return false
	}

	patch := providerPatch(summary, swapped).For(match.SourceProvider)
	if patch.IsEmpty() {
		return false
	}
	updated, err := s.matchRepo.ApplyPatch(ctx, matchID, patch)
	if err != nil {
		s.logger.WarnContext(ctx, "apply match summary failed", "match_id", matchID, "error", err)
		return false
	}
	return updated
}

func (s *MatchMappingService) dateKey(item match.Match, now time.Time) string {
	day := now
	if item.ScheduledAt != nil {
		day = *item.ScheduledAt
	}
	return day.In(s.cfg.Location).Format(time.DateOnly)
}
