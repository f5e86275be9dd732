package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

type LiveCheckResult struct {
	ProviderLive int `json:"provider_live"`
	Resolved     int `json:"resolved"`
	Unresolved   int `json:"unresolved"`
	Updated      int `json:"updated"`
	Failed       int `json:"failed"`
}

func (r LiveCheckResult) Summary() map[string]any {
	return map[string]any{
		"provider_live": r.ProviderLive,
		"resolved":      r.Resolved,
		"unresolved":    r.Unresolved,
		"updated":       r.Updated,
		"failed":        r.Failed,
	}
}

// LiveCrossCheckService enriches stored matches with provider live data.
// It only writes provider-owned metadata; status stays with the feed.
type LiveCrossCheckService struct {
	provider    MatchDataProvider
	matchRepo   match.Repository
	oddsRepo    odds.Repository
	mappingRepo matchmapping.Repository
	invalidator ReadCacheInvalidator
	normalizer  *match.Normalizer
	logger      *logging.Logger
}

func NewLiveCrossCheckService(
	provider MatchDataProvider,
	matchRepo match.Repository,
	oddsRepo odds.Repository,
	mappingRepo matchmapping.Repository,
	invalidator ReadCacheInvalidator,
	normalizer *match.Normalizer,
	logger *logging.Logger,
) *LiveCrossCheckService {
	if invalidator == nil {
		invalidator = noopReadCacheInvalidator{}
	}
	if normalizer == nil {
		normalizer = match.NewNormalizer(match.DefaultSynonyms())
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveCrossCheckService{
		provider:    provider,
		matchRepo:   matchRepo,
		oddsRepo:    oddsRepo,
		mappingRepo: mappingRepo,
		invalidator: invalidator,
		normalizer:  normalizer,
		logger:      logger.Named("live-check"),
	}
}

func (s *LiveCrossCheckService) CrossCheckLive(ctx context.Context) (LiveCheckResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveCrossCheckService.CrossCheckLive")
	defer span.End()

	if s.provider == nil {
		return LiveCheckResult{}, fmt.Errorf("%w: match data provider is disabled", ErrDependencyUnavailable)
	}

	live, err := s.provider.FetchLiveMatches(ctx)
	if err != nil {
		return LiveCheckResult{}, fmt.Errorf("fetch provider live matches: %w", err)
	}

	result := LiveCheckResult{ProviderLive: len(live)}
	for _, item := range live {
		matchID, swapped, ok, err := s.resolve(ctx, item)
		if err != nil {
			result.Failed++
			s.logger.WarnContext(ctx, "resolve live match failed", "provider_id", item.ProviderID, "error", err)
			continue
		}
		if !ok {
			result.Unresolved++
			s.logger.DebugContext(ctx, "live match has no odds record",
				"provider_id", item.ProviderID,
				"home_team", item.HomeTeam,
				"away_team", item.AwayTeam,
			)
			continue
		}
		result.Resolved++

		patch := providerPatch(item, swapped).For(match.SourceProvider)
		if patch.IsEmpty() {
			continue
		}
		updated, err := s.matchRepo.ApplyPatch(ctx, matchID, patch)
		if err != nil {
			result.Failed++
			s.logger.WarnContext(ctx, "apply live metadata failed", "match_id", matchID, "error", err)
			continue
		}
		if updated {
			result.Updated++
		}
	}

	if result.Updated > 0 {
		s.invalidator.Invalidate(ctx)
	}
	return result, nil
}

// resolve maps a provider match to a stored odds match id, first by the
// generated key and then through an existing mapping.
func (s *LiveCrossCheckService) resolve(ctx context.Context, item ExternalMatch) (string, bool, bool, error) {
	direct := match.GenerateMatchKey(item.HomeTeam, item.AwayTeam)
	if _, exists, err := s.oddsRepo.GetByMatchID(ctx, direct); err != nil {
		return "", false, false, fmt.Errorf("get odds by match id: %w", err)
	} else if exists {
		return direct, false, true, nil
	}

	if s.mappingRepo == nil || strings.TrimSpace(item.ProviderID) == "" {
		return "", false, false, nil
	}
	mapping, exists, err := s.mappingRepo.GetBySportradarID(ctx, item.ProviderID)
	if err != nil {
		return "", false, false, fmt.Errorf("get mapping by provider id: %w", err)
	}
	if !exists {
		return "", false, false, nil
	}
	stored, exists, err := s.oddsRepo.GetByMatchID(ctx, mapping.OddsMatchID)
	if err != nil {
		return "", false, false, fmt.Errorf("get odds by mapped id: %w", err)
	}
	if !exists {
		return "", false, false, nil
	}

	_, swapped := s.normalizer.SameFixture(stored.HomeTeam, stored.AwayTeam, item.HomeTeam, item.AwayTeam)
	return mapping.OddsMatchID, swapped, true, nil
}

// providerPatch turns provider data into a patch. Placeholder values are
// skipped so they never overwrite known metadata. swapped flips scores when
// the provider lists the teams in reverse order.
func providerPatch(item ExternalMatch, swapped bool) match.Patch {
	patch := match.Patch{}
	if v, ok := knownValue(item.Venue); ok {
		patch.Venue = &v
	}
	if v, ok := knownValue(item.Competition); ok {
		patch.Competition = &v
	}
	home, away := item.HomeScore, item.AwayScore
	if swapped {
		home, away = away, home
	}
	if v, ok := knownValue(home); ok {
		patch.HomeScore = &v
	}
	if v, ok := knownValue(away); ok {
		patch.AwayScore = &v
	}
	if v, ok := knownValue(item.Result); ok {
		patch.Result = &v
	}
	if status, ok := match.ParseStatus(item.Status); ok {
		patch.Status = &status
	}
	if item.ScheduledAt != nil {
		scheduledAt := item.ScheduledAt.UTC().Truncate(time.Second)
		patch.ScheduledAt = &scheduledAt
	}
	return patch
}

func knownValue(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, match.UnknownValue) {
		return "", false
	}
	return v, true
}
