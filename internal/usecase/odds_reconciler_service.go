package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

var errInvalidOddsRow = errors.New("invalid odds row")

type ReconcilerConfig struct {
	StatusRules match.StatusRules
	Normalizer  *match.Normalizer
}

type SyncResult struct {
	Rows     int `json:"rows"`
	Groups   int `json:"groups"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Vanished int `json:"vanished"`
}

func (r SyncResult) Summary() map[string]any {
	return map[string]any{
		"rows":     r.Rows,
		"groups":   r.Groups,
		"upserted": r.Upserted,
		"skipped":  r.Skipped,
		"failed":   r.Failed,
		"vanished": r.Vanished,
	}
}

type CleanupResult struct {
	Cutoff    time.Time `json:"cutoff"`
	Completed int       `json:"completed"`
}

func (r CleanupResult) Summary() map[string]any {
	return map[string]any{
		"cutoff":    r.Cutoff.Format(time.RFC3339),
		"completed": r.Completed,
	}
}

// ReconcilerService turns feed rows into Match and Odds state.
type ReconcilerService struct {
	feed        OddsFeedProvider
	matchRepo   match.Repository
	oddsRepo    odds.Repository
	notifier    OddsNotifier
	invalidator ReadCacheInvalidator
	rules       match.StatusRules
	normalizer  *match.Normalizer
	logger      *logging.Logger
	now         func() time.Time
}

func NewReconcilerService(
	feed OddsFeedProvider,
	matchRepo match.Repository,
	oddsRepo odds.Repository,
	notifier OddsNotifier,
	invalidator ReadCacheInvalidator,
	cfg ReconcilerConfig,
	logger *logging.Logger,
) *ReconcilerService {
	if notifier == nil {
		notifier = NewNoopOddsNotifier()
	}
	if invalidator == nil {
		invalidator = noopReadCacheInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StatusRules.Location == nil {
		cfg.StatusRules = match.DefaultStatusRules(time.UTC)
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = match.NewNormalizer(match.DefaultSynonyms())
	}

	return &ReconcilerService{
		feed:        feed,
		matchRepo:   matchRepo,
		oddsRepo:    oddsRepo,
		notifier:    notifier,
		invalidator: invalidator,
		rules:       cfg.StatusRules,
		normalizer:  cfg.Normalizer,
		logger:      logger.Named("reconciler"),
		now:         time.Now,
	}
}

// SyncOdds runs one reconciliation pass: fetch, reset in-sheet flags,
// dedupe, upsert, terminate vanished matches, notify.
func (s *ReconcilerService) SyncOdds(ctx context.Context) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.SyncOdds")
	defer span.End()

	if s.feed == nil {
		return SyncResult{}, fmt.Errorf("%w: odds feed is not configured", ErrFeedConfiguration)
	}

	rows, err := s.feed.FetchOddsRows(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch odds feed: %w", err)
	}

	now := s.now()
	result := SyncResult{Rows: len(rows)}

	if _, err := s.oddsRepo.ResetInSheet(ctx); err != nil {
		return result, fmt.Errorf("reset in-sheet flags: %w", err)
	}

	groups := s.groupRows(rows)
	result.Groups = len(groups)

	seen := make(map[string]struct{}, len(groups))
	upserted := make([]odds.Odds, 0, len(groups))
	for _, row := range groups {
		matchID := match.GenerateMatchKey(row.HomeTeam, row.AwayTeam)

		record, err := s.reconcileRow(ctx, matchID, row, now)
		if err != nil {
			if errors.Is(err, errInvalidOddsRow) {
				result.Skipped++
				s.logger.WarnContext(ctx, "odds row dropped",
					"row", row.RowNumber,
					"match_id", matchID,
					"error", err,
				)
				continue
			}
			result.Failed++
			s.logger.ErrorContext(ctx, "reconcile odds row failed",
				"row", row.RowNumber,
				"match_id", matchID,
				"error", err,
			)
			continue
		}
		// Only stored rows shield a match from completion.
		seen[matchID] = struct{}{}
		upserted = append(upserted, record)
	}
	result.Upserted = len(upserted)

	vanished, vanishErr := s.completeVanished(ctx, seen)
	result.Vanished = vanished

	s.invalidator.Invalidate(ctx)
	s.notify(ctx, upserted)

	if vanishErr != nil {
		return result, fmt.Errorf("complete vanished matches: %w", vanishErr)
	}

	s.logger.InfoContext(ctx, "odds sync pass finished",
		"rows", result.Rows,
		"groups", result.Groups,
		"upserted", result.Upserted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"vanished", result.Vanished,
	)
	return result, nil
}

// CleanupStaleMatches completes every unfinished match scheduled before the
// start of today.
func (s *ReconcilerService) CleanupStaleMatches(ctx context.Context) (CleanupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.CleanupStaleMatches")
	defer span.End()

	cutoff := s.rules.StaleCutoff(s.now())
	result := CleanupResult{Cutoff: cutoff}

	stale, err := s.matchRepo.ListActiveScheduledBefore(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("list stale matches: %w", err)
	}
	if len(stale) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(stale))
	for _, item := range stale {
		ids = append(ids, item.MatchID)
	}

	completed, err := s.completeMatches(ctx, ids)
	result.Completed = completed
	if err != nil {
		return result, err
	}

	s.invalidator.Invalidate(ctx)
	s.logger.InfoContext(ctx, "stale matches completed", "count", completed, "cutoff", cutoff)
	return result, nil
}

// groupRows keeps the first row per normalized team pair, in feed order.
func (s *ReconcilerService) groupRows(rows []ExternalOddsRow) []ExternalOddsRow {
	out := make([]ExternalOddsRow, 0, len(rows))
	index := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := s.normalizer.PairKey(row.HomeTeam, row.AwayTeam)
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func (s *ReconcilerService) reconcileRow(ctx context.Context, matchID string, row ExternalOddsRow, now time.Time) (odds.Odds, error) {
	if !odds.ValidPrice(row.HomeOdds) || !odds.ValidPrice(row.AwayOdds) {
		return odds.Odds{}, fmt.Errorf("%w: home=%v away=%v", errInvalidOddsRow, row.HomeOdds, row.AwayOdds)
	}
	if strings.TrimSpace(row.HomeTeam) == "" || strings.TrimSpace(row.AwayTeam) == "" {
		return odds.Odds{}, fmt.Errorf("%w: missing team name", errInvalidOddsRow)
	}

	status := s.rules.Normalize(row.Status, row.ScheduledAt, now)
	stored, err := s.matchRepo.Upsert(ctx, match.Match{
		MatchID:     matchID,
		HomeTeam:    strings.TrimSpace(row.HomeTeam),
		AwayTeam:    strings.TrimSpace(row.AwayTeam),
		ScheduledAt: row.ScheduledAt,
		Status:      status,
		Venue:       match.UnknownValue,
		Competition: match.UnknownValue,
		LastUpdated: now,
	})
	if err != nil {
		return odds.Odds{}, fmt.Errorf("upsert match: %w", err)
	}

	record, err := s.oddsRepo.Upsert(ctx, odds.Odds{
		MatchID:     matchID,
		HomeTeam:    stored.HomeTeam,
		AwayTeam:    stored.AwayTeam,
		HomeOdds:    row.HomeOdds,
		AwayOdds:    row.AwayOdds,
		Bookmaker:   strings.TrimSpace(row.Bookmaker),
		ScheduledAt: row.ScheduledAt,
		Status:      strings.TrimSpace(row.Status),
		LastUpdated: now,
		IsInSheet:   true,
	})
	if err != nil {
		return odds.Odds{}, fmt.Errorf("upsert odds: %w", err)
	}

	return record, nil
}

func (s *ReconcilerService) completeVanished(ctx context.Context, seen map[string]struct{}) (int, error) {
	active, err := s.matchRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active matches: %w", err)
	}

	vanished := make([]string, 0)
	for _, item := range active {
		if _, ok := seen[item.MatchID]; ok {
			continue
		}
		vanished = append(vanished, item.MatchID)
	}
	if len(vanished) == 0 {
		return 0, nil
	}

	s.logger.InfoContext(ctx, "matches vanished from feed", "count", len(vanished), "match_ids", vanished)
	return s.completeMatches(ctx, vanished)
}

func (s *ReconcilerService) completeMatches(ctx context.Context, matchIDs []string) (int, error) {
	completed, err := s.matchRepo.MarkCompleted(ctx, matchIDs)
	if err != nil {
		return 0, fmt.Errorf("mark matches completed: %w", err)
	}
	if _, err := s.oddsRepo.MarkCompleted(ctx, matchIDs); err != nil {
		return completed, fmt.Errorf("mark odds completed: %w", err)
	}
	return completed, nil
}

func (s *ReconcilerService) notify(ctx context.Context, records []odds.Odds) {
	if len(records) == 0 {
		return
	}
	if err := s.notifier.NotifyChanged(ctx, records); err != nil {
		s.logger.WarnContext(ctx, "notify odds subscribers failed", "records", len(records), "error", err)
	}
}
