package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
)

const maxListLimit = 500

type MatchDetail struct {
	Match   match.Match
	Odds    *odds.Odds
	Mapping *matchmapping.Mapping
}

// MatchQueryService is the read side over reconciled state.
type MatchQueryService struct {
	matchRepo   match.Repository
	oddsRepo    odds.Repository
	mappingRepo matchmapping.Repository
}

func NewMatchQueryService(matchRepo match.Repository, oddsRepo odds.Repository, mappingRepo matchmapping.Repository) *MatchQueryService {
	return &MatchQueryService{
		matchRepo:   matchRepo,
		oddsRepo:    oddsRepo,
		mappingRepo: mappingRepo,
	}
}

func (s *MatchQueryService) ListMatches(ctx context.Context, filter match.ListFilter) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.ListMatches")
	defer span.End()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	filter.Limit = clampLimit(filter.Limit)

	items, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *MatchQueryService) ListLiveMatches(ctx context.Context) ([]match.Match, error) {
	return s.ListMatches(ctx, match.ListFilter{Status: match.StatusLive})
}

func (s *MatchQueryService) GetMatchDetail(ctx context.Context, matchID string) (MatchDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.GetMatchDetail")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchDetail{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return MatchDetail{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return MatchDetail{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	detail := MatchDetail{Match: item}
	quote, exists, err := s.oddsRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return MatchDetail{}, fmt.Errorf("get odds: %w", err)
	}
	if exists {
		detail.Odds = &quote
	}

	if s.mappingRepo != nil {
		mapping, exists, err := s.mappingRepo.GetByOddsMatchID(ctx, matchID)
		if err != nil {
			return MatchDetail{}, fmt.Errorf("get match mapping: %w", err)
		}
		if exists {
			detail.Mapping = &mapping
		}
	}

	return detail, nil
}

func (s *MatchQueryService) ListOdds(ctx context.Context, filter odds.ListFilter) ([]odds.Odds, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.ListOdds")
	defer span.End()

	filter.Limit = clampLimit(filter.Limit)
	items, err := s.oddsRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list odds: %w", err)
	}
	return items, nil
}

func (s *MatchQueryService) GetOdds(ctx context.Context, matchID string) (odds.Odds, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.GetOdds")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return odds.Odds{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.oddsRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return odds.Odds{}, fmt.Errorf("get odds: %w", err)
	}
	if !exists {
		return odds.Odds{}, fmt.Errorf("%w: odds for match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
