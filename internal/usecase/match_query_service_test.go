package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/cricket-odds/internal/mocks/domain/match"
	oddsmock "github.com/riskibarqy/cricket-odds/internal/mocks/domain/odds"
	"github.com/stretchr/testify/mock"
)

func newTestQueryService() *MatchQueryService {
	kickoff := time.Date(2026, time.April, 10, 14, 0, 0, 0, time.UTC)
	matches := memory.NewMatchRepository(
		match.Match{MatchID: "m-live", HomeTeam: "India", AwayTeam: "Australia", ScheduledAt: &kickoff, Status: match.StatusLive},
		match.Match{MatchID: "m-next", HomeTeam: "England", AwayTeam: "Ireland", ScheduledAt: timePtr(kickoff.Add(24 * time.Hour)), Status: match.StatusScheduled},
	)
	quotes := memory.NewOddsRepository(
		odds.Odds{MatchID: "m-live", HomeOdds: 1.7, AwayOdds: 2.2, IsInSheet: true},
		odds.Odds{MatchID: "m-old", HomeOdds: 1.5, AwayOdds: 2.5},
	)
	mappings := memory.NewMatchMappingRepository(matchmapping.Mapping{OddsMatchID: "m-live", SportradarMatchID: "sr:match:1"})
	return NewMatchQueryService(matches, quotes, mappings)
}

func TestMatchQueryService_ListMatches(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService()
	live, err := svc.ListLiveMatches(context.Background())
	if err != nil {
		t.Fatalf("list live: %v", err)
	}
	if len(live) != 1 || live[0].MatchID != "m-live" {
		t.Fatalf("unexpected live matches: %+v", live)
	}

	if _, err := svc.ListMatches(context.Background(), match.ListFilter{Status: "abandoned"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestMatchQueryService_ListMatches_ClampsLimitUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("List", mock.Anything, match.ListFilter{Limit: maxListLimit}).
		Return([]match.Match{}, nil).
		Once()

	svc := NewMatchQueryService(matchRepo, oddsmock.NewRepository(t), nil)
	if _, err := svc.ListMatches(context.Background(), match.ListFilter{Limit: 10_000}); err != nil {
		t.Fatalf("list matches: %v", err)
	}
}

func TestMatchQueryService_GetMatchDetail(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService()
	detail, err := svc.GetMatchDetail(context.Background(), " m-live ")
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if detail.Odds == nil || detail.Odds.HomeOdds != 1.7 {
		t.Fatalf("expected odds in detail, got %+v", detail.Odds)
	}
	if detail.Mapping == nil || detail.Mapping.SportradarMatchID != "sr:match:1" {
		t.Fatalf("expected mapping in detail, got %+v", detail.Mapping)
	}

	next, err := svc.GetMatchDetail(context.Background(), "m-next")
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if next.Odds != nil || next.Mapping != nil {
		t.Fatalf("expected no odds or mapping for m-next")
	}

	if _, err := svc.GetMatchDetail(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetMatchDetail(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchQueryService_Odds(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService()
	inSheet, err := svc.ListOdds(context.Background(), odds.ListFilter{InSheetOnly: true})
	if err != nil {
		t.Fatalf("list odds: %v", err)
	}
	if len(inSheet) != 1 || inSheet[0].MatchID != "m-live" {
		t.Fatalf("unexpected in-sheet odds: %+v", inSheet)
	}

	all, _ := svc.ListOdds(context.Background(), odds.ListFilter{})
	if len(all) != 2 {
		t.Fatalf("expected all odds, got %d", len(all))
	}

	if _, err := svc.GetOdds(context.Background(), "m-next"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
