package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

type listMatchesRequest struct {
	Status string `validate:"omitempty,oneof=scheduled live completed"`
	Limit  int    `validate:"gte=0,lte=500"`
}

type listOddsRequest struct {
	InSheet bool
	Limit   int `validate:"gte=0,lte=500"`
}

type runJobRequest struct {
	Routine string `validate:"required,oneof=odds-sync cleanup live-check mapping"`
}

type listJobRunsRequest struct {
	Routine string `validate:"required,oneof=odds-sync cleanup live-check mapping"`
	Limit   int    `validate:"gte=0,lte=200"`
}

type matchDTO struct {
	MatchID     string `json:"matchId"`
	HomeTeam    string `json:"homeTeam"`
	AwayTeam    string `json:"awayTeam"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	Status      string `json:"status"`
	Venue       string `json:"venue"`
	Competition string `json:"competition"`
	HomeScore   string `json:"homeScore,omitempty"`
	AwayScore   string `json:"awayScore,omitempty"`
	Result      string `json:"result,omitempty"`
	LastUpdated string `json:"lastUpdated"`
}

type oddsDTO struct {
	MatchID     string  `json:"matchId"`
	HomeTeam    string  `json:"homeTeam"`
	AwayTeam    string  `json:"awayTeam"`
	HomeOdds    float64 `json:"homeOdds"`
	AwayOdds    float64 `json:"awayOdds"`
	Bookmaker   string  `json:"bookmaker"`
	ScheduledAt string  `json:"scheduledAt,omitempty"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"lastUpdated"`
	IsInSheet   bool    `json:"isInSheet"`
}

type mappingDTO struct {
	OddsMatchID       string `json:"oddsMatchId"`
	SportradarMatchID string `json:"sportradarMatchId"`
	CreatedAt         string `json:"createdAt"`
}

type matchDetailDTO struct {
	Match   matchDTO    `json:"match"`
	Odds    *oddsDTO    `json:"odds,omitempty"`
	Mapping *mappingDTO `json:"mapping,omitempty"`
}

type jobRunDTO struct {
	RunID        string         `json:"runId"`
	Routine      string         `json:"routine"`
	Trigger      string         `json:"trigger"`
	Status       string         `json:"status"`
	Summary      map[string]any `json:"summary,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	OccurredAt   string         `json:"occurredAt"`
	TraceID      string         `json:"traceId,omitempty"`
}

type realtimeStatsDTO struct {
	Subscribers int `json:"subscribers"`
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		MatchID:     v.MatchID,
		HomeTeam:    v.HomeTeam,
		AwayTeam:    v.AwayTeam,
		ScheduledAt: formatOptionalTime(v.ScheduledAt),
		Status:      string(v.Status),
		Venue:       v.Venue,
		Competition: v.Competition,
		HomeScore:   v.HomeScore,
		AwayScore:   v.AwayScore,
		Result:      v.Result,
		LastUpdated: formatTime(v.LastUpdated),
	}
}

func oddsToDTO(ctx context.Context, v odds.Odds) oddsDTO {
	ctx, span := startSpan(ctx, "httpapi.oddsToDTO")
	defer span.End()

	return oddsDTO{
		MatchID:     v.MatchID,
		HomeTeam:    v.HomeTeam,
		AwayTeam:    v.AwayTeam,
		HomeOdds:    v.HomeOdds,
		AwayOdds:    v.AwayOdds,
		Bookmaker:   v.Bookmaker,
		ScheduledAt: formatOptionalTime(v.ScheduledAt),
		Status:      v.Status,
		LastUpdated: formatTime(v.LastUpdated),
		IsInSheet:   v.IsInSheet,
	}
}

func mappingToDTO(v matchmapping.Mapping) mappingDTO {
	return mappingDTO{
		OddsMatchID:       v.OddsMatchID,
		SportradarMatchID: v.SportradarMatchID,
		CreatedAt:         formatTime(v.CreatedAt),
	}
}

func matchDetailToDTO(ctx context.Context, v usecase.MatchDetail) matchDetailDTO {
	out := matchDetailDTO{Match: matchToDTO(ctx, v.Match)}
	if v.Odds != nil {
		item := oddsToDTO(ctx, *v.Odds)
		out.Odds = &item
	}
	if v.Mapping != nil {
		item := mappingToDTO(*v.Mapping)
		out.Mapping = &item
	}
	return out
}

func jobRunToDTO(ctx context.Context, v jobrun.Run) jobRunDTO {
	ctx, span := startSpan(ctx, "httpapi.jobRunToDTO")
	defer span.End()

	return jobRunDTO{
		RunID:        v.RunID,
		Routine:      v.Routine,
		Trigger:      string(v.Trigger),
		Status:       string(v.Status),
		Summary:      v.Summary,
		ErrorMessage: v.ErrorMessage,
		OccurredAt:   formatTime(v.OccurredAt),
		TraceID:      v.TraceID,
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
