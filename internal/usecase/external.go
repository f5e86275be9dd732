package usecase

import (
	"context"
	"time"
)

// OddsFeedProvider reads the tabular odds feed. Rows come back in feed
// order without deduplication.
type OddsFeedProvider interface {
	FetchOddsRows(ctx context.Context) ([]ExternalOddsRow, error)
}

type ExternalOddsRow struct {
	RowNumber   int
	EventName   string
	HomeTeam    string
	AwayTeam    string
	ScheduledAt *time.Time
	// DateFallback is set when the commence cell could not be parsed and
	// ScheduledAt was defaulted to the fetch time.
	DateFallback bool
	Status       string
	Bookmaker    string
	HomeOdds     float64
	AwayOdds     float64
}

// MatchDataProvider is the third-party sports data API used for live
// metadata and cross-provider mapping.
type MatchDataProvider interface {
	FetchLiveMatches(ctx context.Context) ([]ExternalMatch, error)
	FetchScheduleByDate(ctx context.Context, date time.Time) ([]ExternalMatch, error)
	FetchMatchSummary(ctx context.Context, providerMatchID string) (ExternalMatch, error)
}

// ExternalMatch is one provider fixture. Optional fields the provider did not
// send are "unknown".
type ExternalMatch struct {
	ProviderID  string
	HomeTeam    string
	AwayTeam    string
	ScheduledAt *time.Time
	Status      string
	Venue       string
	Competition string
	HomeScore   string
	AwayScore   string
	Result      string
}

// ReadCacheInvalidator drops cached query results after state changes.
type ReadCacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopReadCacheInvalidator struct{}

func (noopReadCacheInvalidator) Invalidate(context.Context) {}
