package odds

import (
	"math"
	"time"
)

// Odds is the latest two-way quote for one match. There is exactly one
// record per MatchID; later quotes overwrite earlier ones.
type Odds struct {
	MatchID     string
	HomeTeam    string
	AwayTeam    string
	HomeOdds    float64
	AwayOdds    float64
	Bookmaker   string
	ScheduledAt *time.Time
	// Status mirrors the feed-reported string and is independent of the
	// match lifecycle status.
	Status      string
	LastUpdated time.Time
	IsInSheet   bool
}

// StatusCompleted is forced onto odds whose match has been terminated.
const StatusCompleted = "completed"

// ValidPrice rejects NaN, infinities and non-positive decimal odds.
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func (o Odds) HasValidPrices() bool {
	return ValidPrice(o.HomeOdds) && ValidPrice(o.AwayOdds)
}

type ListFilter struct {
	InSheetOnly bool
	Limit       int
}
