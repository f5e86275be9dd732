package postgres

import (
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
)

type oddsTableModel struct {
	MatchID     string     `db:"match_id"`
	HomeTeam    string     `db:"home_team"`
	AwayTeam    string     `db:"away_team"`
	HomeOdds    float64    `db:"home_odds"`
	AwayOdds    float64    `db:"away_odds"`
	Bookmaker   string     `db:"bookmaker"`
	ScheduledAt *time.Time `db:"scheduled_at"`
	Status      string     `db:"status"`
	LastUpdated time.Time  `db:"last_updated"`
	IsInSheet   bool       `db:"is_in_sheet"`
}

var oddsColumns = []string{
	"match_id",
	"home_team",
	"away_team",
	"home_odds",
	"away_odds",
	"bookmaker",
	"scheduled_at",
	"status",
	"last_updated",
	"is_in_sheet",
}

func newOddsTableModel(item odds.Odds) oddsTableModel {
	return oddsTableModel{
		MatchID:     item.MatchID,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		HomeOdds:    item.HomeOdds,
		AwayOdds:    item.AwayOdds,
		Bookmaker:   item.Bookmaker,
		ScheduledAt: utcTime(item.ScheduledAt),
		Status:      item.Status,
		LastUpdated: item.LastUpdated.UTC(),
		IsInSheet:   item.IsInSheet,
	}
}

func (m oddsTableModel) toDomain() odds.Odds {
	return odds.Odds{
		MatchID:     m.MatchID,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		HomeOdds:    m.HomeOdds,
		AwayOdds:    m.AwayOdds,
		Bookmaker:   m.Bookmaker,
		ScheduledAt: utcTime(m.ScheduledAt),
		Status:      m.Status,
		LastUpdated: m.LastUpdated.UTC(),
		IsInSheet:   m.IsInSheet,
	}
}
