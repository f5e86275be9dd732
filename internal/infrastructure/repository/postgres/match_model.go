package postgres

import (
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
)

type matchTableModel struct {
	MatchID     string     `db:"match_id"`
	HomeTeam    string     `db:"home_team"`
	AwayTeam    string     `db:"away_team"`
	ScheduledAt *time.Time `db:"scheduled_at"`
	Status      string     `db:"status"`
	Venue       string     `db:"venue"`
	Competition string     `db:"competition"`
	HomeScore   *string    `db:"home_score"`
	AwayScore   *string    `db:"away_score"`
	Result      *string    `db:"result"`
	LastUpdated time.Time  `db:"last_updated"`
}

var matchColumns = []string{
	"match_id",
	"home_team",
	"away_team",
	"scheduled_at",
	"status",
	"venue",
	"competition",
	"home_score",
	"away_score",
	"result",
	"last_updated",
}

func newMatchTableModel(item match.Match) matchTableModel {
	return matchTableModel{
		MatchID:     item.MatchID,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		ScheduledAt: utcTime(item.ScheduledAt),
		Status:      string(item.Status),
		Venue:       item.Venue,
		Competition: item.Competition,
		HomeScore:   optionalString(item.HomeScore),
		AwayScore:   optionalString(item.AwayScore),
		Result:      optionalString(item.Result),
		LastUpdated: item.LastUpdated.UTC(),
	}
}

func (m matchTableModel) toDomain() match.Match {
	out := match.Match{
		MatchID:     m.MatchID,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		Status:      match.Status(m.Status),
		Venue:       m.Venue,
		Competition: m.Competition,
		HomeScore:   derefString(m.HomeScore),
		AwayScore:   derefString(m.AwayScore),
		Result:      derefString(m.Result),
		LastUpdated: m.LastUpdated.UTC(),
	}
	out.ScheduledAt = utcTime(m.ScheduledAt)
	return out
}
