package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// UnknownValue fills provider-owned fields that have not been resolved yet.
const UnknownValue = "unknown"

// Match is the canonical record for one fixture, keyed by MatchID.
type Match struct {
	MatchID     string
	HomeTeam    string
	AwayTeam    string
	ScheduledAt *time.Time
	Status      Status
	Venue       string
	Competition string
	HomeScore   string
	AwayScore   string
	Result      string
	LastUpdated time.Time
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusCompleted:
		return true
	default:
		return false
	}
}

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	return status, status.Valid()
}

func (m Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	Status Status
	Limit  int
}
