package sportradar

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

type summariesEnvelope struct {
	Summaries []summary `json:"summaries"`
}

// scheduleEnvelope covers both the summaries shape and the older
// sport_events shape of the daily schedule endpoint.
type scheduleEnvelope struct {
	Summaries   []summary    `json:"summaries"`
	SportEvents []sportEvent `json:"sport_events"`
}

type summary struct {
	SportEvent       sportEvent       `json:"sport_event"`
	SportEventStatus sportEventStatus `json:"sport_event_status"`
}

type sportEvent struct {
	ID                string             `json:"id"`
	Scheduled         string             `json:"scheduled"`
	StartTime         string             `json:"start_time"`
	Tournament        *namedRef          `json:"tournament"`
	SportEventContext *sportEventContext `json:"sport_event_context"`
	Competitors       []competitor       `json:"competitors"`
	Venue             *venue             `json:"venue"`
}

type sportEventContext struct {
	Competition *namedRef `json:"competition"`
	Season      *namedRef `json:"season"`
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type competitor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Qualifier    string `json:"qualifier"`
}

type venue struct {
	Name     string `json:"name"`
	CityName string `json:"city_name"`
}

type sportEventStatus struct {
	Status       string        `json:"status"`
	MatchStatus  string        `json:"match_status"`
	HomeScore    *int          `json:"home_score"`
	AwayScore    *int          `json:"away_score"`
	DisplayScore string        `json:"display_score"`
	MatchResult  string        `json:"match_result"`
	WinnerID     string        `json:"winner_id"`
	PeriodScores []periodScore `json:"period_scores"`
}

type periodScore struct {
	Number      int  `json:"number"`
	HomeScore   *int `json:"home_score"`
	AwayScore   *int `json:"away_score"`
	HomeWickets *int `json:"home_wickets"`
	AwayWickets *int `json:"away_wickets"`
}

func mapSummaries(items []summary) []usecase.ExternalMatch {
	out := make([]usecase.ExternalMatch, 0, len(items))
	for _, item := range items {
		mapped := mapSummary(item)
		if mapped.HomeTeam == "" || mapped.AwayTeam == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

// mapSummary fills every optional field the provider omitted with "unknown".
func mapSummary(item summary) usecase.ExternalMatch {
	event := item.SportEvent
	status := item.SportEventStatus

	home, away := resolveCompetitors(event.Competitors)
	return usecase.ExternalMatch{
		ProviderID:  strings.TrimSpace(event.ID),
		HomeTeam:    home.Name,
		AwayTeam:    away.Name,
		ScheduledAt: parseProviderTime(firstNonEmpty(event.Scheduled, event.StartTime)),
		Status:      mapStatus(status.Status, status.MatchStatus),
		Venue:       orUnknown(venueName(event.Venue)),
		Competition: orUnknown(competitionName(event)),
		HomeScore:   orUnknown(sideScore(status, true)),
		AwayScore:   orUnknown(sideScore(status, false)),
		Result:      orUnknown(resultText(status, home, away)),
	}
}

func resolveCompetitors(items []competitor) (competitor, competitor) {
	homeIdx, awayIdx := -1, -1
	for i, item := range items {
		switch strings.ToLower(strings.TrimSpace(item.Qualifier)) {
		case "home":
			homeIdx = i
		case "away":
			awayIdx = i
		}
	}
	// Without qualifiers, list order is home then away. With one qualifier,
	// the other side is the first remaining competitor.
	if homeIdx < 0 && awayIdx < 0 {
		homeIdx, awayIdx = 0, 1
	}
	if homeIdx < 0 {
		homeIdx = firstOther(len(items), awayIdx)
	}
	if awayIdx < 0 {
		awayIdx = firstOther(len(items), homeIdx)
	}

	var home, away competitor
	if homeIdx >= 0 && homeIdx < len(items) {
		home = items[homeIdx]
	}
	if awayIdx >= 0 && awayIdx < len(items) {
		away = items[awayIdx]
	}
	home.Name = strings.TrimSpace(home.Name)
	away.Name = strings.TrimSpace(away.Name)
	return home, away
}

func firstOther(n, taken int) int {
	for i := 0; i < n; i++ {
		if i != taken {
			return i
		}
	}
	return -1
}

func mapStatus(values ...string) string {
	for _, value := range values {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "not_started", "scheduled", "delayed", "postponed":
			return string(match.StatusScheduled)
		case "live", "started", "interrupted", "inning_break", "drinks", "lunch", "tea", "stumps":
			return string(match.StatusLive)
		case "closed", "ended", "complete", "completed", "abandoned", "cancelled", "canceled":
			return string(match.StatusCompleted)
		}
	}
	return match.UnknownValue
}

func venueName(v *venue) string {
	if v == nil {
		return ""
	}
	name := strings.TrimSpace(v.Name)
	city := strings.TrimSpace(v.CityName)
	if name != "" && city != "" {
		return name + ", " + city
	}
	return firstNonEmpty(name, city)
}

func competitionName(event sportEvent) string {
	if event.SportEventContext != nil && event.SportEventContext.Competition != nil {
		if name := strings.TrimSpace(event.SportEventContext.Competition.Name); name != "" {
			return name
		}
	}
	if event.Tournament != nil {
		return strings.TrimSpace(event.Tournament.Name)
	}
	return ""
}

// sideScore renders the latest innings of one side as runs/wickets.
func sideScore(status sportEventStatus, home bool) string {
	for i := len(status.PeriodScores) - 1; i >= 0; i-- {
		period := status.PeriodScores[i]
		runs, wickets := period.AwayScore, period.AwayWickets
		if home {
			runs, wickets = period.HomeScore, period.HomeWickets
		}
		if runs == nil {
			continue
		}
		if wickets == nil {
			return fmt.Sprintf("%d", *runs)
		}
		return fmt.Sprintf("%d/%d", *runs, *wickets)
	}

	score := status.AwayScore
	if home {
		score = status.HomeScore
	}
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%d", *score)
}

func resultText(status sportEventStatus, home, away competitor) string {
	if result := strings.TrimSpace(status.MatchResult); result != "" {
		return result
	}
	switch strings.TrimSpace(status.WinnerID) {
	case "":
		return ""
	case home.ID:
		return home.Name + " won"
	case away.ID:
		return away.Name + " won"
	default:
		return ""
	}
}

func parseProviderTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return match.UnknownValue
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
