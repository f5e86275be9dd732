package match

import "time"

// Source identifies which part of the pipeline produced a write.
type Source string

const (
	SourceFeed      Source = "feed"
	SourceProvider  Source = "provider"
	SourceLifecycle Source = "lifecycle"
)

type Field string

const (
	FieldTeams       Field = "teams"
	FieldScheduledAt Field = "scheduled_at"
	FieldStatus      Field = "status"
	FieldVenue       Field = "venue"
	FieldCompetition Field = "competition"
	FieldScore       Field = "score"
	FieldResult      Field = "result"
)

type Ownership struct {
	Owner      Source
	Also       []Source
	CreateOnly bool
}

// MergePolicy records which source is authoritative for each Match field.
// The feed owns identity, kickoff and status; the provider only enriches.
var MergePolicy = map[Field]Ownership{
	FieldTeams:       {Owner: SourceFeed, CreateOnly: true},
	FieldScheduledAt: {Owner: SourceFeed},
	FieldStatus:      {Owner: SourceFeed, Also: []Source{SourceLifecycle}},
	FieldVenue:       {Owner: SourceProvider},
	FieldCompetition: {Owner: SourceProvider},
	FieldScore:       {Owner: SourceProvider},
	FieldResult:      {Owner: SourceProvider},
}

// CanWrite reports whether source may update field on an existing match.
func CanWrite(field Field, source Source) bool {
	policy, ok := MergePolicy[field]
	if !ok || policy.CreateOnly {
		return false
	}
	if policy.Owner == source {
		return true
	}
	for _, also := range policy.Also {
		if also == source {
			return true
		}
	}
	return false
}

// Patch is a field-level update for an existing match. Nil fields are left
// untouched.
type Patch struct {
	ScheduledAt *time.Time
	Status      *Status
	Venue       *string
	Competition *string
	HomeScore   *string
	AwayScore   *string
	Result      *string
}

// For drops every field source is not allowed to write.
func (p Patch) For(source Source) Patch {
	out := Patch{}
	if p.ScheduledAt != nil && CanWrite(FieldScheduledAt, source) {
		out.ScheduledAt = p.ScheduledAt
	}
	if p.Status != nil && CanWrite(FieldStatus, source) {
		out.Status = p.Status
	}
	if p.Venue != nil && CanWrite(FieldVenue, source) {
		out.Venue = p.Venue
	}
	if p.Competition != nil && CanWrite(FieldCompetition, source) {
		out.Competition = p.Competition
	}
	if CanWrite(FieldScore, source) {
		out.HomeScore = p.HomeScore
		out.AwayScore = p.AwayScore
	}
	if p.Result != nil && CanWrite(FieldResult, source) {
		out.Result = p.Result
	}
	return out
}

func (p Patch) IsEmpty() bool {
	return p.ScheduledAt == nil &&
		p.Status == nil &&
		p.Venue == nil &&
		p.Competition == nil &&
		p.HomeScore == nil &&
		p.AwayScore == nil &&
		p.Result == nil
}

// Apply writes the non-nil patch fields onto m.
func (p Patch) Apply(m Match) Match {
	if p.ScheduledAt != nil {
		scheduledAt := *p.ScheduledAt
		m.ScheduledAt = &scheduledAt
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Venue != nil {
		m.Venue = *p.Venue
	}
	if p.Competition != nil {
		m.Competition = *p.Competition
	}
	if p.HomeScore != nil {
		m.HomeScore = *p.HomeScore
	}
	if p.AwayScore != nil {
		m.AwayScore = *p.AwayScore
	}
	if p.Result != nil {
		m.Result = *p.Result
	}
	return m
}
