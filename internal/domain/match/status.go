package match

import (
	"strings"
	"time"
)

// StatusRules infers a match lifecycle status from the feed status and the
// scheduled kickoff.
type StatusRules struct {
	// PastBuffer is how long after kickoff a match without a terminal
	// signal is still considered running.
	PastBuffer time.Duration
	// FutureBuffer is the window before kickoff in which a match is
	// treated as about to start.
	FutureBuffer time.Duration
	// Location decides calendar day boundaries.
	Location *time.Location
}

func DefaultStatusRules(loc *time.Location) StatusRules {
	if loc == nil {
		loc = time.UTC
	}
	return StatusRules{
		PastBuffer:   4 * time.Hour,
		FutureBuffer: 15 * time.Minute,
		Location:     loc,
	}
}

// Normalize applies, in order:
//  1. no scheduled time -> scheduled
//  2. scheduled on an earlier calendar day and already past -> completed
//  3. feed says live -> live when scheduled today, else completed
//  4. feed says completed -> completed
//  5. more than PastBuffer after kickoff -> completed, else scheduled
func (r StatusRules) Normalize(feedStatus string, scheduledAt *time.Time, now time.Time) Status {
	if scheduledAt == nil || scheduledAt.IsZero() {
		return StatusScheduled
	}

	loc := r.location()
	kickoff := scheduledAt.In(loc)
	now = now.In(loc)
	today := StartOfDay(now, loc)

	if kickoff.Before(today) && kickoff.Before(now) {
		return StatusCompleted
	}

	switch strings.ToLower(strings.TrimSpace(feedStatus)) {
	case string(StatusLive):
		if sameDay(kickoff, now) {
			return StatusLive
		}
		return StatusCompleted
	case string(StatusCompleted):
		return StatusCompleted
	}

	if now.Sub(kickoff) > r.PastBuffer {
		return StatusCompleted
	}
	if kickoff.Sub(now) > r.FutureBuffer {
		return StatusScheduled
	}
	// Inside the kickoff window with no live signal yet.
	return StatusScheduled
}

// StaleCutoff is the end of yesterday: anything scheduled before it and not
// completed is stale.
func (r StatusRules) StaleCutoff(now time.Time) time.Time {
	return StartOfDay(now, r.location())
}

func (r StatusRules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
