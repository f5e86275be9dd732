package match

import (
	"testing"
	"time"
)

func TestCanWrite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field  Field
		source Source
		want   bool
	}{
		{FieldStatus, SourceFeed, true},
		{FieldStatus, SourceLifecycle, true},
		{FieldStatus, SourceProvider, false},
		{FieldVenue, SourceProvider, true},
		{FieldVenue, SourceFeed, false},
		{FieldScore, SourceProvider, true},
		{FieldTeams, SourceFeed, false},
		{FieldScheduledAt, SourceProvider, false},
	}
	for _, tc := range cases {
		if got := CanWrite(tc.field, tc.source); got != tc.want {
			t.Fatalf("CanWrite(%s, %s)=%v, want %v", tc.field, tc.source, got, tc.want)
		}
	}
}

func TestPatchFor_ProviderNeverTouchesStatus(t *testing.T) {
	t.Parallel()

	live := StatusLive
	venue := "Wankhede Stadium"
	home := "182/4"
	kickoff := time.Date(2025, 4, 20, 14, 0, 0, 0, time.UTC)

	patch := Patch{
		Status:      &live,
		ScheduledAt: &kickoff,
		Venue:       &venue,
		HomeScore:   &home,
	}.For(SourceProvider)

	if patch.Status != nil || patch.ScheduledAt != nil {
		t.Fatalf("provider patch must not carry feed-owned fields: %+v", patch)
	}
	if patch.Venue == nil || *patch.Venue != venue {
		t.Fatalf("expected venue to survive, got %+v", patch.Venue)
	}
	if patch.HomeScore == nil || *patch.HomeScore != home {
		t.Fatalf("expected score to survive, got %+v", patch.HomeScore)
	}
}

func TestPatchApply(t *testing.T) {
	t.Parallel()

	completed := StatusCompleted
	result := "Mumbai Indians won by 5 wickets"
	m := Match{MatchID: "match_A_B", HomeTeam: "A", AwayTeam: "B", Status: StatusLive, Venue: UnknownValue}

	out := Patch{Status: &completed, Result: &result}.Apply(m)
	if out.Status != StatusCompleted || out.Result != result {
		t.Fatalf("unexpected patched match: %+v", out)
	}
	if out.Venue != UnknownValue || out.HomeTeam != "A" {
		t.Fatalf("patch changed untouched fields: %+v", out)
	}
	if (Patch{}).IsEmpty() != true {
		t.Fatalf("expected zero patch to be empty")
	}
}
