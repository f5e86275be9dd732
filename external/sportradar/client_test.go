package sportradar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/platform/resilience"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

const liveSummariesFixture = `{
  "generated_at": "2025-04-20T15:10:00+00:00",
  "summaries": [
    {
      "sport_event": {
        "id": "sr:sport_event:50001",
        "scheduled": "2025-04-20T14:00:00+00:00",
        "sport_event_context": {"competition": {"id": "sr:competition:1", "name": "Indian Premier League"}},
        "competitors": [
          {"id": "sr:competitor:1", "name": "Mumbai Indians", "qualifier": "home"},
          {"id": "sr:competitor:2", "name": "Chennai Super Kings", "qualifier": "away"}
        ],
        "venue": {"name": "Wankhede Stadium", "city_name": "Mumbai"}
      },
      "sport_event_status": {
        "status": "live",
        "match_status": "second_inning",
        "period_scores": [
          {"number": 1, "home_score": 187, "home_wickets": 4},
          {"number": 2, "away_score": 92, "away_wickets": 3}
        ]
      }
    },
    {
      "sport_event": {
        "id": "sr:sport_event:50002",
        "competitors": [{"id": "sr:competitor:3", "name": "Only One"}]
      }
    }
  ]
}`

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:          baseURL,
		APIKey:           "secret-key",
		RequestDelay:     time.Millisecond,
		RateLimitBackoff: time.Millisecond,
		RetryBackoff:     time.Millisecond,
	})
}

func TestClientFetchLiveMatches(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/live/summaries.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "secret-key" {
			t.Errorf("expected api key query parameter")
		}
		_, _ = w.Write([]byte(liveSummariesFixture))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).FetchLiveMatches(context.Background())
	if err != nil {
		t.Fatalf("fetch live matches: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected incomplete fixture to be skipped, got %d items", len(items))
	}

	got := items[0]
	if got.ProviderID != "sr:sport_event:50001" || got.HomeTeam != "Mumbai Indians" || got.AwayTeam != "Chennai Super Kings" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.Status != string(match.StatusLive) {
		t.Fatalf("expected live status, got %q", got.Status)
	}
	if got.Venue != "Wankhede Stadium, Mumbai" || got.Competition != "Indian Premier League" {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if got.HomeScore != "187/4" || got.AwayScore != "92/3" {
		t.Fatalf("unexpected scores: home=%s away=%s", got.HomeScore, got.AwayScore)
	}
	if got.Result != match.UnknownValue {
		t.Fatalf("expected unknown result, got %q", got.Result)
	}
	if got.ScheduledAt == nil || !got.ScheduledAt.Equal(time.Date(2025, 4, 20, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scheduled time: %v", got.ScheduledAt)
	}
}

func TestClientFetchScheduleByDate_SportEventsShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/2025-04-20/schedule.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"sport_events":[{"id":"sr:sport_event:7","competitors":[{"name":"India"},{"name":"Australia"}]}]}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).FetchScheduleByDate(context.Background(), time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch schedule: %v", err)
	}
	if len(items) != 1 || items[0].HomeTeam != "India" || items[0].AwayTeam != "Australia" {
		t.Fatalf("unexpected schedule: %+v", items)
	}
	if items[0].Venue != match.UnknownValue || items[0].Status != match.UnknownValue {
		t.Fatalf("expected unknown placeholders, got %+v", items[0])
	}
}

func TestClientRetriesOnceOnRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"summaries":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchLiveMatches(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", calls.Load())
	}
}

func TestClientGivesUpAfterOneRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchLiveMatches(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", calls.Load())
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("api key leaked into error: %v", err)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchMatchSummary(context.Background(), "sr:sport_event:404"); err == nil {
		t.Fatalf("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClientCircuitOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:          srv.URL,
		APIKey:           "k",
		RequestDelay:     time.Millisecond,
		RateLimitBackoff: time.Millisecond,
		RetryBackoff:     time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.FetchLiveMatches(context.Background()); err == nil {
		t.Fatalf("expected first call to fail")
	}
	before := calls.Load()
	_, err := client.FetchLiveMatches(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open circuit, got %v", err)
	}
	if calls.Load() != before {
		t.Fatalf("expected open circuit to skip the request")
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{}).FetchLiveMatches(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.sportradar.com/cricket-t2/en/schedules/live/summaries.json?api_key=abc123")
	if strings.Contains(got, "abc123") || !strings.Contains(got, "api_key=REDACTED") {
		t.Fatalf("unexpected redacted url: %s", got)
	}
	if got := sanitizeSensitiveText(`Get "https://x/?api_key=abc123": EOF`, ""); strings.Contains(got, "abc123") {
		t.Fatalf("unexpected sanitized text: %s", got)
	}
}
