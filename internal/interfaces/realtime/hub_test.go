package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
)

type fakeSubscriber struct {
	id     string
	accept bool

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(frame []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.accept || f.closed {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func sampleOdds() []odds.Odds {
	return []odds.Odds{{
		MatchID:   "match_MumbaiIndians_ChennaiSuperKings",
		HomeTeam:  "Mumbai Indians",
		AwayTeam:  "Chennai Super Kings",
		HomeOdds:  1.8,
		AwayOdds:  2.1,
		Bookmaker: "DraftKings",
	}}
}

func TestHubNotifyChanged_PrunesFailingSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	healthy := &fakeSubscriber{id: "a", accept: true}
	stuck := &fakeSubscriber{id: "b", accept: false}
	for _, sub := range []Subscriber{healthy, stuck} {
		if err := hub.Register(sub); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if err := hub.NotifyChanged(context.Background(), sampleOdds()); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(healthy.frames) != 1 {
		t.Fatalf("expected healthy subscriber to get 1 frame, got %d", len(healthy.frames))
	}
	if !stuck.closed {
		t.Fatalf("expected stuck subscriber to be closed")
	}
	if hub.Count() != 1 {
		t.Fatalf("expected 1 subscriber left, got %d", hub.Count())
	}

	var msg odds.UpdateMessage
	if err := sonic.Unmarshal(healthy.frames[0], &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Type != odds.MessageTypeUpdate || len(msg.Data) != 1 || msg.Data[0].HomeOdds != 1.8 {
		t.Fatalf("unexpected frame: %+v", msg)
	}
}

func TestHubNotifyChanged_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sub := &fakeSubscriber{id: "a", accept: true}
	_ = hub.Register(sub)

	if err := hub.NotifyChanged(context.Background(), nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sub.frames) != 0 {
		t.Fatalf("expected no frames for empty pass")
	}
}

func TestHubClose_RejectsRegistration(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sub := &fakeSubscriber{id: "a", accept: true}
	_ = hub.Register(sub)
	hub.Close()

	if !sub.closed {
		t.Fatalf("expected subscriber to be closed")
	}
	if err := hub.Register(&fakeSubscriber{id: "b"}); err != ErrHubClosed {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}

func TestHandler_WebSocketReceivesUpdate(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	srv := httptest.NewServer(NewHandler(hub, HandlerConfig{}, nil))
	defer srv.Close()
	defer hub.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 1 {
		t.Fatalf("expected subscriber to register")
	}

	if err := hub.NotifyChanged(context.Background(), sampleOdds()); err != nil {
		t.Fatalf("notify: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !strings.Contains(string(frame), `"type":"ODDS_UPDATE"`) || !strings.Contains(string(frame), `"matchId":"match_MumbaiIndians_ChennaiSuperKings"`) {
		t.Fatalf("unexpected frame: %s", frame)
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"https://odds.example.com/"})
	cases := []struct {
		origin string
		host   string
		want   bool
	}{
		{origin: "", host: "api.example.com", want: true},
		{origin: "https://odds.example.com", host: "api.example.com", want: true},
		{origin: "https://api.example.com", host: "api.example.com", want: true},
		{origin: "https://evil.example.com", host: "api.example.com", want: false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/ws/odds", nil)
		req.Host = tc.host
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := check(req); got != tc.want {
			t.Fatalf("origin=%q host=%q got %v want %v", tc.origin, tc.host, got, tc.want)
		}
	}
}
