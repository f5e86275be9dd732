package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/config"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		HTTPAddr:           ":0",
		Location:           time.UTC,
		StorageDriver:      config.StorageDriverMemory,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		OddsFeedURL:        "http://127.0.0.1:1/values",
		OddsFeedTimeout:    time.Second,
		InternalJobToken:   "job-token",
		SchedulerEnabled:   false,
		JobMappingWorkers:  2,
		JobMappingLookback: time.Hour,
		WSSendBuffer:       4,
	}
}

func TestNew_MemoryStorageServesHealthz(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	if a.Scheduler != nil {
		t.Fatalf("expected scheduler to be nil when disabled")
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected matches status: %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNew_ProviderRoutinesNeedSportradar(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/mapping", nil)
	req.Header.Set("X-Internal-Job-Token", "job-token")
	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for unregistered routine, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = " "
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestLoadNormalizer(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		n, err := loadNormalizer("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := n.NormalizeTeamName("Royal Challengers Bengaluru"); got != n.NormalizeTeamName("RCB") {
			t.Fatalf("expected default synonyms to group RCB, got %q", got)
		}
	})

	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "synonyms.yaml")
		data := []byte("- canonical: Nepal\n  aliases: [NEP, Nepal XI]\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write file: %v", err)
		}
		n, err := loadNormalizer(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := n.NormalizeTeamName("NEP"); got != "nepal" {
			t.Fatalf("unexpected canonical name: %q", got)
		}
		if got := n.NormalizeTeamName("CSK"); got != "chennaisuperkings" {
			t.Fatalf("expected built-in synonyms to stay loaded, got %q", got)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := loadNormalizer(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}
