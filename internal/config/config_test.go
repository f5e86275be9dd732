package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	for _, key := range []string{
		"APP_TIMEZONE", "STORAGE_DRIVER", "JOB_ODDS_SYNC_INTERVAL", "JOB_CLEANUP_CRON",
		"JOB_LIVE_CHECK_INTERVAL", "JOB_MAPPING_INTERVAL", "JOB_MAPPING_LOOKBACK",
		"SPORTRADAR_REQUEST_DELAY", "SPORTRADAR_RATE_LIMIT_BACKOFF", "REDIS_CHANNEL", "WS_SEND_BUFFER",
		"ODDS_FEED_RETRY_BACKOFF",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location by default, got %s", cfg.Location)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Fatalf("unexpected storage driver: %s", cfg.StorageDriver)
	}
	if cfg.JobOddsSyncInterval != 15*time.Second {
		t.Fatalf("unexpected odds sync interval: %s", cfg.JobOddsSyncInterval)
	}
	if cfg.JobCleanupCron != "5 0 * * *" {
		t.Fatalf("unexpected cleanup cron: %q", cfg.JobCleanupCron)
	}
	if cfg.JobLiveCheckInterval != 5*time.Minute {
		t.Fatalf("unexpected live check interval: %s", cfg.JobLiveCheckInterval)
	}
	if cfg.JobMappingInterval != time.Hour {
		t.Fatalf("unexpected mapping interval: %s", cfg.JobMappingInterval)
	}
	if cfg.JobMappingLookback != 7*24*time.Hour {
		t.Fatalf("unexpected mapping lookback: %s", cfg.JobMappingLookback)
	}
	if cfg.SportradarRequestDelay != time.Second || cfg.SportradarRateLimitBackoff != 5*time.Second {
		t.Fatalf("unexpected sportradar pacing: delay=%s backoff=%s", cfg.SportradarRequestDelay, cfg.SportradarRateLimitBackoff)
	}
	if cfg.OddsFeedRetryBackoff != 2*time.Second {
		t.Fatalf("unexpected odds feed retry backoff %s", cfg.OddsFeedRetryBackoff)
	}
	if cfg.RedisChannel != "odds:updates" {
		t.Fatalf("unexpected redis channel: %q", cfg.RedisChannel)
	}
	if cfg.WSSendBuffer != 16 {
		t.Fatalf("unexpected ws send buffer: %d", cfg.WSSendBuffer)
	}
}

func TestLoad_TimezoneParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("valid zone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Location.String() != "Asia/Kolkata" {
			t.Fatalf("unexpected location: %s", cfg.Location)
		}
	})

	t.Run("invalid zone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid APP_TIMEZONE")
		}
	})
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Setenv("STORAGE_DRIVER", "Memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Fatalf("unexpected storage driver: %s", cfg.StorageDriver)
	}

	t.Setenv("STORAGE_DRIVER", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported STORAGE_DRIVER")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "cricket-odds-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "cricket-odds-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_SportradarConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("enabled requires api key", func(t *testing.T) {
		t.Setenv("SPORTRADAR_ENABLED", "true")
		t.Setenv("SPORTRADAR_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when SPORTRADAR_ENABLED=true without SPORTRADAR_API_KEY")
		}
	})

	t.Run("non-positive backoff rejected", func(t *testing.T) {
		t.Setenv("SPORTRADAR_ENABLED", "false")
		t.Setenv("SPORTRADAR_RATE_LIMIT_BACKOFF", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero SPORTRADAR_RATE_LIMIT_BACKOFF")
		}
	})

	t.Run("enabled with key", func(t *testing.T) {
		t.Setenv("SPORTRADAR_ENABLED", "true")
		t.Setenv("SPORTRADAR_API_KEY", "key-123")
		t.Setenv("SPORTRADAR_RATE_LIMIT_BACKOFF", "")
		t.Setenv("SPORTRADAR_CIRCUIT_FAILURE_COUNT", "3")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SportradarEnabled || cfg.SportradarAPIKey != "key-123" {
			t.Fatalf("unexpected sportradar config: enabled=%v", cfg.SportradarEnabled)
		}
		if cfg.SportradarCircuitFailureCount != 3 {
			t.Fatalf("unexpected circuit failure count: %d", cfg.SportradarCircuitFailureCount)
		}
	})
}

func TestLoad_RedisConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("enabled requires url", func(t *testing.T) {
		t.Setenv("REDIS_ENABLED", "true")
		t.Setenv("REDIS_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when REDIS_ENABLED=true without REDIS_URL")
		}
	})

	t.Run("stream max len must be positive", func(t *testing.T) {
		t.Setenv("REDIS_ENABLED", "false")
		t.Setenv("REDIS_STREAM_MAX_LEN", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for REDIS_STREAM_MAX_LEN=0")
		}
	})
}

func TestLoad_JobConfigValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("workers must be positive", func(t *testing.T) {
		t.Setenv("JOB_MAPPING_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for JOB_MAPPING_WORKERS=0")
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Setenv("JOB_MAPPING_WORKERS", "")
		t.Setenv("JOB_ODDS_SYNC_INTERVAL", "soon")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid JOB_ODDS_SYNC_INTERVAL")
		}
	})
}
