package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/cricket-odds/external/sheetfeed"
	"github.com/riskibarqy/cricket-odds/external/sportradar"
	"github.com/riskibarqy/cricket-odds/internal/config"
	"github.com/riskibarqy/cricket-odds/internal/domain/jobrun"
	"github.com/riskibarqy/cricket-odds/internal/domain/match"
	"github.com/riskibarqy/cricket-odds/internal/domain/matchmapping"
	"github.com/riskibarqy/cricket-odds/internal/domain/odds"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/broadcast"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/cricket-odds/internal/infrastructure/scheduler"
	"github.com/riskibarqy/cricket-odds/internal/interfaces/httpapi"
	"github.com/riskibarqy/cricket-odds/internal/interfaces/realtime"
	basecache "github.com/riskibarqy/cricket-odds/internal/platform/cache"
	idgen "github.com/riskibarqy/cricket-odds/internal/platform/id"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/platform/resilience"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// App holds the long-lived pieces of the running service.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	Hub       *realtime.Hub

	cfg     config.Config
	logger  *logging.Logger
	closers []func() error
}

type repositories struct {
	matches  match.Repository
	odds     odds.Repository
	mappings matchmapping.Repository
	runs     jobrun.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	built := false
	defer func() {
		if !built {
			_ = a.close()
		}
	}()

	repos, err := a.buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	var invalidator usecase.ReadCacheInvalidator
	readMatches, readOdds := repos.matches, repos.odds
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		invalidator = cache.NewInvalidator(store)
		readMatches = cache.NewMatchRepository(repos.matches, store)
		readOdds = cache.NewOddsRepository(repos.odds, store)
		logger.Info("read cache enabled", "ttl", cfg.CacheTTL.String())
	}

	normalizer, err := loadNormalizer(cfg.TeamSynonymsFile)
	if err != nil {
		return nil, err
	}

	a.Hub = realtime.NewHub(logger)
	a.closers = append(a.closers, func() error {
		a.Hub.Close()
		return nil
	})

	notifiers := []usecase.OddsNotifier{a.Hub}
	if cfg.RedisEnabled {
		publisher, err := a.buildRedisPublisher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, publisher)
	}
	fanout := usecase.NewNotifierFanout(logger, notifiers...)

	feed := sheetfeed.NewClient(sheetfeed.ClientConfig{
		URL:          cfg.OddsFeedURL,
		Timeout:      cfg.OddsFeedTimeout,
		RetryBackoff: cfg.OddsFeedRetryBackoff,
		Location:     cfg.Location,
		Logger:       logger,
	})

	var provider usecase.MatchDataProvider
	if cfg.SportradarEnabled {
		provider = sportradar.NewClient(sportradar.ClientConfig{
			HTTPClient: &http.Client{
				Timeout:   cfg.SportradarTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			BaseURL:          cfg.SportradarBaseURL,
			APIKey:           cfg.SportradarAPIKey,
			Timeout:          cfg.SportradarTimeout,
			RequestDelay:     cfg.SportradarRequestDelay,
			RateLimitBackoff: cfg.SportradarRateLimitBackoff,
			RetryBackoff:     cfg.SportradarRetryBackoff,
			Logger:           logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SportradarCircuitEnabled,
				FailureThreshold: cfg.SportradarCircuitFailureCount,
				OpenTimeout:      cfg.SportradarCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SportradarCircuitHalfOpenMaxReq,
			},
		})
	} else {
		logger.Info("sportradar disabled, live-check and mapping routines not registered")
	}

	reconciler := usecase.NewReconcilerService(
		feed,
		repos.matches,
		repos.odds,
		fanout,
		invalidator,
		usecase.ReconcilerConfig{
			StatusRules: match.DefaultStatusRules(cfg.Location),
			Normalizer:  normalizer,
		},
		logger,
	)

	var (
		liveCheck *usecase.LiveCrossCheckService
		mapping   *usecase.MatchMappingService
	)
	if provider != nil {
		liveCheck = usecase.NewLiveCrossCheckService(provider, repos.matches, repos.odds, repos.mappings, invalidator, normalizer, logger)
		mapping = usecase.NewMatchMappingService(
			provider,
			repos.matches,
			repos.mappings,
			invalidator,
			usecase.MatchMappingConfig{
				Workers:    cfg.JobMappingWorkers,
				Lookback:   cfg.JobMappingLookback,
				Location:   cfg.Location,
				Normalizer: normalizer,
			},
			logger,
		)
	}

	ids := idgen.NewUUIDGenerator()
	orchestrator := usecase.NewJobOrchestratorService(reconciler, liveCheck, mapping, repos.runs, ids, logger)
	querySvc := usecase.NewMatchQueryService(readMatches, readOdds, repos.mappings)

	if cfg.SchedulerEnabled {
		a.Scheduler = scheduler.New(orchestrator, scheduler.Config{
			Location:          cfg.Location,
			OddsSyncInterval:  cfg.JobOddsSyncInterval,
			CleanupCron:       cfg.JobCleanupCron,
			LiveCheckInterval: cfg.JobLiveCheckInterval,
			MappingInterval:   cfg.JobMappingInterval,
			RunCleanupOnStart: cfg.JobCleanupOnStart,
		}, logger)
	}

	realtimeHandler := realtime.NewHandler(a.Hub, realtime.HandlerConfig{
		SendBuffer:     cfg.WSSendBuffer,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		IDs:            ids,
	}, logger)

	handler := httpapi.NewHandler(querySvc, orchestrator, repos.runs, a.Hub, logger)
	router := httpapi.NewRouter(handler, realtimeHandler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	built = true
	return a, nil
}

// Start runs the scheduler, if enabled. The HTTP server is left to the caller.
func (a *App) Start(ctx context.Context) error {
	if a.Scheduler == nil {
		a.logger.Info("scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
		return nil
	}
	if err := a.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, drains routines, then releases
// connections. It keeps going after a step fails and returns every error.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		a.logger.Warn("using in-memory storage, state is lost on restart")
		return repositories{
			matches:  memory.NewMatchRepository(),
			odds:     memory.NewOddsRepository(),
			mappings: memory.NewMatchMappingRepository(),
			runs:     memory.NewJobRunRepository(),
		}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, err
	}
	a.closers = append(a.closers, func() error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("close db: %w", err)
		}
		return nil
	})

	return repositories{
		matches:  postgres.NewMatchRepository(db),
		odds:     postgres.NewOddsRepository(db),
		mappings: postgres.NewMatchMappingRepository(db),
		runs:     postgres.NewJobRunRepository(db),
	}, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	opts := []otelsql.Option{
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dbURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dbURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func (a *App) buildRedisPublisher(ctx context.Context, cfg config.Config) (*broadcast.RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, func() error {
		if err := client.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
		return nil
	})

	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn("redis ping failed, publisher will retry per pass", "error", err)
	}

	return broadcast.NewRedisPublisher(client, broadcast.RedisPublisherConfig{
		Channel:      cfg.RedisChannel,
		Stream:       cfg.RedisStream,
		StreamMaxLen: cfg.RedisStreamMaxLen,
		SnapshotTTL:  cfg.RedisSnapshotTTL,
	}, a.logger), nil
}

func loadNormalizer(path string) (*match.Normalizer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return match.NewNormalizer(match.DefaultSynonyms()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read TEAM_SYNONYMS_FILE: %w", err)
	}
	sets, err := match.ParseSynonymsYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse TEAM_SYNONYMS_FILE: %w", err)
	}
	return match.NewNormalizer(append(match.DefaultSynonyms(), sets...)), nil
}
