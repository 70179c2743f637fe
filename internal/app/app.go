package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/smuti/greydb-api/external/fotmob"
	"github.com/smuti/greydb-api/external/jobqueue"
	"github.com/smuti/greydb-api/internal/config"
	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/domain/h2h"
	"github.com/smuti/greydb-api/internal/domain/jobscheduler"
	"github.com/smuti/greydb-api/internal/domain/league"
	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/team"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
	"github.com/smuti/greydb-api/internal/infrastructure/redis"
	"github.com/smuti/greydb-api/internal/infrastructure/repository/cache"
	"github.com/smuti/greydb-api/internal/infrastructure/repository/memory"
	"github.com/smuti/greydb-api/internal/infrastructure/repository/postgres"
	"github.com/smuti/greydb-api/internal/interfaces/httpapi"
	basecache "github.com/smuti/greydb-api/internal/platform/cache"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/smuti/greydb-api/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	dbPingTimeout      = 5 * time.Second
	cacheSweepInterval = time.Minute
)

type repositories struct {
	leagues     league.Repository
	teams       team.Repository
	matches     match.Repository
	facts       match.FactsRepository
	teamStats   teamstats.Repository
	lineups     lineup.Repository
	playerStats playerstats.Repository
	h2h         h2h.Repository
	fixtures    fixture.Repository
	dispatches  jobscheduler.Repository
}

// App owns every long-lived dependency of the pipeline. Both the HTTP server
// and the ingest CLI build one and call the services it exposes.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB
	redis  *redis.PayloadCache

	stopSweeper context.CancelFunc

	Provider   *fotmob.Client
	Parser     *fotmob.Parser
	Ingestion  *usecase.MatchIngestionService
	Reconciler *usecase.ReconciliationService
	Backfiller *usecase.BackfillService
	Jobs       *usecase.JobOrchestratorService
	TeamForm   *usecase.TeamFormService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{cfg: cfg, logger: logger}

	var repos repositories
	switch cfg.StorageBackend {
	case config.StorageMemory:
		repos = memoryRepositories()
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		repos = postgresRepositories(db)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.matches = cache.NewMatchRepository(repos.matches, store)
		repos.teams = cache.NewTeamRepository(repos.teams, store)
		repos.h2h = cache.NewH2HRepository(repos.h2h, store)
		a.stopSweeper = startCacheSweeper(store, logger)
	}

	providerCfg := fotmob.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FotmobTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:        cfg.FotmobBaseURL,
		UserAgent:      cfg.FotmobUserAgent,
		Timeout:        cfg.FotmobTimeout,
		Logger:         logger,
		CircuitBreaker: cfg.FotmobCircuit,
		CacheTTL:       cfg.PayloadCacheTTL,
	}
	if cfg.RedisURL != "" {
		payloads, err := redis.NewPayloadCache(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.redis = payloads
		providerCfg.Cache = payloads
	}
	a.Provider = fotmob.NewClient(providerCfg)
	a.Parser = fotmob.NewParser()

	resolver := usecase.NewEntityResolver(repos.leagues, repos.teams, cfg.IngestDefaultSeason, logger)
	upserter := usecase.NewMatchUpsertService(
		repos.matches,
		repos.facts,
		repos.teamStats,
		repos.lineups,
		repos.playerStats,
		repos.h2h,
		logger,
	)
	a.Ingestion = usecase.NewMatchIngestionService(a.Provider, a.Parser, resolver, upserter, logger)
	a.Reconciler = usecase.NewReconciliationService(
		repos.fixtures,
		repos.matches,
		a.Provider,
		a.Parser,
		a.Ingestion,
		usecase.ReconciliationConfig{
			FetchInterval:  cfg.ScanFetchInterval,
			LimitPerLeague: cfg.ScanLimitPerLeague,
			MaxFixtures:    cfg.ScanMaxFixtures,
		},
		logger,
	)
	a.Backfiller = usecase.NewBackfillService(
		repos.matches,
		a.Parser,
		upserter,
		usecase.BackfillConfig{
			BatchSize:  cfg.BackfillBatchSize,
			MaxWorkers: cfg.BackfillMaxWorkers,
		},
		logger,
	)

	queue, err := newJobQueue(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Jobs = usecase.NewJobOrchestratorService(
		a.Reconciler,
		a.Backfiller,
		queue,
		repos.dispatches,
		usecase.JobOrchestratorConfig{ReconcileInterval: cfg.JobReconcileInterval},
		logger,
	)
	a.TeamForm = usecase.NewTeamFormService(repos.matches, repos.teams, repos.h2h, logger)

	return a, nil
}

// NewHTTPServer mounts the public and internal routes on top of the services.
func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var readiness []httpapi.ReadinessCheck
	if a.db != nil {
		readiness = append(readiness, httpapi.ReadinessCheck{
			Name:  "postgres",
			Check: a.db.PingContext,
		})
	}
	if a.redis != nil {
		readiness = append(readiness, httpapi.ReadinessCheck{
			Name:  "redis",
			Check: a.redis.Ping,
		})
	}

	handler := httpapi.NewHandler(
		a.Reconciler,
		a.TeamForm,
		a.Jobs,
		a.Ingestion,
		a.Provider,
		readiness,
		a.logger,
	)
	router := httpapi.NewRouter(
		handler,
		a.logger,
		a.cfg.SwaggerEnabled,
		a.cfg.CORSAllowedOrigins,
		a.cfg.InternalJobToken,
	)

	return &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       a.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.cfg.WriteTimeout,
	}, nil
}

func (a *App) Close() error {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		leagues:     postgres.NewLeagueRepository(db),
		teams:       postgres.NewTeamRepository(db),
		matches:     postgres.NewMatchRepository(db),
		facts:       postgres.NewFactsRepository(db),
		teamStats:   postgres.NewTeamStatsRepository(db),
		lineups:     postgres.NewLineupRepository(db),
		playerStats: postgres.NewPlayerStatsRepository(db),
		h2h:         postgres.NewH2HRepository(db),
		fixtures:    postgres.NewFixtureRepository(db),
		dispatches:  postgres.NewJobDispatchRepository(db),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		leagues:     memory.NewLeagueRepository(store),
		teams:       memory.NewTeamRepository(store),
		matches:     memory.NewMatchRepository(store),
		facts:       memory.NewFactsRepository(store),
		teamStats:   memory.NewTeamStatsRepository(store),
		lineups:     memory.NewLineupRepository(store),
		playerStats: memory.NewPlayerStatsRepository(store),
		h2h:         memory.NewH2HRepository(store),
		fixtures:    memory.NewFixtureRepository(store),
		dispatches:  memory.NewJobDispatchRepository(),
	}
}

func newJobQueue(cfg config.Config, logger *logging.Logger) (usecase.JobQueue, error) {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue(), nil
	}
	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		CircuitBreaker: cfg.QStashCircuit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}

func startCacheSweeper(store *basecache.Store, logger *logging.Logger) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cacheSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Sweep(); removed > 0 {
					logger.Debug("cache sweep", "removed", removed, "remaining", store.Len())
				}
			}
		}
	}()
	return cancel
}
