package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/league"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/domain/user"
	"github.com/riskibarqy/skill-league/internal/infrastructure/account/profile"
	cacherepo "github.com/riskibarqy/skill-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/skill-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/skill-league/internal/observability"
	basecache "github.com/riskibarqy/skill-league/internal/platform/cache"
	idgen "github.com/riskibarqy/skill-league/internal/platform/id"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
	"github.com/riskibarqy/skill-league/internal/platform/resilience"
	"github.com/riskibarqy/skill-league/internal/usecase"
)

// Services is the usecase layer wired against the configured storage. The
// API server and the operator CLI share it.
type Services struct {
	League      *usecase.LeagueService
	Leaderboard *usecase.LeaderboardService
	Aggregator  *usecase.SnapshotAggregator
	Metrics     *observability.Metrics

	closers []func() error
}

type repositories struct {
	leagues   league.Repository
	snapshots snapshot.Repository
	runs      jobscheduler.Repository
}

func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}
	svc := &Services{}
	ids := idgen.NewUUIDGenerator()

	repos, err := svc.openRepositories(ctx, cfg, ids, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	store, err := svc.openCache(ctx, cfg, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	if store != nil {
		loader := basecache.NewLoader(store)
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, loader)
		repos.snapshots = cacherepo.NewSnapshotRepository(repos.snapshots, loader)
	}

	profiles, err := newProfileDirectory(cfg, store, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	var metrics interface {
		usecase.SnapshotMetrics
		usecase.SubmissionMetrics
	} = usecase.NopMetrics()
	if cfg.MetricsEnabled {
		svc.Metrics = observability.NewMetrics()
		metrics = svc.Metrics
	}

	svc.League = usecase.NewLeagueService(repos.leagues, ids, metrics, usecase.LeagueConfig{
		Subjects: cfg.SnapshotSubjects,
	}, logger.Named("league"))
	svc.Leaderboard = usecase.NewLeaderboardService(repos.leagues, repos.snapshots, usecase.LeaderboardConfig{
		Subjects: cfg.SnapshotSubjects,
		TopN:     cfg.SnapshotTopN,
	}, logger.Named("leaderboard"))
	svc.Aggregator = usecase.NewSnapshotAggregator(
		repos.leagues,
		repos.snapshots,
		repos.runs,
		profiles,
		ids,
		metrics,
		usecase.SnapshotConfig{
			Subjects:      cfg.SnapshotSubjects,
			TopN:          cfg.SnapshotTopN,
			RetentionDays: cfg.SnapshotRetentionDays,
			Workers:       cfg.SnapshotWorkers,
		},
		logger,
	)

	return svc, nil
}

// Close releases storage and cache connections in reverse order of opening.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Services) openRepositories(ctx context.Context, cfg config.Config, ids idgen.Generator, logger *logging.Logger) (repositories, error) {
	if cfg.StorageBackend != config.StoragePostgres {
		logger.Info("using in-memory storage with seed leagues")
		return repositories{
			leagues:   memory.NewLeagueRepository(memory.SeedLeagues(time.Now())),
			snapshots: memory.NewSnapshotRepository(ids),
			runs:      memory.NewJobRunRepository(),
		}, nil
	}

	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	s.closers = append(s.closers, db.Close)

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db, time.Now()); err != nil {
			return repositories{}, fmt.Errorf("seed dev leagues: %w", err)
		}
	}
	logger.Info("using postgres storage", "db", dbNameFromURL(cfg.DBURL), "max_open_conns", cfg.DBMaxOpenConns)

	return repositories{
		leagues:   postgres.NewLeagueRepository(db),
		snapshots: postgres.NewSnapshotRepository(db, ids),
		runs:      postgres.NewJobRunRepository(db),
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbName := dbNameFromURL(cfg.DBURL)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBApplicationName), opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(max(cfg.DBMaxOpenConns/2, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithDBName(dbName))

	return db, nil
}

// openCache returns nil when caching is disabled.
func (s *Services) openCache(ctx context.Context, cfg config.Config, logger *logging.Logger) (basecache.Cache, error) {
	if !cfg.CacheEnabled {
		return nil, nil
	}
	if cfg.CacheBackend != config.CacheBackendRedis {
		return basecache.NewStore(cfg.CacheTTL), nil
	}

	store := basecache.NewRedisStore(basecache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	}, logger.Named("redis"))
	s.closers = append(s.closers, store.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("using redis cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return store, nil
}

func newProfileDirectory(cfg config.Config, store basecache.Cache, logger *logging.Logger) (user.Directory, error) {
	if !cfg.ProfileEnabled {
		return profile.NopDirectory{}, nil
	}
	client, err := profile.NewClient(profile.Config{
		BaseURL: cfg.ProfileBaseURL,
		Timeout: cfg.ProfileTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProfileCircuitEnabled,
			FailureThreshold: cfg.ProfileCircuitFailureCount,
			OpenTimeout:      cfg.ProfileCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ProfileCircuitHalfOpenMaxRq,
		},
	}, store, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}
