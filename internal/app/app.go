package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/skill-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
	"github.com/riskibarqy/skill-league/internal/platform/ratelimit"
	"github.com/riskibarqy/skill-league/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// App is the API process: HTTP server plus the in-process snapshot scheduler.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	services  *Services
	server    *http.Server
	scheduler *usecase.SnapshotScheduler
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	services, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	server, err := newHTTPServer(cfg, services, logger)
	if err != nil {
		_ = services.Close()
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		services: services,
		server:   server,
	}
	if cfg.SnapshotEnabled {
		a.scheduler = usecase.NewSnapshotScheduler(services.Aggregator, usecase.SnapshotScheduleConfig{
			Hour:       cfg.SnapshotDailyAt.Hour,
			Minute:     cfg.SnapshotDailyAt.Minute,
			RunOnStart: cfg.SnapshotRunOnStart,
		}, logger)
	}
	return a, nil
}

func newHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, authenticated routes will reject every request")
	}

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		SubmissionLimiter:  ratelimit.NewPerMinute(cfg.SubmissionRatePerMinute, cfg.SubmissionRateBurst),
	}
	if services.Metrics != nil {
		routerCfg.MetricsHandler = services.Metrics.Handler()
	}

	handler := httpapi.NewHandler(services.League, services.Leaderboard, services.Aggregator, logger)
	router := httpapi.NewRouter(handler, jwtauth.NewVerifier(cfg.JWTSecret), logger, routerCfg)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// Run serves until ctx is cancelled, then drains the server and waits for the
// scheduler to stop.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.scheduler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.scheduler.Run(runCtx)
		}()
	} else {
		a.logger.Info("snapshot scheduler disabled", "reason", "SNAPSHOT_ENABLED=false")
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown: %w", err))
	}

	cancel()
	wg.Wait()
	a.logger.Info("http server stopped")
	return runErr
}

func (a *App) Close() error {
	return a.services.Close()
}
