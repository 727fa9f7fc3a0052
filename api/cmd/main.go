package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/report-service/internal/application/report"
	"github.com/baechuer/report-service/internal/audit"
	"github.com/baechuer/report-service/internal/config"
	rediscache "github.com/baechuer/report-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/report-service/internal/infrastructure/db/sqlstore"
	rabbitpub "github.com/baechuer/report-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/report-service/internal/logger"
	"github.com/baechuer/report-service/internal/security"
	"github.com/baechuer/report-service/internal/transport/http/handlers"
	"github.com/baechuer/report-service/internal/transport/http/router"
)

const shutdownTimeout = 8 * time.Second

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sql.DB

	Cache     *rediscache.Client
	Publisher *rabbitpub.Publisher
	// Events feeds Publisher from a background goroutine.
	Events *report.AsyncPublisher
}

// Close releases what NewApp opened, in reverse order. The DB belongs to main.
// Queued events are flushed before the broker connection goes away.
func (a *App) Close() {
	if a.Events != nil {
		_ = a.Events.Close()
	}
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil && u.Host != "" {
		zlog.Info().
			Str("db_driver", cfg.DBDriver).
			Str("db_host", u.Host).
			Str("db_name", u.Path).
			Msg("db config loaded")
	}

	db, err := config.NewDB(cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	app, err := NewApp(cfg, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Close()

	if err := run(app); err != nil {
		zlog.Fatal().Err(err).Msg("server crashed")
	}
}

// run serves until SIGINT/SIGTERM and then drains in-flight requests.
func run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", app.Server.Addr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Server.Shutdown(shutdownCtx)
}

func NewApp(cfg *config.Config, db *sql.DB) (*App, error) {
	app := &App{Config: cfg, DB: db}

	// 1) Infrastructure
	store := sqlstore.New(db)

	var cache report.Cache
	if cfg.CacheEnabled() {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.Cache = c
		cache = c
		zlog.Info().Dur("ttl", cfg.ReportCacheTTL).Msg("report cache enabled")
	}

	auditLog := audit.New(logger.Logger)

	var pub report.EventPublisher = report.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit publisher: %w", err)
		}
		app.Publisher = p
		app.Events = report.NewAsyncPublisher(p, cfg.EventQueueSize, auditLog)
		pub = app.Events
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: report access events will not be published")
	}

	// 2) Application
	svc := report.New(store, report.Options{
		Cache:        cache,
		CacheTTL:     cfg.ReportCacheTTL,
		Publisher:    pub,
		Audit:        auditLog,
		QueryTimeout: cfg.ReportQueryTimeout,
	})

	// 3) Transport
	var verifier security.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = security.NewHS256Verifier(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		zlog.Warn().Msg("JWT_SECRET empty: reports are public")
	}

	health := handlers.NewHealthHandler(db, nil)
	if app.Cache != nil {
		health.WithCache(handlers.PingFunc(app.Cache.Ping))
	}

	h := router.New(router.Deps{
		Reports:  handlers.NewReportsHandler(svc, router.ReportsPath),
		Health:   health,
		Verifier: verifier,
		Config:   cfg,
	})

	// 4) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return app, nil
}
