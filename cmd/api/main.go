package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-numeneon/internal/config"
	"backend-numeneon/internal/db"
	"backend-numeneon/internal/jobs"
	"backend-numeneon/internal/logger"
	"backend-numeneon/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain
var exitFn = os.Exit

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	migrate         func(config.Config) error
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		migrate:         db.Migrate,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	slog.SetDefault(logger.New(logger.Opts{
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		SentryDSN: cfg.SentryDSN,
	}))
	defer logger.Flush()

	if cfg.MigrateOnStart && deps.migrate != nil {
		if err := deps.migrate(cfg); err != nil {
			slog.Error("migrations failed", "error", err)
		}
	}

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		slog.Error("postgres connection failed, refusing to start", "error", err)
		logger.Flush()
		exitFn(1)
		return
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and the maintenance jobs, then waits for
// termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv, err := server.NewServer(cfg, pg, rdb)
	if err != nil {
		return err
	}

	scheduler, err := jobs.New(slog.Default())
	if err != nil {
		return err
	}
	if pg != nil && cfg.StoryCleanupInterval > 0 {
		if err := scheduler.Every("story-cleanup", cfg.StoryCleanupInterval, srv.Stories.DeleteExpired); err != nil {
			return err
		}
	}
	if cfg.RateLimitSweepInterval > 0 {
		if err := scheduler.Every("ratelimit-sweep", cfg.RateLimitSweepInterval, srv.Limiter.Sweep); err != nil {
			return err
		}
	}
	scheduler.Start()

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = scheduler.Shutdown()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := scheduler.Shutdown(); err != nil {
		slog.Warn("scheduler shutdown failed", "error", err)
	}
	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	_ = srv.Stream.Close()
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
