// Package server wires the authdir process: logging, the PostgreSQL and Redis
// pools, schema migrations, services, the gRPC endpoint and the metrics
// endpoint, plus graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authdir/internal/clock"
	"github.com/dmitrijs2005/authdir/internal/logging"
	"github.com/dmitrijs2005/authdir/internal/netx"
	"github.com/dmitrijs2005/authdir/internal/server/auth"
	"github.com/dmitrijs2005/authdir/internal/server/config"
	"github.com/dmitrijs2005/authdir/internal/server/metrics"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/cache"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authdir/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/authdir/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	logCloser   io.Closer
	db          *sql.DB
	redis       *redis.Client
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, logCloser := logging.NewJSONLogger(c.LogFile)

	app := &App{config: c, logger: logger, logCloser: logCloser}

	if err := app.init(ctx); err != nil {
		_ = app.Close()
		_ = logCloser.Close()
		return nil, err
	}

	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN, repomanager.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxOpenConns / 2,
		ConnMaxLifetime: 30 * time.Minute,
	}, netx.DefaultReadyPolicy)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	opts, err := redis.ParseURL(c.CacheURL)
	if err != nil {
		return fmt.Errorf("cache url error: %w", err)
	}
	opts.PoolSize = c.CachePoolSize
	app.redis = redis.NewClient(opts)

	// the cache is optional for correctness, so an unreachable one is only
	// reported
	if err := netx.WaitReady(ctx, "redis", netx.DefaultReadyPolicy, func(ctx context.Context) error {
		return app.redis.Ping(ctx).Err()
	}); err != nil {
		app.logger.Warn(ctx, "starting without cache", "error", err)
	}

	app.registry = metrics.NewRegistry()
	app.metrics = metrics.New(app.registry)

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenTTL, clock.NewRealClock())
	if err != nil {
		return err
	}

	store := services.NewCredentialStore(
		cache.NewRedisRepository(app.redis, c.CacheTimeout),
		rm.Users(db),
		app.metrics,
		app.logger,
	)
	us, err := services.NewUserService(store, hasher, tokens)
	if err != nil {
		return err
	}
	app.userService = us

	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.metrics, app.config.RequestTimeout)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := metrics.NewServer(app.config.MetricsAddr, app.registry, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or a server fails, then
// releases the pools.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "shutdown error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
	_ = app.logCloser.Close()
}

// Close releases the pools. It is safe to call on a
// partially initialised App.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
		app.redis = nil
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
		app.db = nil
	}
	return errors.Join(errs...)
}
