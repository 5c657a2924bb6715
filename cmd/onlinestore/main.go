package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/onlinestore/onlinestore/internal/app"
	"github.com/onlinestore/onlinestore/internal/auth"
	"github.com/onlinestore/onlinestore/internal/observability"
	"github.com/onlinestore/onlinestore/internal/platform/cache"
	"github.com/onlinestore/onlinestore/internal/platform/db"
	"github.com/onlinestore/onlinestore/internal/rbac"
	"github.com/onlinestore/onlinestore/internal/sales/customers"
	"github.com/onlinestore/onlinestore/internal/sales/orders"
	"github.com/onlinestore/onlinestore/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := run(); err != nil {
		slog.Default().Error("onlinestore exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("starting onlinestore", slog.String("version", app.Version()), slog.String("env", cfg.AppEnv))

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(dbpool); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	metrics := observability.NewMetrics()

	var throttle auth.LoginThrottle = auth.NoopThrottle{}
	var redisClient *redis.Client
	if cfg.LoginMaxAttempts > 0 {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, login throttling disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			throttle = auth.NewRedisThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginLockoutWindow)
		}
	}

	codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTTTL, cfg.JWTIssuer)
	if err != nil {
		return err
	}

	authRepo := auth.NewRepository(dbpool)
	authService, err := auth.NewService(authRepo, auth.NewBcryptHasher(), codec, auth.ServiceConfig{
		RolePolicy: cfg.RolePolicy(),
		Throttle:   throttle,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := authService.CheckRoles(ctx); err != nil {
		return err
	}

	rbacMiddleware := rbac.Middleware{
		Policy:       rbac.MustPolicy(rbac.DefaultRules()),
		Unauthorized: rbac.NewUnauthorizedHandler(logger, metrics),
		Logger:       logger,
	}

	healthChecks := map[string]app.HealthCheck{"postgres": dbpool.Ping}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Gate:             auth.NewGate(codec, auth.NewResolver(authRepo), logger, metrics),
		RBACMiddleware:   rbacMiddleware,
		AuthHandler:      auth.NewHandler(logger, authService, cfg.LoginPerMinute),
		UsersHandler:     users.NewHandler(logger, users.NewService(users.NewRepository(dbpool)), rbacMiddleware),
		CustomersHandler: customers.NewHandler(logger, customers.NewService(customers.NewRepository(dbpool))),
		OrdersHandler:    orders.NewHandler(logger, orders.NewService(orders.NewRepository(dbpool))),
		Metrics:          metrics,
		HealthChecks:     healthChecks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
			return err
		}
		return nil
	})
	return g.Wait()
}
