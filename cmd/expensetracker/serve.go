package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/pennywise/expense-tracker/internal/api"
	"github.com/pennywise/expense-tracker/internal/api/handler"
	"github.com/pennywise/expense-tracker/internal/core/ports"
	"github.com/pennywise/expense-tracker/internal/core/service"
	"github.com/pennywise/expense-tracker/internal/infrastructure/cache"
	"github.com/pennywise/expense-tracker/internal/infrastructure/config"
	mongodb "github.com/pennywise/expense-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/pennywise/expense-tracker/internal/infrastructure/db/redis"
	"github.com/pennywise/expense-tracker/internal/infrastructure/db/sqlite"
	"github.com/pennywise/expense-tracker/internal/infrastructure/security"
	"github.com/pennywise/expense-tracker/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, log, nil)
		},
	}
}

func newHasher(cfg *config.Config) *security.Hasher {
	return security.NewHasher(security.Params{
		MemoryKiB:   cfg.Hash.MemoryKiB,
		Iterations:  cfg.Hash.Iterations,
		Parallelism: cfg.Hash.Parallelism,
	})
}

// serve runs the API until ctx is cancelled. When ready is non-nil it
// receives the bound address once the listener is up.
func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, ready chan<- string) error {
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if n, err := store.UserCount(ctx); err == nil {
		log.Info().Str("path", cfg.DBPath).Int("users", n).Msg("credential store opened")
	}

	readiness := map[string]handler.Pinger{"sqlite": store}

	var sessions ports.SessionRepository = store
	if cfg.Session.Backend == config.BackendRedis {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		redisSessions := redisdb.NewSessionStore(client)
		sessions = redisSessions
		readiness["redis"] = redisSessions
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
	}

	var users ports.UserRepository = store
	if cfg.Cache.UserTTL > 0 {
		userCache, err := cache.NewUserCache(ctx, store, cfg.Cache.UserTTL, logger.Component("user_cache"))
		if err != nil {
			return err
		}
		defer userCache.Close()
		users = userCache
	}

	authService := service.NewAuthService(users, sessions, newHasher(cfg), security.NewTokenGenerator(),
		logger.Component("auth"),
		service.WithSessionTTL(cfg.Session.TTL))

	var expenseService ports.ExpenseService
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		repo := mongodb.NewExpenseRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure expense indexes")
		}
		expenseService = service.NewExpenseService(repo, logger.Component("expenses"))
		readiness["mongodb"] = repo
	} else {
		log.Warn().Msg("MONGO_URI not set, expense routes disabled")
	}

	// Redis expires sessions itself; a zero interval turns the sweep off.
	if cfg.Session.Backend == config.BackendSQLite && cfg.Session.ReapInterval > 0 {
		runCtx, cancel := context.WithCancel(ctx)
		reaper := service.NewSessionReaper(store, cfg.Session.ReapInterval, logger.Component("reaper"))
		reaper.Start(runCtx)
		defer func() {
			cancel()
			reaper.Wait()
		}()
	}

	router := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Expenses:   expenseService,
		SessionTTL: cfg.Session.TTL,
		Readiness:  readiness,
		Logger:     logger.Component("http"),
	})

	listener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("starting HTTP server")
		serveErr <- server.Serve(listener)
	}()
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("initiating shutdown")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("shutdown completed")
		return nil
	}
}
