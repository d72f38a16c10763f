package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"techcrew/internal/api"
	"techcrew/internal/auth"
	"techcrew/internal/changefeed"
	"techcrew/internal/config"
	"techcrew/internal/database"
	"techcrew/internal/database/migrations"
	"techcrew/internal/kafka"
	"techcrew/internal/labels"
	"techcrew/internal/logger"
	"techcrew/internal/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Dir: cfg.LogDir, Name: "techcrew"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("APP", err.Error())
	}
	log.Info("APP", "Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("APP", "Starting techcrew server")

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := prepareSchema(ctx, cfg, db, log); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	hub := changefeed.NewHub(log)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = changefeed.ConnectRedis(ctx, cfg.Redis.Addr, log)
		if err != nil {
			return err
		}
		defer rdb.Close()

		bridge := changefeed.NewRedisBridge(rdb, cfg.Redis.Channel, hub, log)
		hub.AddSink(bridge)
		g.Go(func() error { return bridge.Run(ctx) })
	}

	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.ChangesTopic}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic, log)
		defer producer.Close()
		hub.AddSink(producer)
		log.Info("KAFKA", "Audit producer attached to change feed")
	}

	verifier, err := newVerifier(ctx, cfg.Auth, rdb, log)
	if err != nil {
		return err
	}

	deps := service.Deps{DB: db, Feed: hub, Log: log}
	issues := service.NewIssues(deps)
	gigLogs := service.NewGigLogs(deps)
	schedules := service.NewSchedules(deps)
	inventory := service.NewInventory(deps)
	users := service.NewUsers(deps)

	srv := &api.Server{
		Bands:     service.NewBands(deps),
		GigLogs:   gigLogs,
		Schedules: schedules,
		Issues:    issues,
		Inventory: inventory,
		Users:     users,
		Dashboard: service.NewDashboard(deps, issues, gigLogs, schedules, inventory),
		Changes:   hub,
		Labels:    labels.NewGenerator(cfg.Auth.LabelKey),
		Verifier:  verifier,
		Sync:      users,
		APIKey:    cfg.Auth.PublicAPIKey,
		Log:       log,
	}
	if cfg.Auth.PublicAPIKey == "" {
		log.Warn("CONFIG", "PUBLIC_API_KEY not set, apikey check disabled")
	}
	if cfg.Auth.UsesDefaultLabelKey() {
		log.Warn("CONFIG", "LABEL_KEY not set, inventory labels are sealed with the built-in key")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		log.Info("HTTP", fmt.Sprintf("Server running on %s (%s)", cfg.Server.Port, cfg.Server.PublicBaseURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("APP", "Shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// prepareSchema runs the versioned migrations on Postgres. SQLite files
// get the schema straight from the models.
func prepareSchema(ctx context.Context, cfg *config.Config, db *bun.DB, log *logger.Logger) error {
	if !cfg.Database.AutoMigrate {
		log.Info("DATABASE", "AUTO_MIGRATE disabled, skipping schema setup")
		return nil
	}
	if !database.IsPostgres(db) {
		if err := database.CreateSchema(ctx, db); err != nil {
			return fmt.Errorf("create sqlite schema: %w", err)
		}
		return nil
	}

	runner := migrations.NewRunner(cfg.Database.PostgresDSN, migrations.Options{}, log)
	defer runner.Close()
	if err := runner.Run(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func newVerifier(ctx context.Context, cfg config.AuthConfig, rdb *redis.Client, log *logger.Logger) (auth.Verifier, error) {
	var v auth.Verifier
	switch {
	case cfg.OIDCIssuer != "":
		oidc, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, err
		}
		log.Info("AUTH", "Verifying tokens against "+cfg.OIDCIssuer)
		v = oidc
	case cfg.JWTSecret != "":
		log.Warn("AUTH", "OIDC_ISSUER not set, accepting HS256 tokens signed with JWT_SECRET")
		v = auth.NewHMACVerifier(cfg.JWTSecret)
	default:
		return nil, errors.New("either OIDC_ISSUER or JWT_SECRET must be set")
	}

	if rdb == nil {
		return v, nil
	}
	return &auth.CachingVerifier{
		Next:   v,
		Cache:  auth.NewRedisClaimsCache(rdb),
		MaxTTL: 10 * time.Minute,
		Log:    log,
	}, nil
}
