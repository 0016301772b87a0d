package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/config"
	"github.com/iliyamo/venue-ops/internal/database"
	"github.com/iliyamo/venue-ops/internal/queue"
	"github.com/iliyamo/venue-ops/internal/router"
	"github.com/iliyamo/venue-ops/internal/session"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")
}

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !skipMigrate {
		if err := database.MigrateUp(cfg, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	opts := []session.Option{session.WithSecure(cfg.IsProduction()), session.WithLogger(log)}
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable; rate limiting and early session revocation disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		opts = append(opts, session.WithRevocations(session.NewRedisRevocations(rdb)))
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.AMQPURL)
	}

	e := router.New(router.Deps{
		DB:        db,
		Sessions:  session.NewCookieService(cfg.SessionSecret, cfg.SessionTTL, opts...),
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Events:    events,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.Bool("events", cfg.EventsEnabled))
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
