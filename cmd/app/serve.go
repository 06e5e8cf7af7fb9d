package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anuvataru/jewelry-catalog/internal/auth"
	"github.com/anuvataru/jewelry-catalog/internal/config"
	"github.com/anuvataru/jewelry-catalog/internal/contact"
	"github.com/anuvataru/jewelry-catalog/internal/database"
	"github.com/anuvataru/jewelry-catalog/internal/logging"
	"github.com/anuvataru/jewelry-catalog/internal/metrics"
	"github.com/anuvataru/jewelry-catalog/internal/product"
	"github.com/anuvataru/jewelry-catalog/internal/ratelimit"
	"github.com/anuvataru/jewelry-catalog/internal/server"
	"github.com/anuvataru/jewelry-catalog/internal/upload"
	"github.com/anuvataru/jewelry-catalog/internal/user"
)

const shutdownTimeout = 20 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := logging.Setup(cfg.LogMode, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := database.MigrateUp(cfg.DBDriver, cfg.DSN()); err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Warn("close database", zap.Error(err))
		}
		zap.L().Info("database connection closed")
	}()

	users := user.NewSQLRepository(db)
	if _, err := user.NewService(users).EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}

	images, err := upload.NewStore(ctx, cfg)
	if err != nil {
		return err
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		rs, err := ratelimit.NewRedisStorage(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rs.Close()
		limiterStorage = rs
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	app := server.New(server.Deps{
		Config:         cfg,
		Users:          users,
		Products:       product.NewSQLRepository(db),
		Contacts:       contact.NewSQLRepository(db),
		Images:         images,
		Tokens:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn),
		Metrics:        m,
		LimiterStorage: limiterStorage,
		Ping:           db.PingContext,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("server listening", zap.String("addr", cfg.Addr), zap.String("driver", cfg.DBDriver))
		if err := app.Listen(cfg.Addr); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down, draining in-flight requests")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	zap.L().Info("server stopped")
	return nil
}
