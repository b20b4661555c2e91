package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal/internal/auth"
	"jobportal/internal/config"
	"jobportal/internal/http_server/cookies"
	"jobportal/internal/http_server/router"
	"jobportal/internal/lib/jwt"
	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/mailer"
	"jobportal/internal/rabbitmq"
	"jobportal/internal/storage/inmemory"
	"jobportal/internal/storage/postgres"
	"jobportal/internal/storage/redis"
	"jobportal/internal/storage/s3"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type credentialStore interface {
	auth.UserSaver
	auth.UserProvider
	Close()
}

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting auth service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("auth service failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Main service stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	tokens, err := jwt.New(
		cfg.Tokens.AccessTokenSecret,
		cfg.Tokens.RefreshTokenSecret,
		cfg.Tokens.AccessTokenTTL,
		cfg.Tokens.RefreshTokenTTL,
	)
	if err != nil {
		return err
	}

	store, err := setupStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	sender, closeSender, err := setupSender(cfg)
	if err != nil {
		return err
	}
	defer closeSender()

	var opts []auth.Option

	if cfg.Redis.Address != "" {
		cache, err := redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer cache.Close()

		opts = append(opts, auth.WithCache(cache))
		log.Info("profile cache enabled")
	}

	if cfg.S3.Bucket != "" {
		files, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to init s3: %w", err)
		}

		opts = append(opts, auth.WithFileStorage(files))
		log.Info("image uploads enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	authService := auth.New(
		log,
		store,
		store,
		tokens,
		sender,
		cfg.Tokens.ResetTokenTTL,
		cfg.Frontend.ResetPasswordURL,
		opts...,
	)

	cookieManager := cookies.New(cfg.Cookies, tokens.AccessTTL(), tokens.RefreshTTL())

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(log, authService, cookieManager, cfg.CORS, cfg.HTTPServer.RequestTimeout),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout(),
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")

	return nil
}

func setupStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (credentialStore, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return inmemory.New(), nil
	}

	store, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	return store, nil
}

func setupSender(cfg *config.Config) (auth.MessageSender, func(), error) {
	if cfg.Mail.Transport == config.MailTransportSMTP {
		return mailer.New(cfg.Mail), func() {}, nil
	}

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect rabbitmq: %w", err)
	}

	return msgBroker, msgBroker.Close, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
