// @title        Auth Service API
// @version      1.0
// @description  Password login, bearer tokens and password rotation.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/api"
	"github.com/pomodoro-hub/auth-service/internal/core/service"
	"github.com/pomodoro-hub/auth-service/internal/infrastructure/queue"
	"github.com/pomodoro-hub/auth-service/internal/infrastructure/security"
	"github.com/pomodoro-hub/auth-service/internal/pkg/config"
	"github.com/pomodoro-hub/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "auth-service",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close(log)

	hasher, err := security.NewHasher(security.HasherOptions{
		Scheme:     security.Scheme(cfg.Security.HashingScheme),
		Pepper:     cfg.Security.PepperSecret,
		BcryptCost: cfg.Security.BcryptCost,
	})
	if err != nil {
		return err
	}
	codec, err := security.NewTokenCodec(cfg.Security.SecretJWTKey, cfg.Security.SigningAlgorithm, cfg.Security.TokenLifetime())
	if err != nil {
		return err
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, backend.audit, logger.Named("audit"))
	dispatcher.Start(workerCtx)

	authService, err := service.NewAuthService(backend.accounts, hasher, codec, dispatcher, logger.Named("auth"))
	if err != nil {
		return err
	}
	guard := service.NewAccessGuard(codec, backend.accounts, logger.Named("guard"))

	e := api.NewRouter(api.Dependencies{
		Auth:   authService,
		Guard:  guard,
		Health: backend.health,
		Log:    logger.Named("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("hashing_scheme", cfg.Security.HashingScheme).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	dispatcher.Close()
	log.Info().Msg("server stopped")
	return nil
}
