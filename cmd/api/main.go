// Command api runs the HTTP backend: it loads configuration from the
// environment (optionally seeded from a .env file), opens the SQLite store,
// runs schema migrations, sets up tracing, and serves the public and admin
// APIs until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/atelierhaus/atelier-backend/internal/assets"
	"github.com/atelierhaus/atelier-backend/internal/config"
	httpapi "github.com/atelierhaus/atelier-backend/internal/http"
	"github.com/atelierhaus/atelier-backend/internal/observability"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
	"github.com/atelierhaus/atelier-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.InitLogging(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	log.Info().Str("version", version).Str("port", cfg.Port).Str("mode", cfg.GinMode).Msg("starting")

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	authSvc := &services.AuthService{DB: db, Secret: []byte(cfg.Auth.JWTSecret)}
	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin failed")
	}

	assetClient := assets.NewClient(cfg.Asset)
	cleanup := assets.NewCleanup(assetClient, log.Logger)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Provider: httpapi.NewProviderFromConfig(cfg),
		Uploader: assetClient,
		Cleanup:  cleanup,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	// Flush queued asset deletions before the process exits.
	cleanup.Wait()

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("stopped")
}
