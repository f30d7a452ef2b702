package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	productApp := app.NewProductApp(cfg, db)

	if cfg.AdminPassword != "" {
		if err := productApp.AuthService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to create admin account")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.AppPort).Bool("auth_enabled", cfg.AuthEnabled).Msg("starting product service")
		if err := productApp.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("product service failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down product service")

	if err := productApp.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info().Msg("product service stopped")
}
