package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront-checkout/internal/app"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

func main() {
	if err := global.LoadEnvFile(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := global.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	engine, cleanup, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}
	defer cleanup()

	logger.Info("Server is running", zap.String("port", cfg.Port), zap.Strings("origins", cfg.AllowedOrigins))
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.Error("Failed to run server", zap.Error(err))
	}
}
