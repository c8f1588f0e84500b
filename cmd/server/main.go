package main

import (
	"tokencounter/internal/config"
	logpkg "tokencounter/internal/log"
	"tokencounter/internal/server"
	"tokencounter/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	logger := logpkg.CreateLogger()
	defer func() {
		if appLog, ok := logger.(*logpkg.AppLogger); ok {
			_ = appLog.Close()
		}
	}()

	if dotenvErr != nil {
		logger.Warn("No .env file found, using system environment variables")
	}
	logger.Info("Logger initialized")

	cfg, err := config.LoadSettingsFromEnv(logger)
	if err != nil {
		logger.Fatal("Failed to load settings: %v", err)
	}

	storageInstance := storage.InitStorage(cfg.RedisURL, cfg.StatsFilePath, logger)
	defer func() { _ = storageInstance.Close() }()

	cfg.Storage = storageInstance
	cfg.Logger = logger

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server: %v", err)
	}
	defer func() { _ = srv.Close() }()

	if err := srv.Run(); err != nil {
		logger.Error("Server error: %v", err)
	}
}
