package main

import (
	"log"

	"recon-backend/internal/cli"
	"recon-backend/internal/config"
	"recon-backend/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	closer, err := logger.Setup(cfg.GetLoggerConfig())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()

	cli.Execute(cfg)
}
