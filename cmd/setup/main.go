package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ThiagoRGoveia/treatment-records/internal/config"
	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	logger.Info("Starting database setup...")

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	dbpool, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(context.Background(), dbpool, logger)

	logger.Info("Creating patient_headers table...")
	if err := dbManager.CreatePatientHeadersTable(); err != nil {
		logger.Error("Error creating patient_headers table", "error", err)
		dbpool.Close()
		os.Exit(1)
	}

	logger.Info("Creating patient_headers indexes...")
	if err := dbManager.CreatePatientHeadersIndexes(); err != nil {
		logger.Error("Error creating patient_headers indexes", "error", err)
		dbpool.Close()
		os.Exit(1)
	}

	logger.Info("Database setup finished successfully.")
}
