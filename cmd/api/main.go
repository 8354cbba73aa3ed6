package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/ThiagoRGoveia/treatment-records/internal/config"
	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/logging"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/server"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	var configPath string
	flagSet := pflag.NewFlagSet("api", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	worker := ingestion.NewAsyncWorker(ingestion.AsyncWorkerConfig{NumWorkers: cfg.WorkerCount()}, logger)
	headers := store.NewHeaderCollection(worker, logger)
	report, err := headers.BuildFromFolder(cfg.LocalRoot, nil)
	if err != nil {
		logger.Error("Failed to load header collection", "root", cfg.LocalRoot, "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded header collection", "databases", len(headers.Names()), "headers", headers.Len(), "failed", report.Failed())

	var dbManager database.DBManager
	if cfg.DatabaseURL != "" {
		dbpool, err := database.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to the database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()
		dbManager = database.NewPostgresDBManager(context.Background(), dbpool, logger)
	}

	registry, err := models.Registry()
	if err != nil {
		logger.Error("Invalid record schema", "error", err)
		os.Exit(1)
	}

	router := server.SetupRoutes(
		server.NewPatientService(headers, cfg.RegionDeny, dbManager, logger),
		server.NewSchemaService(registry),
	)

	logger.Info("Server starting", "port", cfg.APIPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.APIPort), router); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
