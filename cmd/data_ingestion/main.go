package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/clock"
	"github.com/ThiagoRGoveia/treatment-records/internal/config"
	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/logging"
	"github.com/ThiagoRGoveia/treatment-records/internal/mirror"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/service"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type flags struct {
	configPath string
	remote     string
	local      string
	export     string
	exportFull bool
	opts       service.Options
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	flagSet := pflag.NewFlagSet("data_ingestion", pflag.ContinueOnError)
	flagSet.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&f.remote, "remote", "", "remote root directory (overrides config)")
	flagSet.StringVar(&f.local, "local", "", "local cache directory (overrides config)")
	flagSet.StringVar(&f.export, "export", "", "write the loaded headers to this directory")
	flagSet.BoolVar(&f.exportFull, "export-full", false, "export full records and their headers instead of headers only")
	flagSet.BoolVar(&f.opts.ForceSync, "force-sync", false, "sync the local cache even when it is fresh")
	flagSet.BoolVar(&f.opts.SkipSync, "skip-sync", false, "read the local cache without syncing")
	flagSet.StringArrayVar(&f.opts.MRNs, "mrn", nil, "only load this MRN (repeatable)")
	flagSet.BoolVar(&f.opts.ApprovedOnly, "approved-only", false, "keep only patients with an approved plan")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return f, nil
}

func setup(ctx context.Context, f *flags) (*service.IngestionService, *config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if f.remote != "" {
		cfg.RemoteRoot = f.remote
	}
	if f.local != "" {
		cfg.LocalRoot = f.local
	}

	logger := logging.New(cfg.LogLevel)
	if _, err := models.Registry(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid record schema: %w", err)
	}

	worker := ingestion.NewAsyncWorker(ingestion.AsyncWorkerConfig{NumWorkers: cfg.WorkerCount()}, logger).
		WithProgress(func(done, total int) {
			if done == total || done%500 == 0 {
				logger.Info("Progress", "done", done, "total", total)
			}
		})

	var syncer service.Syncer
	if cfg.RemoteRoot != "" {
		syncer = mirror.New(mirror.Config{
			RemoteRoot: cfg.RemoteRoot,
			LocalRoot:  cfg.LocalRoot,
			StaleAfter: cfg.StaleAfter,
		}, worker, clock.Real(), logger)
	} else {
		logger.Warn("No remote root configured, using the local cache as is")
	}

	cleanupFunc := func() {}
	var dbManager database.DBManager
	if cfg.DatabaseURL != "" {
		dbpool, err := database.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		dbManager = database.NewPostgresDBManager(ctx, dbpool, logger)
		cleanupFunc = dbpool.Close
	}

	handler := service.NewIngestionService(syncer, dbManager, worker, cfg.LocalRoot, logger)
	return handler, cfg, logger, cleanupFunc, nil
}

func execute(ctx context.Context, f *flags, handler *service.IngestionService, logger *slog.Logger) error {
	logger.Info("Starting ingestion process...")
	headers, summary, err := handler.Execute(ctx, f.opts)
	if err != nil {
		return err
	}

	for name, result := range summary.Indexed {
		logger.Info("Indexed database", "db", name, "upserted", result.Upserted, "deleted", result.Deleted)
	}
	if f.export == "" {
		return nil
	}
	if f.exportFull {
		return exportFull(headers, f.export, f.opts.ApprovedOnly, logger)
	}
	logger.Info("Exporting headers", "dir", f.export)
	report, err := headers.Save(f.export)
	if err != nil {
		return err
	}
	return exportErr(report)
}

// exportFull loads the records behind headers and writes them with their
// headers. With approvedOnly, unapproved plans are pruned from the records.
func exportFull(headers *store.HeaderCollection, dir string, approvedOnly bool, logger *slog.Logger) error {
	logger.Info("Loading full records for export...")
	full, loadReport, err := store.FullCollection(headers)
	if err != nil {
		return err
	}
	for _, f := range loadReport.Failures {
		logger.Warn("Skipped unreadable record", "path", f.Path, "error", f.Err)
	}
	if approvedOnly {
		full.DeleteUnapproved()
	}

	logger.Info("Exporting records", "dir", dir, "records", full.Len())
	report, err := full.Save(dir)
	if err != nil {
		return err
	}
	return exportErr(report)
}

func exportErr(report *ingestion.Report) error {
	if report.Failed() > 0 {
		return fmt.Errorf("failed to export %d records: %w", report.Failed(), report.Err())
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file", "error", err)
	}
	startTime := time.Now()

	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handler, _, logger, cleanupFunc, err := setup(ctx, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = execute(ctx, f, handler, logger)
	logger.Info("Cleaning up resources...")
	cleanupFunc()
	if err != nil {
		logger.Error("Error during ingestion", "error", err)
		os.Exit(1)
	}

	logger.Info("Ingestion process finished.", "elapsed", time.Since(startTime))
}
