package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThiagoRGoveia/treatment-records/internal/database"
	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/mirror"
	"github.com/ThiagoRGoveia/treatment-records/internal/query"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
)

// Syncer refreshes the local cache from the remote root.
type Syncer interface {
	Sync(ctx context.Context) (*mirror.Report, error)
	SyncIfStale(ctx context.Context) (*mirror.Report, error)
}

type Options struct {
	// ForceSync runs a full mirror pass even when the cache is fresh.
	ForceSync bool
	// SkipSync reads the local cache as it is.
	SkipSync     bool
	MRNs         []string
	ApprovedOnly bool
}

// ExecutionSummary describes one Execute call.
type ExecutionSummary struct {
	Sync      *mirror.Report
	Load      *ingestion.Report
	Databases int
	Headers   int
	Indexed   map[string]*database.IndexResult
}

type IngestionService struct {
	syncer    Syncer
	dbManager database.DBManager
	worker    *ingestion.AsyncWorker
	localRoot string
	logger    *slog.Logger
}

// NewIngestionService wires the run. syncer and dbManager may be nil, which
// disables the mirror step and the index step respectively.
func NewIngestionService(syncer Syncer, dbManager database.DBManager, worker *ingestion.AsyncWorker, localRoot string, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{
		syncer:    syncer,
		dbManager: dbManager,
		worker:    worker,
		localRoot: localRoot,
		logger:    logger,
	}
}

// Execute orchestrates one run: refresh the cache, load the header
// collection, refresh the index and apply the approval filter.
func (s *IngestionService) Execute(ctx context.Context, opts Options) (*store.HeaderCollection, *ExecutionSummary, error) {
	summary := &ExecutionSummary{}

	// Step 1: Refresh the local cache.
	if s.syncer != nil && !opts.SkipSync {
		var (
			report *mirror.Report
			err    error
		)
		if opts.ForceSync {
			s.logger.Info("Forcing sync of local cache...")
			report, err = s.syncer.Sync(ctx)
		} else {
			report, err = s.syncer.SyncIfStale(ctx)
		}
		if err != nil {
			s.logger.Error("Failed to sync local cache", "error", err)
			return nil, summary, fmt.Errorf("sync failed: %w", err)
		}
		summary.Sync = report
		if !report.Skipped {
			s.logger.Info("Sync complete", "copied", len(report.Copied), "deleted", len(report.Deleted), "failures", len(report.Failures))
		}
	}

	// Step 2: Load headers from the cache.
	s.logger.Info("Loading header collection...", "root", s.localRoot)
	headers := store.NewHeaderCollection(s.worker, s.logger)
	load, err := headers.BuildFromFolder(s.localRoot, store.NewFilter(opts.MRNs))
	if err != nil {
		s.logger.Error("Failed to load header collection", "error", err)
		return nil, summary, err
	}
	summary.Load = load
	for _, f := range load.Failures {
		s.logger.Warn("Skipped unreadable file", "path", f.Path, "error", f.Err)
	}

	// Step 3: Refresh the index. A filtered load does not hold every header,
	// so it would delete rows that still exist.
	if s.dbManager != nil {
		if len(opts.MRNs) > 0 {
			s.logger.Warn("Identifier filter set, skipping index refresh")
		} else if err := s.refreshIndex(headers, summary); err != nil {
			return nil, summary, err
		}
	}

	// Step 4: Keep approved patients only.
	if opts.ApprovedOnly {
		headers = query.ApprovedCollection(headers)
	}

	summary.Databases = len(headers.Names())
	summary.Headers = headers.Len()
	s.logger.Info("Ingestion finished", "databases", summary.Databases, "headers", summary.Headers, "failed", load.Failed())
	return headers, summary, nil
}

func (s *IngestionService) refreshIndex(headers *store.HeaderCollection, summary *ExecutionSummary) error {
	s.logger.Info("Refreshing patient header index...")
	if err := s.dbManager.CreatePatientHeadersTable(); err != nil {
		return err
	}
	if err := s.dbManager.CreatePatientHeadersIndexes(); err != nil {
		return err
	}

	summary.Indexed = make(map[string]*database.IndexResult)
	for _, name := range headers.Names() {
		db, _ := headers.Get(name)
		rows := make([]database.HeaderRow, 0, db.Len())
		for _, h := range db.Values() {
			rows = append(rows, database.HeaderRowFrom(name, h))
		}
		result, err := s.dbManager.ReplaceDatabaseHeaders(name, rows)
		if err != nil {
			s.logger.Error("Failed to index database", "db", name, "error", err)
			return err
		}
		summary.Indexed[name] = result
	}
	return nil
}
