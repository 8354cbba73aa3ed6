// Package mirror keeps a local cache of record directories in step with a
// remote root. The remote is authoritative: files only present locally are
// removed, files only present remotely are copied.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/clock"
	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/pkg/checksum"
)

const (
	MarkerName        = "Last_Updated.txt"
	DefaultStaleAfter = 24 * time.Hour
)

type Config struct {
	RemoteRoot string
	LocalRoot  string
	StaleAfter time.Duration
}

type Mirror struct {
	config    Config
	worker    *ingestion.AsyncWorker
	processor *ingestion.FileProcessor
	clock     clock.Clock
	logger    *slog.Logger
}

// Report describes one pass. Copied and Deleted hold paths relative to the
// roots, such as "DB1/A_2024.1.1.0.0.json".
type Report struct {
	Skipped   bool
	Databases []string
	Copied    []string
	Deleted   []string
	Failures  []models.AppError
}

func New(cfg Config, worker *ingestion.AsyncWorker, clk clock.Clock, logger *slog.Logger) *Mirror {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	if worker == nil {
		worker = ingestion.NewAsyncWorker(ingestion.AsyncWorkerConfig{}, logger)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Mirror{
		config:    cfg,
		worker:    worker,
		processor: ingestion.NewFileProcessor(logger),
		clock:     clk,
		logger:    logger,
	}
}

// SyncIfStale runs Sync only when the local marker is missing, unreadable or
// at least StaleAfter old. The gate does not lock: concurrent callers must
// serialize themselves.
func (m *Mirror) SyncIfStale(ctx context.Context) (*Report, error) {
	if !m.IsStale() {
		m.logger.Info("Local cache is up to date, skipping sync", "local", m.config.LocalRoot)
		return &Report{Skipped: true}, nil
	}
	return m.Sync(ctx)
}

// IsStale reports whether the local cache needs a sync.
func (m *Mirror) IsStale() bool {
	last, err := m.LastUpdated()
	if err != nil {
		return true
	}
	return m.clock.Now().Sub(last) >= m.config.StaleAfter
}

// LastUpdated reads the marker written by the last completed pass.
func (m *Mirror) LastUpdated() (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(m.config.LocalRoot, MarkerName))
	if err != nil {
		return time.Time{}, err
	}
	return parseMarker(strings.TrimSpace(string(data)), m.clock.Now().Location())
}

// Sync makes every local database directory hold the same data files as its
// remote counterpart. Failed copies and deletions are listed in the report
// and do not stop the pass; the marker is written once the pass completes.
// A missing remote root is an error. ctx is checked between databases.
func (m *Mirror) Sync(ctx context.Context) (*Report, error) {
	databases, err := m.processor.ScanForDirectories(m.config.RemoteRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote databases: %w", err)
	}
	if err := os.MkdirAll(m.config.LocalRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local root %s: %w", m.config.LocalRoot, err)
	}

	report := &Report{Databases: databases}
	var jobs []ingestion.Job
	for _, db := range databases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m.logger.Info("Updating " + db)
		dbJobs, err := m.diffDatabase(db, report)
		if err != nil {
			return report, err
		}
		jobs = append(jobs, dbJobs...)
	}

	m.logger.Info("Copying files from remote databases", "files", len(jobs))
	copyReport, err := m.worker.Run(jobs, copyVerified)
	if err != nil {
		return report, err
	}
	failed := make(map[string]bool, len(copyReport.Failures))
	for _, f := range copyReport.Failures {
		failed[f.Path] = true
	}
	for _, job := range jobs {
		if !failed[job.Path] {
			rel, _ := filepath.Rel(m.config.RemoteRoot, job.Path)
			report.Copied = append(report.Copied, filepath.ToSlash(rel))
		}
	}
	report.Failures = append(report.Failures, copyReport.Failures...)
	sort.Strings(report.Copied)
	sort.Strings(report.Deleted)

	if err := m.writeMarker(); err != nil {
		return report, err
	}
	return report, nil
}

// diffDatabase removes local-only files of db and returns the copy jobs for
// remote-only files.
func (m *Mirror) diffDatabase(db string, report *Report) ([]ingestion.Job, error) {
	remoteDir := filepath.Join(m.config.RemoteRoot, db)
	localDir := filepath.Join(m.config.LocalRoot, db)
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", localDir, err)
	}

	remoteFiles, err := m.dataFiles(remoteDir)
	if err != nil {
		return nil, err
	}
	localFiles, err := m.dataFiles(localDir)
	if err != nil {
		return nil, err
	}

	var jobs []ingestion.Job
	for name := range remoteFiles {
		if !localFiles[name] {
			jobs = append(jobs, ingestion.Job{
				Path:   filepath.Join(remoteDir, name),
				Target: filepath.Join(localDir, name),
			})
		}
	}
	for name := range localFiles {
		if remoteFiles[name] {
			continue
		}
		path := filepath.Join(localDir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			report.Failures = append(report.Failures, ingestion.Failure(path, "Failed to delete stale file", err))
			continue
		}
		report.Deleted = append(report.Deleted, db+"/"+name)
	}
	return jobs, nil
}

func (m *Mirror) dataFiles(dir string) (map[string]bool, error) {
	paths, err := m.processor.ScanForFiles(dir, isDataFile)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(paths))
	for _, p := range paths {
		names[filepath.Base(p)] = true
	}
	return names, nil
}

func isDataFile(name string) bool {
	return filepath.Ext(name) == models.RecordExt
}

// copyVerified copies job.Path to a temporary sibling of job.Target, checks
// the copy against the source checksum and moves it into place.
func copyVerified(job ingestion.Job) error {
	tmp, err := os.CreateTemp(filepath.Dir(job.Target), ".copy-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	sum, err := checksum.CopyWithChecksum(tmp, job.Path)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	written, err := checksum.GetFileChecksum(tmpName)
	if err != nil {
		return err
	}
	if written != sum {
		return fmt.Errorf("checksum mismatch copying %s: source %s, copy %s", job.Path, sum, written)
	}
	return os.Rename(tmpName, job.Target)
}

func (m *Mirror) writeMarker() error {
	path := filepath.Join(m.config.LocalRoot, MarkerName)
	if err := os.WriteFile(path, []byte(formatMarker(m.clock.Now())), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// formatMarker renders t truncated to the hour as year.month.day.hour.
func formatMarker(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d.%d", t.Year(), int(t.Month()), t.Day(), t.Hour())
}

func parseMarker(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return time.Time{}, fmt.Errorf("invalid marker %q: want year.month.day.hour", s)
	}
	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid marker %q: %w", s, err)
		}
		values[i] = v
	}
	return time.Date(values[0], time.Month(values[1]), values[2], values[3], 0, 0, 0, loc), nil
}
