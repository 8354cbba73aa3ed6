package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
)

// layout describes how one kind of entry lives on disk.
type layout[T models.Entry] struct {
	match  func(name string) bool
	decode func(path string) (T, error)
	// header projects a full record into the header saved next to it. Nil for
	// stores that hold headers.
	header func(T) *models.PatientHeader
}

// Store maps keys to the records of one logical database.
type Store[T models.Entry] struct {
	Name string

	mu      sync.RWMutex
	entries map[string]T

	layout    layout[T]
	worker    *ingestion.AsyncWorker
	processor *ingestion.FileProcessor
	logger    *slog.Logger
}

type (
	Database       = Store[*models.Patient]
	HeaderDatabase = Store[*models.PatientHeader]
)

var patientLayout = layout[*models.Patient]{
	match:  models.IsRecordFile,
	decode: schema.ReadFile[models.Patient],
	header: models.BuildHeader,
}

var headerLayout = layout[*models.PatientHeader]{
	match:  models.IsHeaderFile,
	decode: schema.ReadFile[models.PatientHeader],
}

func NewDatabase(name string, worker *ingestion.AsyncWorker, logger *slog.Logger) *Database {
	return newStore(name, patientLayout, worker, logger)
}

func NewHeaderDatabase(name string, worker *ingestion.AsyncWorker, logger *slog.Logger) *HeaderDatabase {
	return newStore(name, headerLayout, worker, logger)
}

func newStore[T models.Entry](name string, l layout[T], worker *ingestion.AsyncWorker, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if worker == nil {
		worker = ingestion.NewAsyncWorker(ingestion.AsyncWorkerConfig{}, logger)
	}
	return &Store[T]{
		Name:      name,
		entries:   make(map[string]T),
		layout:    l,
		worker:    worker,
		processor: ingestion.NewFileProcessor(logger),
		logger:    logger,
	}
}

// EmptyCopy returns a store with the same name and configuration and no
// entries.
func (s *Store[T]) EmptyCopy() *Store[T] {
	return newStore(s.Name, s.layout, s.worker, s.logger)
}

// LoadFromDirectory decodes the store's files in dir, optionally restricted to
// the keys filter matches. A missing directory is an error; files that fail to
// decode are listed in the report.
func (s *Store[T]) LoadFromDirectory(dir string, filter *Filter) (*ingestion.Report, error) {
	paths, err := s.processor.ScanForFiles(dir, func(name string) bool {
		if !s.layout.match(name) {
			return false
		}
		f, _ := models.ParseFileName(name)
		return filter.Match(f.Key)
	})
	if err != nil {
		return nil, err
	}
	return s.LoadFiles(paths)
}

// LoadFiles decodes paths into the store. The last decoded record wins when
// two files carry the same key.
func (s *Store[T]) LoadFiles(paths []string) (*ingestion.Report, error) {
	s.logger.Info("Loading from "+s.Name, "files", len(paths))
	return ingestion.Load(s.worker, paths,
		func(path string) (T, error) {
			v, err := s.layout.decode(path)
			if err != nil {
				var zero T
				return zero, err
			}
			v.SetFilePath(path)
			return v, nil
		},
		func(_ string, v T) { s.Put(v) },
	)
}

// SaveToDirectory writes every record to its canonical filename in dir. For
// full records the header is written next to it. Files of the same key with a
// different timestamp, and legacy .txt copies, are removed.
func (s *Store[T]) SaveToDirectory(dir string) (*ingestion.Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	existing, err := s.indexDirectory(dir)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]T)
	jobs := make([]ingestion.Job, 0, s.Len())
	for _, v := range s.Values() {
		path := filepath.Join(dir, v.FileName())
		byPath[path] = v
		jobs = append(jobs, ingestion.Job{Path: path})
	}

	s.logger.Info("Writing "+s.Name, "records", len(jobs), "dir", dir)
	return s.worker.Run(jobs, func(job ingestion.Job) error {
		v := byPath[job.Path]
		if err := schema.WriteFile(job.Path, v); err != nil {
			return err
		}
		keep := map[string]bool{filepath.Base(job.Path): true}
		if s.layout.header != nil {
			h := s.layout.header(v)
			h.FilePath = job.Path
			headerPath := filepath.Join(dir, h.FileName())
			if err := schema.WriteFile(headerPath, h); err != nil {
				return err
			}
			keep[filepath.Base(headerPath)] = true
		}
		return s.removeStale(dir, existing[v.Key()], keep)
	})
}

// indexDirectory groups the timestamped files in dir by key.
func (s *Store[T]) indexDirectory(dir string) (map[string][]models.FileName, error) {
	names, err := s.processor.ScanForFiles(dir, nil)
	if err != nil {
		return nil, err
	}
	index := make(map[string][]models.FileName)
	for _, path := range names {
		f, ok := models.ParseFileName(path)
		if !ok {
			continue
		}
		if _, err := models.ParseStamp(f.Stamp); err != nil {
			continue
		}
		index[f.Key] = append(index[f.Key], f)
	}
	return index, nil
}

func (s *Store[T]) removeStale(dir string, files []models.FileName, keep map[string]bool) error {
	var errs []error
	for _, f := range files {
		name := f.Key + "_" + f.Stamp
		if f.Header {
			name += models.HeaderSuffix
		}
		name += f.Ext
		if keep[name] {
			continue
		}
		// Header stores only own header files.
		if s.layout.header == nil && !f.Header {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove stale file %s: %w", name, err))
			continue
		}
		s.logger.Debug("Removed stale file", "db", s.Name, "file", name)
	}
	return errors.Join(errs...)
}

// DeleteUnapproved prunes unapproved plans from every record, then drops the
// records left without cases.
func (s *Store[T]) DeleteUnapproved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.entries {
		if !v.PruneUnapproved() {
			delete(s.entries, key)
		}
	}
}

func (s *Store[T]) Put(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[v.Key()] = v
}

func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the keys in sorted order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the records ordered by key.
func (s *Store[T]) Values() []T {
	keys := s.Keys()
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]T, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.entries[k]; ok {
			values = append(values, v)
		}
	}
	return values
}

// FullDatabase loads the full records that the headers of h point at. Headers
// whose record file no longer exists are skipped.
func FullDatabase(h *HeaderDatabase) (*Database, *ingestion.Report, error) {
	db := NewDatabase(h.Name, h.worker, h.logger)
	var paths []string
	for _, header := range h.Values() {
		if header.FilePath == "" {
			continue
		}
		if _, err := os.Stat(header.FilePath); err != nil {
			continue
		}
		paths = append(paths, header.FilePath)
	}
	report, err := db.LoadFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	return db, report, nil
}
