package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/ThiagoRGoveia/treatment-records/internal/models"
)

// Collection maps database names to stores. On disk it is a root directory
// with one subdirectory per database.
type Collection[T models.Entry] struct {
	Databases map[string]*Store[T]

	newStore  func(name string) *Store[T]
	worker    *ingestion.AsyncWorker
	processor *ingestion.FileProcessor
	logger    *slog.Logger
}

type (
	DatabaseCollection = Collection[*models.Patient]
	HeaderCollection   = Collection[*models.PatientHeader]
)

func NewCollection(worker *ingestion.AsyncWorker, logger *slog.Logger) *DatabaseCollection {
	return newCollection(worker, logger, func(name string) *Database {
		return NewDatabase(name, worker, logger)
	})
}

func NewHeaderCollection(worker *ingestion.AsyncWorker, logger *slog.Logger) *HeaderCollection {
	return newCollection(worker, logger, func(name string) *HeaderDatabase {
		return NewHeaderDatabase(name, worker, logger)
	})
}

func newCollection[T models.Entry](worker *ingestion.AsyncWorker, logger *slog.Logger, newStore func(string) *Store[T]) *Collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{
		Databases: make(map[string]*Store[T]),
		newStore:  newStore,
		worker:    worker,
		processor: ingestion.NewFileProcessor(logger),
		logger:    logger,
	}
}

// EmptyCopy returns a collection with the same configuration and no
// databases.
func (c *Collection[T]) EmptyCopy() *Collection[T] {
	return newCollection(c.worker, c.logger, c.newStore)
}

func (c *Collection[T]) Add(s *Store[T]) {
	c.Databases[s.Name] = s
}

func (c *Collection[T]) Get(name string) (*Store[T], bool) {
	s, ok := c.Databases[name]
	return s, ok
}

// Names returns the database names in sorted order.
func (c *Collection[T]) Names() []string {
	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records across every database.
func (c *Collection[T]) Len() int {
	n := 0
	for _, s := range c.Databases {
		n += s.Len()
	}
	return n
}

// BuildFromFolder loads one store per immediate subdirectory of root. The
// root must exist; per-file failures of every database are merged into the
// returned report.
func (c *Collection[T]) BuildFromFolder(root string, filter *Filter) (*ingestion.Report, error) {
	names, err := c.processor.ScanForDirectories(root)
	if err != nil {
		return nil, err
	}

	report := &ingestion.Report{}
	for _, name := range names {
		s := c.newStore(name)
		r, err := s.LoadFromDirectory(filepath.Join(root, name), filter)
		if err != nil {
			return report, fmt.Errorf("failed to load database %s: %w", name, err)
		}
		report.Merge(r)
		c.Add(s)
	}
	return report, nil
}

// Save writes every database to its subdirectory of root.
func (c *Collection[T]) Save(root string) (*ingestion.Report, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}
	report := &ingestion.Report{}
	for _, name := range c.Names() {
		c.logger.Info("Writing " + name)
		r, err := c.Databases[name].SaveToDirectory(filepath.Join(root, name))
		if err != nil {
			return report, err
		}
		report.Merge(r)
	}
	return report, nil
}

func (c *Collection[T]) DeleteUnapproved() {
	for _, s := range c.Databases {
		s.DeleteUnapproved()
	}
}

// FullCollection loads the full records behind every header database of h.
func FullCollection(h *HeaderCollection) (*DatabaseCollection, *ingestion.Report, error) {
	out := NewCollection(h.worker, h.logger)
	report := &ingestion.Report{}
	for _, name := range h.Names() {
		db, r, err := FullDatabase(h.Databases[name])
		if err != nil {
			return nil, report, err
		}
		report.Merge(r)
		out.Add(db)
	}
	return out, report, nil
}
