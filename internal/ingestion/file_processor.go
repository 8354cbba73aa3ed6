package ingestion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Processor defines the interface for directory discovery.
type Processor interface {
	ScanForFiles(dir string, match func(name string) bool) ([]string, error)
	ScanForDirectories(root string) ([]string, error)
}

// FileProcessor discovers the files and database directories a run works on.
type FileProcessor struct {
	logger *slog.Logger
}

func NewFileProcessor(logger *slog.Logger) *FileProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProcessor{logger: logger}
}

// ScanForFiles lists the regular files directly inside dir whose names
// satisfy match, sorted by name. A nil match accepts every file.
func (fp *FileProcessor) ScanForFiles(dir string, match func(name string) bool) ([]string, error) {
	fp.logger.Debug("Scanning for files", "dir", dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if match != nil && !match(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	fp.logger.Debug("Found files to process", "dir", dir, "count", len(paths))
	return paths, nil
}

// ScanForDirectories lists the names of the immediate subdirectories of root.
func (fp *FileProcessor) ScanForDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
