package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"perfbench/internal/benchmark"
)

// DefaultDir is where records land unless configured otherwise.
const DefaultDir = "test-results/performance/history"

const recordPrefix = "run-"

// FileStore keeps one JSON file per run in a flat directory. File names embed
// the capture timestamp so lexical order matches chronological order.
type FileStore struct {
	dir    string
	max    int
	logger *slog.Logger
}

// NewFileStore creates the history directory if needed. maxRecords <= 0
// selects DefaultMaxRecords.
func NewFileStore(dir string, maxRecords int, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, max: maxRecords, logger: logger}, nil
}

func (s *FileStore) Record(ctx context.Context, rec Record) error {
	name := recordPrefix + rec.Timestamp.UTC().Format("20060102T150405.000000000Z") + ".json"

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return s.Prune(ctx)
}

func (s *FileStore) Runs(ctx context.Context) ([]Record, error) {
	names, err := s.recordFiles()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable history record", "file", name, "error", err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("skipping corrupt history record", "file", name, "error", err)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (s *FileStore) Load(ctx context.Context, name string, count int) ([]benchmark.Benchmark, error) {
	records, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	return tail(matching(records, name), count), nil
}

// Prune deletes the oldest record files until the count is within budget.
func (s *FileStore) Prune(ctx context.Context) error {
	names, err := s.recordFiles()
	if err != nil {
		return err
	}
	for len(names) > s.max {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(s.dir, names[0])); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to prune history record %s: %w", names[0], err)
		}
		names = names[1:]
	}
	return nil
}

// recordFiles lists record file names sorted oldest first. Timestamped names
// make lexical order chronological.
func (s *FileStore) recordFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), recordPrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }
