package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"perfbench/internal/benchmark"
)

// SQLiteStore implements Store on a local SQLite database. Records are kept
// as JSON blobs alongside their timestamp, mirroring the file store's
// one-record-per-run shape.
type SQLiteStore struct {
	db     *sql.DB
	max    int
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// migrations.
func NewSQLiteStore(path string, maxRecords int, logger *slog.Logger) (*SQLiteStore, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, max: maxRecords, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS perf_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		data TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_perf_runs_timestamp ON perf_runs(timestamp);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	query := `INSERT INTO perf_runs (timestamp, data) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, rec.Timestamp, string(data)); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return s.Prune(ctx)
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]Record, error) {
	query := `SELECT id, data FROM perf_runs ORDER BY timestamp ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			s.logger.Warn("skipping corrupt history row", "id", id, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Load(ctx context.Context, name string, count int) ([]benchmark.Benchmark, error) {
	records, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	return tail(matching(records, name), count), nil
}

func (s *SQLiteStore) Prune(ctx context.Context) error {
	query := `DELETE FROM perf_runs WHERE id NOT IN (
		SELECT id FROM perf_runs ORDER BY timestamp DESC, id DESC LIMIT ?
	)`
	_, err := s.db.ExecContext(ctx, query, s.max)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
