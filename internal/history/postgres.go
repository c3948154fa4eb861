package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"perfbench/internal/benchmark"
)

// PostgresStore implements Store on PostgreSQL, for teams sharing one
// baseline across CI workers. Same caveat as the other backends: the harness
// is single-writer by assumption, the store adds no run-level locking.
type PostgresStore struct {
	db     *sql.DB
	max    int
	logger *slog.Logger
}

// NewPostgresStore connects to the given DSN and applies migrations.
func NewPostgresStore(dsn string, maxRecords int, logger *slog.Logger) (*PostgresStore, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db, max: maxRecords, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS perf_runs (
			id SERIAL PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_perf_runs_timestamp ON perf_runs(timestamp DESC);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	query := `INSERT INTO perf_runs (timestamp, data) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, query, rec.Timestamp, string(data)); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return s.Prune(ctx)
}

func (s *PostgresStore) Runs(ctx context.Context) ([]Record, error) {
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

func (s *PostgresStore) Load(ctx context.Context, name string, count int) ([]benchmark.Benchmark, error) {
	records, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	return tail(matching(records, name), count), nil
}

func (s *PostgresStore) Prune(ctx context.Context) error {
	query := `DELETE FROM perf_runs WHERE id NOT IN (
		SELECT id FROM perf_runs ORDER BY timestamp DESC, id DESC LIMIT $1
	)`
	_, err := s.db.ExecContext(ctx, query, s.max)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
