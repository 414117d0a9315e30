package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/narabe/internal/models"
)

// SQLiteStore implements CheckpointStore in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		iteration INTEGER NOT NULL,
		left_start INTEGER NOT NULL,
		right_start INTEGER NOT NULL,
		path TEXT NOT NULL,
		cost TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (iteration, left_start, right_start)
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_iteration ON checkpoints(iteration);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the checkpoint for key.
func (s *SQLiteStore) Get(ctx context.Context, key models.CheckpointKey) (*models.Checkpoint, error) {
	var (
		pathJSON string
		cp       = models.Checkpoint{CheckpointKey: key}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT path, created_at FROM checkpoints
		 WHERE iteration = ? AND left_start = ? AND right_start = ?`,
		key.Iteration, key.LeftStart, key.RightStart,
	).Scan(&pathJSON, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(pathJSON), &cp.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return &cp, nil
}

// Put inserts or replaces the checkpoint and its cost matrix.
func (s *SQLiteStore) Put(ctx context.Context, cp *models.Checkpoint, cost [][]float64) error {
	pathJSON, err := json.Marshal(cp.Path)
	if err != nil {
		return fmt.Errorf("failed to marshal path: %w", err)
	}
	costJSON, err := json.Marshal(cost)
	if err != nil {
		return fmt.Errorf("failed to marshal cost matrix: %w", err)
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkpoints (iteration, left_start, right_start, path, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cp.Iteration, cp.LeftStart, cp.RightStart, string(pathJSON), string(costJSON), cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store checkpoint %s: %w", cp.CheckpointKey, err)
	}
	return nil
}

// CostMatrix returns the cost matrix stored for key.
func (s *SQLiteStore) CostMatrix(ctx context.Context, key models.CheckpointKey) ([][]float64, error) {
	var costJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT cost FROM checkpoints
		 WHERE iteration = ? AND left_start = ? AND right_start = ?`,
		key.Iteration, key.LeftStart, key.RightStart,
	).Scan(&costJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cost %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	var cost [][]float64
	if err := json.Unmarshal([]byte(costJSON), &cost); err != nil {
		return nil, fmt.Errorf("%w: cost %s: %v", ErrCorrupt, key, err)
	}
	return cost, nil
}

// List returns all checkpoints ordered by iteration.
func (s *SQLiteStore) List(ctx context.Context) ([]*models.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, left_start, right_start, path, created_at
		 FROM checkpoints ORDER BY iteration, left_start, right_start`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Checkpoint
	for rows.Next() {
		var (
			cp       models.Checkpoint
			pathJSON string
		)
		if err := rows.Scan(&cp.Iteration, &cp.LeftStart, &cp.RightStart, &pathJSON, &cp.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pathJSON), &cp.Path); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, cp.CheckpointKey, err)
		}
		out = append(out, &cp)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
