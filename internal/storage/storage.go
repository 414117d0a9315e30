// Package storage persists alignment checkpoints and results.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for a key.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrCorrupt is returned when a record exists but cannot be decoded.
	ErrCorrupt = errors.New("checkpoint record is corrupt")
	// ErrLocked is returned when another process holds the checkpoint directory.
	ErrLocked = errors.New("checkpoint directory is locked by another process")
)

// CheckpointStore persists per-window alignment state keyed by (iteration, left_start, right_start).
type CheckpointStore interface {
	// Get returns the checkpoint for key, ErrNotFound if absent, ErrCorrupt if unreadable.
	Get(ctx context.Context, key models.CheckpointKey) (*models.Checkpoint, error)
	// Put stores cp and the cost matrix it was computed from, replacing any previous record.
	Put(ctx context.Context, cp *models.Checkpoint, cost [][]float64) error
	// CostMatrix returns the cost matrix stored for key.
	CostMatrix(ctx context.Context, key models.CheckpointKey) ([][]float64, error)
	// List returns all checkpoints ordered by iteration.
	List(ctx context.Context) ([]*models.Checkpoint, error)
	Close() error
}

// NewCheckpointStore opens the store for backend: a JSON record directory at dir,
// or a SQLite database at dbPath.
func NewCheckpointStore(backend, dir, dbPath string) (CheckpointStore, error) {
	switch backend {
	case config.BackendDir, "":
		return NewDirStore(dir)
	case config.BackendSQLite:
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
