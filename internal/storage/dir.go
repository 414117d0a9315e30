package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/hyperjump/narabe/internal/models"
)

const (
	checkpointPrefix = "checkpoint-"
	costPrefix       = "cost-"
	lockName         = ".lock"
)

// costRecord is the on-disk form of a window's cost matrix.
type costRecord struct {
	models.CheckpointKey
	Cost [][]float64 `json:"cost"`
}

// DirStore keeps one JSON checkpoint file and one JSON cost file per key in a directory.
// File names are derived from the key for lookup, but the key inside each record is
// authoritative. The directory is held under an advisory lock while the store is open.
type DirStore struct {
	dir  string
	lock *flock.Flock
}

// NewDirStore opens dir, creating it if needed, and takes its lock. It returns
// ErrLocked if another process already holds the directory.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &DirStore{dir: dir, lock: lock}, nil
}

// Dir returns the store's directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) checkpointPath(key models.CheckpointKey) string {
	return filepath.Join(s.dir, checkpointPrefix+key.String()+".json")
}

func (s *DirStore) costPath(key models.CheckpointKey) string {
	return filepath.Join(s.dir, costPrefix+key.String()+".json")
}

// Get reads the checkpoint for key.
func (s *DirStore) Get(ctx context.Context, key models.CheckpointKey) (*models.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp, err := readCheckpoint(s.checkpointPath(key))
	if err != nil {
		return nil, err
	}
	if cp.CheckpointKey != key {
		return nil, fmt.Errorf("%w: %s holds key %s", ErrCorrupt, s.checkpointPath(key), cp.CheckpointKey)
	}
	return cp, nil
}

// Put writes the cost matrix, then the checkpoint, each atomically. A checkpoint
// file therefore never exists without its cost file.
func (s *DirStore) Put(ctx context.Context, cp *models.Checkpoint, cost [][]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	if err := writeJSONAtomic(s.costPath(cp.CheckpointKey), costRecord{CheckpointKey: cp.CheckpointKey, Cost: cost}); err != nil {
		return fmt.Errorf("failed to write cost matrix %s: %w", cp.CheckpointKey, err)
	}
	if err := writeJSONAtomic(s.checkpointPath(cp.CheckpointKey), cp); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", cp.CheckpointKey, err)
	}
	return nil
}

// CostMatrix reads the cost matrix stored for key.
func (s *DirStore) CostMatrix(ctx context.Context, key models.CheckpointKey) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.costPath(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: cost %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var rec costRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if rec.CheckpointKey != key {
		return nil, fmt.Errorf("%w: %s holds key %s", ErrCorrupt, path, rec.CheckpointKey)
	}
	return rec.Cost, nil
}

// List reads every checkpoint record in the directory, ordered by iteration.
func (s *DirStore) List(ctx context.Context) ([]*models.Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}
	var out []*models.Checkpoint
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, checkpointPrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		cp, err := readCheckpoint(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Iteration < out[j].Iteration
	})
	return out, nil
}

// Close releases the directory lock.
func (s *DirStore) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

func readCheckpoint(path string) (*models.Checkpoint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cp models.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &cp, nil
}

// writeJSONAtomic writes v to a temp file in the target directory and renames it into place.
func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
