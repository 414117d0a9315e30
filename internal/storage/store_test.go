package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/internal/models"
)

// backends opens one store per implementation in a fresh temp directory.
func backends(t *testing.T) map[string]CheckpointStore {
	t.Helper()
	out := map[string]CheckpointStore{}
	for _, backend := range []string{config.BackendDir, config.BackendSQLite} {
		dir := t.TempDir()
		s, err := NewCheckpointStore(backend, filepath.Join(dir, "ctx"), filepath.Join(dir, "db", "checkpoints.db"))
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = s.Close() })
		out[backend] = s
	}
	return out
}

func TestCheckpointStore_PutGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := models.CheckpointKey{Iteration: 2, LeftStart: 10, RightStart: 12}
			cp := &models.Checkpoint{CheckpointKey: key, Path: models.Path{{0, 0}, {1, 1}, {1, 2}}}
			cost := [][]float64{{0, 1}, {0.5, 0.25}}

			require.NoError(t, s.Put(ctx, cp, cost))
			assert.False(t, cp.CreatedAt.IsZero(), "CreatedAt should be set")

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, got.CheckpointKey)
			assert.Equal(t, cp.Path, got.Path)

			gotCost, err := s.CostMatrix(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, cost, gotCost)
		})
	}
}

func TestCheckpointStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, models.CheckpointKey{Iteration: 9})
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.CostMatrix(ctx, models.CheckpointKey{Iteration: 9})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCheckpointStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := models.CheckpointKey{}
			require.NoError(t, s.Put(ctx, &models.Checkpoint{CheckpointKey: key, Path: models.Path{{0, 0}}}, [][]float64{{1}}))
			require.NoError(t, s.Put(ctx, &models.Checkpoint{CheckpointKey: key, Path: models.Path{{0, 0}, {1, 1}}}, [][]float64{{0}}))

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Len(t, got.Path, 2)
			list, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestCheckpointStore_ListOrdersByIteration(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Iteration 10 sorts before 2 lexically; the store must order numerically.
			for _, it := range []int{10, 2, 0, 1} {
				cp := &models.Checkpoint{
					CheckpointKey: models.CheckpointKey{Iteration: it, LeftStart: it * 3, RightStart: it * 3},
					Path:          models.Path{{0, 0}},
				}
				require.NoError(t, s.Put(ctx, cp, [][]float64{{0}}))
			}
			list, err := s.List(ctx)
			require.NoError(t, err)
			var its []int
			for _, cp := range list {
				its = append(its, cp.Iteration)
				assert.Equal(t, cp.Iteration*3, cp.LeftStart)
			}
			assert.Equal(t, []int{0, 1, 2, 10}, its)
		})
	}
}

func TestDirStore_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	key := models.CheckpointKey{Iteration: 1, LeftStart: 4, RightStart: 5}
	require.NoError(t, os.WriteFile(s.checkpointPath(key), []byte("{not json"), 0644))

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDirStore_KeyComesFromRecord(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	want := models.CheckpointKey{Iteration: 3, LeftStart: 7, RightStart: 8}
	require.NoError(t, s.Put(ctx, &models.Checkpoint{CheckpointKey: want, Path: models.Path{{0, 0}}}, [][]float64{{0}}))

	// A record copied under the wrong name is detected rather than trusted.
	other := models.CheckpointKey{Iteration: 4, LeftStart: 1, RightStart: 1}
	data, err := os.ReadFile(s.checkpointPath(want))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.checkpointPath(other), data, 0644))

	_, err = s.Get(ctx, other)
	assert.ErrorIs(t, err, ErrCorrupt)

	list, err := s.List(ctx)
	require.NoError(t, err)
	for _, cp := range list {
		assert.Equal(t, want, cp.CheckpointKey)
	}
}

func TestDirStore_Lock(t *testing.T) {
	dir := t.TempDir()
	first, err := NewDirStore(dir)
	require.NoError(t, err)

	_, err = NewDirStore(dir)
	assert.True(t, errors.Is(err, ErrLocked), "second open should fail with ErrLocked, got %v", err)

	require.NoError(t, first.Close())
	second, err := NewDirStore(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestDirStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirStore(dir)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Put(context.Background(), &models.Checkpoint{Path: models.Path{{0, 0}}}, [][]float64{{0}}))

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNewCheckpointStore_UnknownBackend(t *testing.T) {
	_, err := NewCheckpointStore("redis", t.TempDir(), "")
	assert.Error(t, err)
}

func TestResult_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadResult(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	res := &models.Result{
		RunID:      "run-1",
		WindowSize: 4,
		Path:       models.Path{{0, 0}, {1, 1}},
		Left:       []string{"a", "b"},
		Right:      []string{"x", "y"},
	}
	require.NoError(t, WriteResult(dir, res))
	got, err := ReadResult(dir)
	require.NoError(t, err)
	assert.Equal(t, res.Path, got.Path)
	assert.Equal(t, res.Left, got.Left)
	assert.Equal(t, "run-1", got.RunID)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ResultFile), []byte("[]x"), 0644))
	_, err = ReadResult(dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}
