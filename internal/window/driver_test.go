package window_test

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hyperjump/narabe/internal/align"
	"github.com/hyperjump/narabe/internal/models"
	"github.com/hyperjump/narabe/internal/storage"
	"github.com/hyperjump/narabe/internal/window"
)

// exactProvider scores 1 for equal strings and 0 otherwise, counting calls.
type exactProvider struct {
	calls int
	// failAfter makes every call after the first failAfter calls fail; 0 disables.
	failAfter int
}

var errProvider = errors.New("provider unavailable")

func (p *exactProvider) BatchSimilarity(_ context.Context, units []string) ([][]float64, error) {
	p.calls++
	if p.failAfter > 0 && p.calls > p.failAfter {
		return nil, errProvider
	}
	m := make([][]float64, len(units))
	for i := range units {
		m[i] = make([]float64, len(units))
		for j := range units {
			if units[i] == units[j] {
				m[i][j] = 1
			}
		}
	}
	return m, nil
}

func units(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("u%d", i)
	}
	return out
}

func newStore(t *testing.T, dir string) *storage.DirStore {
	t.Helper()
	s, err := storage.NewDirStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func diagonal(n int) models.Path {
	p := make(models.Path, n)
	for i := range p {
		p[i] = models.Point{Left: i, Right: i}
	}
	return p
}

func TestDriver_IdenticalSequences(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	p := &exactProvider{}
	d, err := window.NewDriver(p, store, 4, window.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	seq := units(10)
	sum, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Iterations)
	assert.Equal(t, 4, sum.Computed)
	assert.Equal(t, 0, sum.Resumed)
	assert.Equal(t, models.CheckpointKey{Iteration: 3, LeftStart: 6, RightStart: 6}, sum.Final)

	bound := int(math.Ceil(float64(len(seq)) / (4.0 / 2)))
	assert.LessOrEqual(t, sum.Iterations, bound)

	cps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, cps, 4)
	assert.Equal(t, diagonal(10), align.Stitch(cps))

	cost, err := store.CostMatrix(ctx, cps[0].CheckpointKey)
	require.NoError(t, err)
	assert.Len(t, cost, 4)
}

func TestDriver_ShorterRightEndsOnRightSequence(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)

	sum, err := d.Run(ctx, units(10), units(6))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Iterations)

	cps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, diagonal(6), align.Stitch(cps))
}

func TestDriver_TerminationBound(t *testing.T) {
	for _, tc := range []struct{ n, w int }{{2, 2}, {7, 2}, {9, 4}, {25, 6}, {40, 10}, {5, 300}} {
		t.Run(fmt.Sprintf("n%d_w%d", tc.n, tc.w), func(t *testing.T) {
			d, err := window.NewDriver(&exactProvider{}, newStore(t, t.TempDir()), tc.w)
			require.NoError(t, err)
			sum, err := d.Run(context.Background(), units(tc.n), units(tc.n))
			require.NoError(t, err)
			bound := int(math.Ceil(float64(tc.n) / float64(tc.w/2)))
			assert.LessOrEqual(t, sum.Iterations, bound)
		})
	}
}

// noisyProvider scores every pair of distinct units with a symmetric pseudo-random value.
type noisyProvider struct{ seed uint32 }

func (p noisyProvider) BatchSimilarity(_ context.Context, units []string) ([][]float64, error) {
	m := make([][]float64, len(units))
	for i := range units {
		m[i] = make([]float64, len(units))
		for j := range units {
			if i == j {
				m[i][j] = 1
				continue
			}
			a, b := units[i], units[j]
			if a > b {
				a, b = b, a
			}
			h := fnv.New32a()
			_, _ = fmt.Fprintf(h, "%d|%s|%s", p.seed, a, b)
			m[i][j] = float64(h.Sum32()%2001)/1000 - 1
		}
	}
	return m, nil
}

func TestDriver_NoisyInputsTerminate(t *testing.T) {
	for seed := uint32(0); seed < 20; seed++ {
		for _, tc := range []struct{ nl, nr, w int }{{29, 4, 2}, {29, 20, 8}, {13, 17, 3}, {40, 9, 5}} {
			left := make([]string, tc.nl)
			for i := range left {
				left[i] = fmt.Sprintf("l%d", i)
			}
			right := make([]string, tc.nr)
			for i := range right {
				right[i] = fmt.Sprintf("r%d", i)
			}
			d, err := window.NewDriver(noisyProvider{seed: seed}, newStore(t, t.TempDir()), tc.w)
			require.NoError(t, err)
			sum, err := d.Run(context.Background(), left, right)
			require.NoError(t, err, "seed %d %+v", seed, tc)
			assert.LessOrEqual(t, sum.Iterations, tc.nl+tc.nr, "seed %d %+v", seed, tc)

			path := align.Stitch(sum.Checkpoints)
			require.NoError(t, path.Validate(), "seed %d %+v", seed, tc)
			last, _ := path.Last()
			assert.True(t, last.Left == tc.nl-1 || last.Right == tc.nr-1, "seed %d %+v ends at %s", seed, tc, last)
		}
	}
}

func TestDriver_ResumesFromCheckpoints(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seq := units(10)

	// First run dies after two windows.
	failing := &exactProvider{failAfter: 2}
	store := newStore(t, dir)
	d, err := window.NewDriver(failing, store, 4)
	require.NoError(t, err)
	sum, err := d.Run(ctx, seq, seq)
	require.ErrorIs(t, err, errProvider)
	assert.Equal(t, 2, sum.Computed)
	require.NoError(t, store.Close())

	// Second run picks up the stored windows and computes the rest.
	p := &exactProvider{}
	d, err = window.NewDriver(p, newStore(t, dir), 4)
	require.NoError(t, err)
	sum, err = d.Run(ctx, seq, seq)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Resumed)
	assert.Equal(t, 2, sum.Computed)
	assert.Equal(t, 2, p.calls)
}

func TestDriver_CompletedRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	seq := units(12)

	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	first, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	before, err := store.List(ctx)
	require.NoError(t, err)

	p := &exactProvider{}
	d, err = window.NewDriver(p, store, 4)
	require.NoError(t, err)
	second, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	after, err := store.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, p.calls)
	assert.Equal(t, first.Iterations, second.Resumed)
	assert.Equal(t, align.Stitch(before), align.Stitch(after))
}

func TestDriver_CorruptCheckpointIsFatal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := newStore(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkpoint-0-0-0.json"), []byte("{"), 0644))

	p := &exactProvider{}
	d, err := window.NewDriver(p, store, 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(5), units(5))
	assert.ErrorIs(t, err, storage.ErrCorrupt)
	assert.Equal(t, 0, p.calls, "a corrupt checkpoint must not be recomputed")
}

func TestDriver_StoredPathBeyondSequenceIsCorrupt(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	bad := &models.Checkpoint{Path: models.Path{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}}
	require.NoError(t, store.Put(ctx, bad, [][]float64{{0}}))

	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(4), units(4))
	assert.ErrorIs(t, err, storage.ErrCorrupt)

	_, err = window.Chain(ctx, store, 4, 4)
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestDriver_ResumesWithDifferentWindowSize(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seq := units(12)

	store := newStore(t, dir)
	d, err := window.NewDriver(&exactProvider{}, store, 8)
	require.NoError(t, err)
	first, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// The first window was stored with size 8; a size-2 run must load it as is.
	p := &exactProvider{}
	store = newStore(t, dir)
	d, err = window.NewDriver(p, store, 2)
	require.NoError(t, err)
	second, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	assert.Equal(t, first.Iterations, second.Resumed)
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, diagonal(12), align.Stitch(second.Checkpoints))

	chain, err := window.Chain(ctx, store, len(seq), len(seq))
	require.NoError(t, err)
	assert.Equal(t, diagonal(12), align.Stitch(chain))
}

func TestDriver_ProviderFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	d, err := window.NewDriver(failNow{}, store, 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(3), units(3))
	assert.ErrorIs(t, err, errProvider)

	cps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cps)
}

type failNow struct{}

func (failNow) BatchSimilarity(context.Context, []string) ([][]float64, error) {
	return nil, errProvider
}

func TestDriver_InvalidArguments(t *testing.T) {
	store := newStore(t, t.TempDir())

	_, err := window.NewDriver(&exactProvider{}, store, 1)
	assert.ErrorIs(t, err, window.ErrWindowTooSmall)

	_, err = window.NewDriver(nil, store, 4)
	assert.Error(t, err)

	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	_, err = d.Run(context.Background(), nil, units(3))
	assert.ErrorIs(t, err, window.ErrEmptyInput)
	_, err = d.Run(context.Background(), units(3), []string{})
	assert.ErrorIs(t, err, window.ErrEmptyInput)
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err := window.NewDriver(&exactProvider{}, newStore(t, t.TempDir()), 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(4), units(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriver_SingleUnits(t *testing.T) {
	store := newStore(t, t.TempDir())
	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	sum, err := d.Run(context.Background(), []string{"only"}, []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Iterations)
}

func TestChain_ReplaysCompletedRun(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	seq := units(10)

	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	sum, err := d.Run(ctx, seq, seq)
	require.NoError(t, err)
	require.Len(t, sum.Checkpoints, sum.Iterations)

	chain, err := window.Chain(ctx, store, len(seq), len(seq))
	require.NoError(t, err)
	require.Len(t, chain, sum.Iterations)
	assert.Equal(t, align.Stitch(sum.Checkpoints), align.Stitch(chain))
	assert.Equal(t, diagonal(10), align.Stitch(chain))
}

func TestChain_IgnoresStaleWindows(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	stale := &models.Checkpoint{
		CheckpointKey: models.CheckpointKey{Iteration: 7, LeftStart: 1, RightStart: 1},
		Path:          models.Path{{0, 0}},
	}
	require.NoError(t, store.Put(ctx, stale, [][]float64{{0}}))

	d, err := window.NewDriver(&exactProvider{}, store, 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(6), units(6))
	require.NoError(t, err)

	chain, err := window.Chain(ctx, store, 6, 6)
	require.NoError(t, err)
	for _, cp := range chain {
		assert.NotEqual(t, 7, cp.Iteration)
	}
	assert.Equal(t, diagonal(6), align.Stitch(chain))
}

func TestChain_IncompleteRun(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())
	d, err := window.NewDriver(&exactProvider{failAfter: 1}, store, 4)
	require.NoError(t, err)
	_, err = d.Run(ctx, units(10), units(10))
	require.Error(t, err)

	chain, err := window.Chain(ctx, store, 10, 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Len(t, chain, 1)
}

func TestChain_EmptyInput(t *testing.T) {
	_, err := window.Chain(context.Background(), newStore(t, t.TempDir()), 0, 3)
	assert.ErrorIs(t, err, window.ErrEmptyInput)
}
