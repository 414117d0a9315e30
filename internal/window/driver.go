// Package window drives the alignment over long inputs in overlapping, checkpointed windows.
package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/narabe/internal/align"
	"github.com/hyperjump/narabe/internal/models"
	"github.com/hyperjump/narabe/internal/similarity"
	"github.com/hyperjump/narabe/internal/storage"
)

var (
	// ErrEmptyInput is returned when either sequence has no units.
	ErrEmptyInput = errors.New("window: both sequences must be non-empty")
	// ErrWindowTooSmall is returned for window sizes below 2, which cannot make progress.
	ErrWindowTooSmall = errors.New("window: size must be at least 2")
)

// Driver runs the window state machine over (iteration, left_start, right_start).
// Each window is searched once and persisted; a later run over the same store
// resumes from the stored windows instead of recomputing them.
type Driver struct {
	provider   similarity.Provider
	store      storage.CheckpointStore
	windowSize int
	logger     *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets a logger for per-window progress.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Summary reports what a run did.
type Summary struct {
	Iterations  int
	Computed    int
	Resumed     int
	Final       models.CheckpointKey
	Checkpoints []*models.Checkpoint
}

// NewDriver returns a driver that slices up to windowSize units per side.
func NewDriver(provider similarity.Provider, store storage.CheckpointStore, windowSize int, opts ...Option) (*Driver, error) {
	if provider == nil || store == nil {
		return nil, errors.New("window: provider and store are required")
	}
	if windowSize < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrWindowTooSmall, windowSize)
	}
	d := &Driver{
		provider:   provider,
		store:      store,
		windowSize: windowSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run aligns left against right until a window's path reaches the end of either
// sequence. Only the first window may start anywhere on its boundary; every later
// window starts at the previous window's path midpoint, so the second half of each
// window is recomputed by the next one. Cancellation is checked between windows.
func (d *Driver) Run(ctx context.Context, left, right []string) (*Summary, error) {
	if len(left) == 0 || len(right) == 0 {
		return nil, ErrEmptyInput
	}

	sum := &Summary{}
	key := models.CheckpointKey{}
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		cp, resumed, err := d.step(ctx, key, left, right)
		if err != nil {
			return sum, err
		}
		sum.Iterations++
		sum.Final = key
		if resumed {
			sum.Resumed++
		} else {
			sum.Computed++
		}
		sum.Checkpoints = append(sum.Checkpoints, cp)

		d.logger.Info("window aligned",
			zap.Int("iteration", key.Iteration),
			zap.Int("left_start", key.LeftStart),
			zap.Int("right_start", key.RightStart),
			zap.Int("steps", len(cp.Path)),
			zap.Bool("resumed", resumed),
		)

		next, done, err := advance(cp, len(left), len(right))
		if err != nil || done {
			return sum, err
		}
		key = next
	}
}

// Chain returns the stored checkpoints of a completed run over sequences of nLeft and
// nRight units, in iteration order, without computing anything. A missing window
// yields ErrNotFound. The window size of the run that stored them does not matter.
func Chain(ctx context.Context, store storage.CheckpointStore, nLeft, nRight int) ([]*models.Checkpoint, error) {
	if nLeft == 0 || nRight == 0 {
		return nil, ErrEmptyInput
	}
	var chain []*models.Checkpoint
	key := models.CheckpointKey{}
	for {
		if err := ctx.Err(); err != nil {
			return chain, err
		}
		cp, err := store.Get(ctx, key)
		if err != nil {
			return chain, fmt.Errorf("failed to load checkpoint %s: %w", key, err)
		}
		if err := checkWindowPath(cp.Path, nLeft-key.LeftStart, nRight-key.RightStart); err != nil {
			return chain, fmt.Errorf("%w: checkpoint %s: %v", storage.ErrCorrupt, key, err)
		}
		chain = append(chain, cp)

		next, done, err := advance(cp, nLeft, nRight)
		if err != nil || done {
			return chain, err
		}
		key = next
	}
}

// advance returns the key of the window after cp. done is set once cp's path
// reaches the last unit of either sequence.
func advance(cp *models.Checkpoint, nLeft, nRight int) (models.CheckpointKey, bool, error) {
	key := cp.CheckpointKey
	last, _ := cp.Path.Last()
	if key.LeftStart+last.Left+1 >= nLeft || key.RightStart+last.Right+1 >= nRight {
		return key, true, nil
	}
	mid, _ := cp.Path.Midpoint()
	if mid.Left == 0 && mid.Right == 0 {
		return key, false, fmt.Errorf("%w: window %s made no progress", align.ErrInvariant, key)
	}
	return models.CheckpointKey{
		Iteration:  key.Iteration + 1,
		LeftStart:  key.LeftStart + mid.Left,
		RightStart: key.RightStart + mid.Right,
	}, false, nil
}

// step loads the checkpoint for key, or computes and stores it when absent.
func (d *Driver) step(ctx context.Context, key models.CheckpointKey, left, right []string) (*models.Checkpoint, bool, error) {
	lw := left[key.LeftStart:min(key.LeftStart+d.windowSize, len(left))]
	rw := right[key.RightStart:min(key.RightStart+d.windowSize, len(right))]

	cp, err := d.store.Get(ctx, key)
	switch {
	case err == nil:
		// A window stored by a run with another window size is still valid.
		if err := checkWindowPath(cp.Path, len(left)-key.LeftStart, len(right)-key.RightStart); err != nil {
			return nil, false, fmt.Errorf("%w: checkpoint %s: %v", storage.ErrCorrupt, key, err)
		}
		return cp, true, nil
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, false, fmt.Errorf("failed to load checkpoint %s: %w", key, err)
	}

	start := time.Now()
	sim, err := similarity.Cross(ctx, d.provider, lw, rw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to compute similarity for window %s: %w", key, err)
	}
	cost, err := align.BuildCostMatrix(sim)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build cost matrix for window %s: %w", key, err)
	}
	path, err := align.Search(cost, key.Iteration == 0)
	if err != nil {
		return nil, false, fmt.Errorf("failed to search window %s: %w", key, err)
	}
	if len(path) == 0 {
		return nil, false, fmt.Errorf("%w: empty path for window %s", align.ErrInvariant, key)
	}

	cp = &models.Checkpoint{CheckpointKey: key, Path: path, CreatedAt: time.Now().UTC()}
	if err := d.store.Put(ctx, cp, cost); err != nil {
		return nil, false, fmt.Errorf("failed to store checkpoint %s: %w", key, err)
	}
	d.logger.Debug("window computed",
		zap.Stringer("key", key),
		zap.Int("rows", len(rw)),
		zap.Int("cols", len(lw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return cp, false, nil
}

// checkWindowPath rejects stored paths that are empty, non-monotonic, or reach past
// the cols left and rows right units remaining from the window origin.
func checkWindowPath(p models.Path, cols, rows int) error {
	if len(p) == 0 {
		return errors.New("empty path")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	for _, pt := range p {
		if pt.Left < 0 || pt.Right < 0 || pt.Left >= cols || pt.Right >= rows {
			return fmt.Errorf("point %s outside %dx%d window", pt, cols, rows)
		}
	}
	return nil
}
