// Package engine runs a full alignment: extract both documents, split them into
// sentences, drive the windowed search, stitch the windows and write the outputs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/narabe/internal/align"
	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/internal/embedding"
	"github.com/hyperjump/narabe/internal/extract"
	"github.com/hyperjump/narabe/internal/models"
	"github.com/hyperjump/narabe/internal/render"
	"github.com/hyperjump/narabe/internal/similarity"
	"github.com/hyperjump/narabe/internal/split"
	"github.com/hyperjump/narabe/internal/storage"
	"github.com/hyperjump/narabe/internal/window"
)

// Engine aligns two documents and writes the result into the context directory.
type Engine struct {
	cfg       *config.Config
	provider  similarity.Provider
	store     storage.CheckpointStore
	extractor *extract.Extractor
	splitter  *split.Splitter
	logger    *zap.Logger
	owned     []io.Closer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger passed down to the window driver.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Report describes a finished alignment.
type Report struct {
	Result  *models.Result
	Summary *window.Summary
	Blocks  int
	Files   []string
}

// New returns an engine over an existing provider and store. The caller keeps
// ownership of both.
func New(cfg *config.Config, provider similarity.Provider, store storage.CheckpointStore, opts ...Option) (*Engine, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("engine: config and store are required")
	}
	e := &Engine{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		extractor: extract.NewExtractor(),
		splitter:  split.New(split.WithLowercase(cfg.Split.LowercaseOrDefault())),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Open builds the embedder and checkpoint store described by cfg and returns an
// engine that owns them; Close releases both.
func Open(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	store, err := storage.NewCheckpointStore(cfg.Storage.Backend, cfg.Storage.ContextDir, cfg.Storage.DatabasePathOrDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	emb, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	e, err := New(cfg, similarity.NewEmbeddingProvider(emb), store, WithLogger(logger))
	if err != nil {
		_ = emb.Close()
		_ = store.Close()
		return nil, err
	}
	e.owned = []io.Closer{emb, store}
	return e, nil
}

// OpenStore is like Open but without an embedder, for commands that only read
// existing checkpoints.
func OpenStore(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	store, err := storage.NewCheckpointStore(cfg.Storage.Backend, cfg.Storage.ContextDir, cfg.Storage.DatabasePathOrDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	e, err := New(cfg, nil, store, WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	e.owned = []io.Closer{store}
	return e, nil
}

// Close releases resources created by Open.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.owned {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.owned = nil
	return errors.Join(errs...)
}

// Load extracts and splits both documents concurrently.
func (e *Engine) Load(ctx context.Context, leftPath, rightPath string) (left, right []string, _ error) {
	var (
		wg      sync.WaitGroup
		errChan = make(chan error, 2)
	)
	load := func(path string, dst *[]string) {
		defer wg.Done()
		if err := ctx.Err(); err != nil {
			errChan <- err
			return
		}
		text, err := e.extractor.Extract(path)
		if err != nil {
			errChan <- fmt.Errorf("failed to extract %s: %w", path, err)
			return
		}
		*dst = e.splitter.Split(text)
	}
	wg.Add(2)
	go load(leftPath, &left)
	go load(rightPath, &right)
	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, nil, err
	}
	e.logger.Info("documents loaded",
		zap.String("left", leftPath),
		zap.Int("left_units", len(left)),
		zap.String("right", rightPath),
		zap.Int("right_units", len(right)),
	)
	return left, right, nil
}

// Align runs (or resumes) the windowed alignment of two documents and writes
// result.json and the HTML pages into the context directory.
func (e *Engine) Align(ctx context.Context, leftPath, rightPath string) (*Report, error) {
	if e.provider == nil {
		return nil, errors.New("engine: no similarity provider configured")
	}
	left, right, err := e.Load(ctx, leftPath, rightPath)
	if err != nil {
		return nil, err
	}
	return e.AlignUnits(ctx, left, right)
}

// AlignUnits is Align over already split sequences.
func (e *Engine) AlignUnits(ctx context.Context, left, right []string) (*Report, error) {
	d, err := window.NewDriver(e.provider, e.store, e.cfg.Alignment.WindowSize, window.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sum, err := d.Run(ctx, left, right)
	if err != nil {
		return nil, fmt.Errorf("alignment stopped: %w", err)
	}
	e.logger.Info("alignment finished",
		zap.Int("iterations", sum.Iterations),
		zap.Int("computed", sum.Computed),
		zap.Int("resumed", sum.Resumed),
		zap.Duration("elapsed", time.Since(start)),
	)
	rep, err := e.finish(left, right, sum.Checkpoints)
	if err != nil {
		return nil, err
	}
	rep.Summary = sum
	return rep, nil
}

// Assemble rebuilds the result from the checkpoints of a completed run without
// computing any window.
func (e *Engine) Assemble(ctx context.Context, leftPath, rightPath string) (*Report, error) {
	left, right, err := e.Load(ctx, leftPath, rightPath)
	if err != nil {
		return nil, err
	}
	chain, err := window.Chain(ctx, e.store, len(left), len(right))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble checkpoints: %w", err)
	}
	return e.finish(left, right, chain)
}

func (e *Engine) finish(left, right []string, chain []*models.Checkpoint) (*Report, error) {
	res := &models.Result{
		RunID:      uuid.NewString(),
		WindowSize: e.cfg.Alignment.WindowSize,
		Path:       align.Stitch(chain),
		Left:       left,
		Right:      right,
		CreatedAt:  time.Now().UTC(),
	}
	dir := e.cfg.Storage.ContextDir
	if err := storage.WriteResult(dir, res); err != nil {
		return nil, err
	}
	rows := render.Rows(res)
	files, err := render.WriteHTMLFiles(dir, rows, e.cfg.Output.HTMLColumns)
	if err != nil {
		return nil, err
	}
	lc, rc := res.Coverage()
	e.logger.Info("result written",
		zap.String("run_id", res.RunID),
		zap.Int("steps", len(res.Path)),
		zap.Int("blocks", len(rows)),
		zap.Float64("left_coverage", lc),
		zap.Float64("right_coverage", rc),
	)
	return &Report{Result: res, Blocks: len(rows), Files: files}, nil
}
