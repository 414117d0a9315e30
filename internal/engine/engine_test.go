package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/internal/embedding"
	"github.com/hyperjump/narabe/internal/engine"
	"github.com/hyperjump/narabe/internal/models"
	"github.com/hyperjump/narabe/internal/similarity"
	"github.com/hyperjump/narabe/internal/storage"
)

const document = `The cat sleeps on the warm windowsill. A dog barks at the passing mail truck!
Rain falls over the quiet harbour town.
Who left the lantern burning all night?`

func testConfig(t *testing.T, window int) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Alignment: config.AlignmentConfig{WindowSize: window},
		Storage:   config.StorageConfig{ContextDir: t.TempDir()},
		Embedding: config.EmbeddingConfig{Provider: config.ProviderMock, Dimensions: 64},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newEngine(t *testing.T, cfg *config.Config, p similarity.Provider) (*engine.Engine, storage.CheckpointStore) {
	t.Helper()
	store, err := storage.NewDirStore(cfg.Storage.ContextDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	e, err := engine.New(cfg, p, store, engine.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return e, store
}

func mockProvider() similarity.Provider {
	return similarity.NewEmbeddingProvider(embedding.NewMockEmbedder(64))
}

func TestLoad_SplitsBothDocuments(t *testing.T) {
	cfg := testConfig(t, 10)
	e, _ := newEngine(t, cfg, mockProvider())

	left, right, err := e.Load(context.Background(), writeDoc(t, "l.txt", document), writeDoc(t, "r.txt", "One. Two."))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"the cat sleeps on the warm windowsill.",
		"a dog barks at the passing mail truck!",
		"rain falls over the quiet harbour town.",
		"who left the lantern burning all night?",
	}, left)
	assert.Equal(t, []string{"one.", "two."}, right)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := testConfig(t, 10)
	e, _ := newEngine(t, cfg, mockProvider())
	_, _, err := e.Load(context.Background(), writeDoc(t, "l.txt", document), "/nonexistent/r.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/r.txt")
}

func TestAlign_IdenticalDocumentsAlignDiagonally(t *testing.T) {
	cfg := testConfig(t, 300)
	e, _ := newEngine(t, cfg, mockProvider())

	rep, err := e.Align(context.Background(), writeDoc(t, "l.txt", document), writeDoc(t, "r.txt", document))
	require.NoError(t, err)

	want := models.Path{{Left: 0, Right: 0}, {Left: 1, Right: 1}, {Left: 2, Right: 2}, {Left: 3, Right: 3}}
	assert.Equal(t, want, rep.Result.Path)
	assert.Equal(t, 4, rep.Blocks)
	assert.Equal(t, 1, rep.Summary.Iterations)
	assert.NotEmpty(t, rep.Result.RunID)

	res, err := storage.ReadResult(cfg.Storage.ContextDir)
	require.NoError(t, err)
	assert.Equal(t, rep.Result.RunID, res.RunID)
	assert.Equal(t, want, res.Path)

	require.Len(t, rep.Files, 3)
	for _, name := range []string{"1-column.html", "2-columns.html", "3-columns.html"} {
		data, err := os.ReadFile(filepath.Join(cfg.Storage.ContextDir, name))
		require.NoError(t, err)
		assert.Equal(t, 4, strings.Count(string(data), "<hr />"), name)
	}
}

func TestAlign_ResumedRunAndAssembleAgree(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 4)
	cfg.Output.HTMLColumns = []int{2}

	var b strings.Builder
	for _, w := range strings.Fields("alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima") {
		b.WriteString(w + " is a word. ")
	}
	doc := b.String()
	left, right := writeDoc(t, "l.txt", doc), writeDoc(t, "r.txt", doc)

	e, _ := newEngine(t, cfg, mockProvider())
	first, err := e.Align(ctx, left, right)
	require.NoError(t, err)
	assert.Greater(t, first.Summary.Iterations, 1)
	require.NoError(t, first.Result.Path.Validate())
	last, ok := first.Result.Path.Last()
	require.True(t, ok)
	assert.True(t, last.Left == 11 || last.Right == 11, "path must reach the end of a document, got %s", last)

	second, err := e.Align(ctx, left, right)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Summary.Computed)
	assert.Equal(t, first.Result.Path, second.Result.Path)
	assert.NotEqual(t, first.Result.RunID, second.Result.RunID)

	assembled, err := e.Assemble(ctx, left, right)
	require.NoError(t, err)
	assert.Equal(t, first.Result.Path, assembled.Result.Path)
	assert.Nil(t, assembled.Summary)
	assert.Equal(t, []string{filepath.Join(cfg.Storage.ContextDir, "2-columns.html")}, assembled.Files)
}

func TestAssemble_WithoutCheckpoints(t *testing.T) {
	cfg := testConfig(t, 10)
	e, _ := newEngine(t, cfg, nil)
	_, err := e.Assemble(context.Background(), writeDoc(t, "l.txt", document), writeDoc(t, "r.txt", document))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAlign_EmptyDocument(t *testing.T) {
	cfg := testConfig(t, 10)
	e, _ := newEngine(t, cfg, mockProvider())
	_, err := e.Align(context.Background(), writeDoc(t, "l.txt", "  \n"), writeDoc(t, "r.txt", document))
	assert.Error(t, err)
}

func TestAlign_RequiresProvider(t *testing.T) {
	cfg := testConfig(t, 10)
	e, _ := newEngine(t, cfg, nil)
	_, err := e.Align(context.Background(), writeDoc(t, "l.txt", document), writeDoc(t, "r.txt", document))
	assert.Error(t, err)
}

func TestOpen_BuildsFromConfig(t *testing.T) {
	for _, backend := range []string{config.BackendDir, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, 300)
			cfg.Storage.Backend = backend
			e, err := engine.Open(cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			defer func() { assert.NoError(t, e.Close()) }()

			rep, err := e.Align(context.Background(), writeDoc(t, "l.txt", document), writeDoc(t, "r.txt", document))
			require.NoError(t, err)
			assert.Len(t, rep.Result.Path, 4)
		})
	}
}

func TestOpen_UnknownProvider(t *testing.T) {
	cfg := testConfig(t, 300)
	cfg.Embedding.Provider = "bert"
	_, err := engine.Open(cfg, nil)
	assert.Error(t, err)

	// The store lock must have been released.
	e, err := engine.OpenStore(cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, e.Close())
}
