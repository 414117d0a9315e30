// Package similarity produces pairwise semantic similarity matrices for text units.
package similarity

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/narabe/internal/embedding"
	"github.com/hyperjump/narabe/pkg/utils"
)

// ErrDimensionMismatch is returned when a provider's matrix does not match its input.
var ErrDimensionMismatch = errors.New("similarity: matrix dimensions do not match input")

// Provider returns the symmetric all-pairs similarity matrix for units, values in
// [-1,1] with a diagonal of 1.
type Provider interface {
	BatchSimilarity(ctx context.Context, units []string) ([][]float64, error)
}

// EmbeddingProvider computes cosine similarity between unit embeddings.
type EmbeddingProvider struct {
	embedder embedding.Embedder
}

// NewEmbeddingProvider returns a Provider backed by e.
func NewEmbeddingProvider(e embedding.Embedder) *EmbeddingProvider {
	return &EmbeddingProvider{embedder: e}
}

// BatchSimilarity embeds all units in one batch and returns their pairwise cosine similarity.
func (p *EmbeddingProvider) BatchSimilarity(ctx context.Context, units []string) ([][]float64, error) {
	vecs, err := p.embedder.EmbedBatch(ctx, units)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d units: %w", len(units), err)
	}
	if len(vecs) != len(units) {
		return nil, fmt.Errorf("%w: %d embeddings for %d units", ErrDimensionMismatch, len(vecs), len(units))
	}
	for i := range vecs {
		v := make([]float32, len(vecs[i]))
		copy(v, vecs[i])
		utils.NormalizeL2(v)
		vecs[i] = v
	}

	n := len(vecs)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		sim[i][i] = 1
		for j := i + 1; j < n; j++ {
			if len(vecs[i]) != len(vecs[j]) {
				return nil, fmt.Errorf("%w: embedding %d has %d dimensions, %d has %d",
					ErrDimensionMismatch, i, len(vecs[i]), j, len(vecs[j]))
			}
			s := utils.Clamp(utils.Dot(vecs[i], vecs[j]), -1, 1)
			sim[i][j], sim[j][i] = s, s
		}
	}
	return sim, nil
}

// Cross returns the similarity of every right unit against every left unit:
// rows index right, columns index left. Both sides are sent to the provider as
// one batch (left followed by right) so a provider sees the whole window at once.
func Cross(ctx context.Context, p Provider, left, right []string) ([][]float64, error) {
	units := make([]string, 0, len(left)+len(right))
	units = append(units, left...)
	units = append(units, right...)

	all, err := p.BatchSimilarity(ctx, units)
	if err != nil {
		return nil, err
	}
	n := len(units)
	if len(all) != n {
		return nil, fmt.Errorf("%w: %d rows for %d units", ErrDimensionMismatch, len(all), n)
	}
	for i, row := range all {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns for %d units", ErrDimensionMismatch, i, len(row), n)
		}
	}

	cross := make([][]float64, len(right))
	for r := range right {
		cross[r] = make([]float64, len(left))
		copy(cross[r], all[len(left)+r][:len(left)])
	}
	return cross, nil
}
