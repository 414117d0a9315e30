package align

import "errors"

var (
	// ErrEmptyMatrix indicates a matrix with no rows or no columns.
	ErrEmptyMatrix = errors.New("align: matrix must be non-empty")

	// ErrRaggedMatrix indicates rows of different lengths.
	ErrRaggedMatrix = errors.New("align: matrix rows must have equal length")

	// ErrNegativeCost indicates a cost cell below zero; the search requires non-negative weights.
	ErrNegativeCost = errors.New("align: cost must be non-negative")

	// ErrInvariant marks conditions that cannot occur for well-formed input
	// (empty search result, a window that makes no progress).
	ErrInvariant = errors.New("align: invariant violated")
)

// dims validates m and returns its row and column counts.
func dims(m [][]float64) (rows, cols int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, ErrEmptyMatrix
	}
	cols = len(m[0])
	for _, row := range m {
		if len(row) != cols {
			return 0, 0, ErrRaggedMatrix
		}
	}
	return len(m), cols, nil
}
