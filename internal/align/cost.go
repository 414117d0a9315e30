package align

import "math"

// BuildCostMatrix converts a similarity matrix (values in [-1,1]) into a traversal cost
// matrix in [0,1], lower meaning better alignment.
//
// Each cell becomes (1 - s) / 2, then the matrix is min-max normalized per row and per
// column independently and the two results are averaged. Blending both normalizations
// keeps a long axis from dominating and leaves strong off-diagonal cells competitive.
func BuildCostMatrix(sim [][]float64) ([][]float64, error) {
	rows, cols, err := dims(sim)
	if err != nil {
		return nil, err
	}
	raw := make([][]float64, rows)
	for r := range sim {
		raw[r] = make([]float64, cols)
		for c, s := range sim[r] {
			raw[r][c] = (1 - s) / 2
		}
	}
	return Blend(NormalizeRows(raw), NormalizeColumns(raw)), nil
}

// NormalizeRows min-max scales each row into [0,1]. A constant row maps to zeros.
func NormalizeRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for r, row := range m {
		out[r] = make([]float64, len(row))
		if len(row) == 0 {
			continue
		}
		lo, hi := row[0], row[0]
		for _, v := range row[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		span := hi - lo
		if span <= 0 {
			continue
		}
		for c, v := range row {
			out[r][c] = clamp01((v - lo) / span)
		}
	}
	return out
}

// NormalizeColumns min-max scales each column into [0,1]. A constant column maps to zeros.
func NormalizeColumns(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for r := range m {
		out[r] = make([]float64, len(m[r]))
	}
	if len(m) == 0 || len(m[0]) == 0 {
		return out
	}
	cols := len(m[0])
	lo := make([]float64, cols)
	hi := make([]float64, cols)
	for c := 0; c < cols; c++ {
		lo[c], hi[c] = math.Inf(1), math.Inf(-1)
	}
	for _, row := range m {
		for c, v := range row {
			lo[c] = math.Min(lo[c], v)
			hi[c] = math.Max(hi[c], v)
		}
	}
	for r, row := range m {
		for c, v := range row {
			span := hi[c] - lo[c]
			if span <= 0 {
				continue
			}
			out[r][c] = clamp01((v - lo[c]) / span)
		}
	}
	return out
}

// Blend returns the element-wise mean of two matrices of the same shape.
func Blend(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for r := range a {
		out[r] = make([]float64, len(a[r]))
		for c := range a[r] {
			out[r][c] = 0.5 * (a[r][c] + b[r][c])
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
