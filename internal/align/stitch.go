package align

import (
	"sort"

	"github.com/hyperjump/narabe/internal/models"
)

// Stitch merges per-window checkpoints into one global path. Checkpoints are
// ordered by iteration, translated by their offsets, concatenated, and the
// overlap between consecutive windows is resolved by RemoveBacktracks.
func Stitch(checkpoints []*models.Checkpoint) models.Path {
	ordered := make([]*models.Checkpoint, 0, len(checkpoints))
	for _, cp := range checkpoints {
		if cp != nil {
			ordered = append(ordered, cp)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Iteration < ordered[j].Iteration
	})

	var all []models.Point
	for _, cp := range ordered {
		all = append(all, cp.GlobalPath()...)
	}
	return RemoveBacktracks(all)
}

// RemoveBacktracks walks points in order; when a point repeats one already
// kept, everything from that earlier occurrence onward is dropped and the point
// is appended again. The later window's continuation thus supersedes the
// earlier window's unconfirmed tail.
func RemoveBacktracks(points []models.Point) models.Path {
	out := make(models.Path, 0, len(points))
	index := make(map[models.Point]int, len(points))
	for _, p := range points {
		if i, ok := index[p]; ok {
			for _, q := range out[i:] {
				delete(index, q)
			}
			out = out[:i]
		}
		index[p] = len(out)
		out = append(out, p)
	}
	return out
}
