package align

import "github.com/hyperjump/narabe/internal/models"

// Group partitions path into blocks. A point joins the current block unless it
// would give the block more than one distinct left index and more than one
// distinct right index at the same time; then it opens a new block. Every block
// is therefore 1:1, 1:N or N:1, and concatenating the blocks yields path.
func Group(path models.Path) []models.Block {
	var (
		blocks []models.Block
		cur    []models.Point
		lefts  = make(map[int]struct{})
		rights = make(map[int]struct{})
	)
	for _, p := range path {
		nl, nr := len(lefts), len(rights)
		if _, ok := lefts[p.Left]; !ok {
			nl++
		}
		if _, ok := rights[p.Right]; !ok {
			nr++
		}
		if len(cur) > 0 && nl > 1 && nr > 1 {
			blocks = append(blocks, models.Block{Points: cur})
			cur = nil
			lefts = make(map[int]struct{})
			rights = make(map[int]struct{})
		}
		cur = append(cur, p)
		lefts[p.Left] = struct{}{}
		rights[p.Right] = struct{}{}
	}
	if len(cur) > 0 {
		blocks = append(blocks, models.Block{Points: cur})
	}
	return blocks
}
