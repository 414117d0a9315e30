package align

import (
	"container/heap"
	"math"

	"github.com/hyperjump/narabe/internal/models"
)

// Move kinds, in tie-break preference order. A lower rank wins among
// predecessors that reach a cell at the same distance.
const (
	moveSource = iota
	moveDiagonal
	moveLeft
	moveRight
)

// steps lists outgoing edges in relaxation order: (dc, dr, kind).
var steps = [...]struct{ dc, dr, kind int }{
	{1, 1, moveDiagonal},
	{1, 0, moveLeft},
	{0, 1, moveRight},
}

// Search finds the minimum-cost monotonic path through cost and returns it in
// (left, right) = (column, row) coordinates, source and terminal inclusive.
//
// The grid is treated as a DAG: cell (c,r) leads to (c+1,r+1), (c+1,r) and
// (c,r+1), and entering a cell costs its matrix value. The single source is
// (0,0) unless flexibleStart is set, in which case every cell on the first row
// or column is a source seeded at its own cost. Any cell on the last row or last
// column is a terminal; the first terminal popped from the queue ends the search.
//
// Ties are deterministic: equal-distance queue entries pop in push order, and a
// cell reachable at equal cost from several predecessors keeps the diagonal one,
// then the left-step, then the right-step.
//
// Complexity: O(R*C*log(R*C)) time, O(R*C) memory.
func Search(cost [][]float64, flexibleStart bool) (models.Path, error) {
	rows, cols, err := dims(cost)
	if err != nil {
		return nil, err
	}
	for _, row := range cost {
		for _, v := range row {
			if !(v >= 0) || math.IsInf(v, 1) {
				return nil, ErrNegativeCost
			}
		}
	}

	s := newSearcher(cost, rows, cols)
	s.seed(flexibleStart)
	end, ok := s.run()
	if !ok {
		return nil, ErrInvariant
	}
	return s.trace(end), nil
}

// searcher holds the per-call Dijkstra state over a flattened grid (index = r*cols + c).
type searcher struct {
	cost    [][]float64
	rows    int
	cols    int
	dist    []float64
	prev    []int
	move    []int
	visited []bool
	pq      cellPQ
	seq     int
}

func newSearcher(cost [][]float64, rows, cols int) *searcher {
	n := rows * cols
	s := &searcher{
		cost:    cost,
		rows:    rows,
		cols:    cols,
		dist:    make([]float64, n),
		prev:    make([]int, n),
		move:    make([]int, n),
		visited: make([]bool, n),
	}
	for i := range s.dist {
		s.dist[i] = math.Inf(1)
		s.prev[i] = -1
		s.move[i] = math.MaxInt
	}
	heap.Init(&s.pq)
	return s
}

// seed pushes the source cells: (0,0) first, then the rest of the first row,
// then the rest of the first column.
func (s *searcher) seed(flexible bool) {
	s.source(0, 0)
	if !flexible {
		return
	}
	for c := 1; c < s.cols; c++ {
		s.source(c, 0)
	}
	for r := 1; r < s.rows; r++ {
		s.source(0, r)
	}
}

func (s *searcher) source(c, r int) {
	i := r*s.cols + c
	s.dist[i] = s.cost[r][c]
	s.move[i] = moveSource
	s.push(i)
}

// run pops cells until a terminal is finalized. It reports false only when the
// queue drains first, which cannot happen on a non-empty grid.
func (s *searcher) run() (int, bool) {
	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(cellItem)
		u := item.idx
		if s.visited[u] || item.dist > s.dist[u] {
			continue
		}
		s.visited[u] = true
		if s.terminal(u) {
			return u, true
		}
		s.relax(u)
	}
	return -1, false
}

func (s *searcher) terminal(i int) bool {
	r, c := i/s.cols, i%s.cols
	return r == s.rows-1 || c == s.cols-1
}

func (s *searcher) relax(u int) {
	r, c := u/s.cols, u%s.cols
	for _, st := range steps {
		nc, nr := c+st.dc, r+st.dr
		if nc >= s.cols || nr >= s.rows {
			continue
		}
		v := nr*s.cols + nc
		if s.visited[v] {
			continue
		}
		nd := s.dist[u] + s.cost[nr][nc]
		switch {
		case nd < s.dist[v]:
			s.dist[v] = nd
			s.prev[v] = u
			s.move[v] = st.kind
			s.push(v)
		case nd == s.dist[v] && st.kind < s.move[v]:
			// Same distance, preferred move: the queued entry stays valid.
			s.prev[v] = u
			s.move[v] = st.kind
		}
	}
}

func (s *searcher) push(i int) {
	heap.Push(&s.pq, cellItem{idx: i, dist: s.dist[i], seq: s.seq})
	s.seq++
}

// trace walks predecessors back from end to a source.
func (s *searcher) trace(end int) models.Path {
	var rev models.Path
	for i := end; i >= 0; i = s.prev[i] {
		rev = append(rev, models.Point{Left: i % s.cols, Right: i / s.cols})
	}
	path := make(models.Path, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// cellItem is a lazy queue entry; entries whose dist no longer matches are skipped on pop.
type cellItem struct {
	idx  int
	dist float64
	seq  int
}

// cellPQ is a min-heap ordered by (dist, seq).
type cellPQ []cellItem

func (pq cellPQ) Len() int { return len(pq) }

func (pq cellPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}

func (pq cellPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *cellPQ) Push(x any) { *pq = append(*pq, x.(cellItem)) }

func (pq *cellPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
