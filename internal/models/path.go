// Package models defines core data structures for alignment paths, blocks, checkpoints, and results.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Point is one cell of an alignment path: Left indexes the left sequence, Right the right one.
type Point struct {
	Left  int
	Right int
}

// Add returns p translated by the given offsets.
func (p Point) Add(left, right int) Point {
	return Point{Left: p.Left + left, Right: p.Right + right}
}

// MarshalJSON encodes the point as a two-element array [left, right].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Left, p.Right})
}

// UnmarshalJSON decodes a two-element array [left, right].
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point must have 2 coordinates, got %d", len(pair))
	}
	p.Left, p.Right = pair[0], pair[1]
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Left, p.Right)
}

// Path is an ordered, monotonic sequence of points.
type Path []Point

// Last returns the final point and false when the path is empty.
func (p Path) Last() (Point, bool) {
	if len(p) == 0 {
		return Point{}, false
	}
	return p[len(p)-1], true
}

// Midpoint returns the element at index len/2.
func (p Path) Midpoint() (Point, bool) {
	if len(p) == 0 {
		return Point{}, false
	}
	return p[len(p)/2], true
}

// Validate checks that each step advances left, right, or both by exactly one.
func (p Path) Validate() error {
	for i := 1; i < len(p); i++ {
		dl := p[i].Left - p[i-1].Left
		dr := p[i].Right - p[i-1].Right
		if dl < 0 || dr < 0 || dl > 1 || dr > 1 || (dl == 0 && dr == 0) {
			return fmt.Errorf("invalid step %s -> %s at index %d", p[i-1], p[i], i)
		}
	}
	return nil
}

// Block is a maximal run of path points mapping a set of left indices to a set of right indices,
// where at most one side has more than one distinct index.
type Block struct {
	Points []Point `json:"points"`
}

// Lefts returns the distinct left indices of the block in ascending order.
func (b Block) Lefts() []int {
	return distinct(b.Points, func(p Point) int { return p.Left })
}

// Rights returns the distinct right indices of the block in ascending order.
func (b Block) Rights() []int {
	return distinct(b.Points, func(p Point) int { return p.Right })
}

// IsMatch reports whether the block is a 1:1 correspondence.
func (b Block) IsMatch() bool {
	return len(b.Lefts()) == 1 && len(b.Rights()) == 1
}

func distinct(points []Point, key func(Point) int) []int {
	seen := make(map[int]struct{}, len(points))
	out := make([]int, 0, len(points))
	for _, p := range points {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
