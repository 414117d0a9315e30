package models

import "time"

// Result is the final alignment artifact: the stitched global path plus both unit sequences,
// enough for a renderer to rebuild blocks without re-running the engine.
type Result struct {
	RunID      string    `json:"run_id"`
	WindowSize int       `json:"window_size"`
	Path       Path      `json:"path"`
	Left       []string  `json:"left"`
	Right      []string  `json:"right"`
	CreatedAt  time.Time `json:"created_at"`
}

// Coverage returns the fraction of left and right units that appear on the path.
func (r *Result) Coverage() (left, right float64) {
	if len(r.Left) == 0 || len(r.Right) == 0 {
		return 0, 0
	}
	ls := make(map[int]struct{})
	rs := make(map[int]struct{})
	for _, p := range r.Path {
		ls[p.Left] = struct{}{}
		rs[p.Right] = struct{}{}
	}
	return float64(len(ls)) / float64(len(r.Left)), float64(len(rs)) / float64(len(r.Right))
}
