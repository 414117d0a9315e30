package models

import (
	"fmt"
	"time"
)

// CheckpointKey identifies one window of a run: its iteration and global offsets.
type CheckpointKey struct {
	Iteration  int `json:"iteration"`
	LeftStart  int `json:"left_start"`
	RightStart int `json:"right_start"`
}

func (k CheckpointKey) String() string {
	return fmt.Sprintf("%d-%d-%d", k.Iteration, k.LeftStart, k.RightStart)
}

// Checkpoint is the persisted result of one window: the path in window-local coordinates.
// The cost matrix used to produce it is stored alongside under the same key.
type Checkpoint struct {
	CheckpointKey
	Path      Path      `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// GlobalPath returns the checkpoint path translated by its offsets.
func (c *Checkpoint) GlobalPath() Path {
	out := make(Path, len(c.Path))
	for i, p := range c.Path {
		out[i] = p.Add(c.LeftStart, c.RightStart)
	}
	return out
}
