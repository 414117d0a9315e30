// Package render turns an alignment result into human-readable output:
// printable HTML pages, a terminal table, and a JSON listing of blocks.
package render

import (
	"strings"

	"github.com/hyperjump/narabe/internal/align"
	"github.com/hyperjump/narabe/internal/models"
)

// Row is one alignment block with its sentences resolved.
type Row struct {
	Index  int      `json:"index"`
	Lefts  []int    `json:"lefts"`
	Rights []int    `json:"rights"`
	Left   []string `json:"left"`
	Right  []string `json:"right"`
	Match  bool     `json:"match"`
}

// Rows groups the result path into blocks and resolves unit indices to sentences.
// Indices outside the unit slices are skipped.
func Rows(res *models.Result) []Row {
	blocks := align.Group(res.Path)
	rows := make([]Row, 0, len(blocks))
	for i, b := range blocks {
		ls, rs := b.Lefts(), b.Rights()
		rows = append(rows, Row{
			Index:  i,
			Lefts:  ls,
			Rights: rs,
			Left:   lookup(res.Left, ls),
			Right:  lookup(res.Right, rs),
			Match:  b.IsMatch(),
		})
	}
	return rows
}

func lookup(units []string, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(units) {
			out = append(out, strings.TrimSpace(units[i]))
		}
	}
	return out
}
