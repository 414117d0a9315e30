package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hyperjump/narabe/pkg/utils"
)

// DefaultCellWidth is the number of runes shown per table cell before truncation.
const DefaultCellWidth = 60

// Table writes rows as a rounded terminal table. Sentences longer than cellWidth
// runes are truncated; cellWidth <= 0 disables truncation.
func Table(w io.Writer, rows []Row, cellWidth int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Left", "Right", "Kind"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.Index,
			cell(r.Left, cellWidth),
			cell(r.Right, cellWidth),
			kind(r),
		})
		tw.AppendSeparator()
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
	})
	tw.Render()
}

func cell(lines []string, width int) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = utils.Truncate(l, width)
	}
	return strings.Join(out, "\n")
}

func kind(r Row) string {
	if r.Match {
		return "1:1"
	}
	return fmt.Sprintf("%d:%d", len(r.Lefts), len(r.Rights))
}
