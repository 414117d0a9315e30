// Package cli formats command results for the narabe command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hyperjump/narabe/internal/engine"
	"github.com/hyperjump/narabe/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a user-supplied output format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// ReportSummary is the printable digest of an engine report.
type ReportSummary struct {
	RunID         string   `json:"run_id"`
	LeftUnits     int      `json:"left_units"`
	RightUnits    int      `json:"right_units"`
	Steps         int      `json:"steps"`
	Blocks        int      `json:"blocks"`
	LeftCoverage  float64  `json:"left_coverage"`
	RightCoverage float64  `json:"right_coverage"`
	Windows       int      `json:"windows,omitempty"`
	Computed      int      `json:"computed,omitempty"`
	Resumed       int      `json:"resumed,omitempty"`
	Files         []string `json:"files"`
}

// Summarize digests rep for printing.
func Summarize(rep *engine.Report) ReportSummary {
	res := rep.Result
	lc, rc := res.Coverage()
	s := ReportSummary{
		RunID:         res.RunID,
		LeftUnits:     len(res.Left),
		RightUnits:    len(res.Right),
		Steps:         len(res.Path),
		Blocks:        rep.Blocks,
		LeftCoverage:  lc,
		RightCoverage: rc,
		Files:         rep.Files,
	}
	if rep.Summary != nil {
		s.Windows = rep.Summary.Iterations
		s.Computed = rep.Summary.Computed
		s.Resumed = rep.Summary.Resumed
	}
	return s
}

// WriteReport writes the summary of rep to w in the given format.
func WriteReport(w io.Writer, rep *engine.Report, format OutputFormat) error {
	s := Summarize(rep)
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Aligned %d left and %d right sentences into %d blocks (%d path steps)\n",
		s.LeftUnits, s.RightUnits, s.Blocks, s.Steps)
	fmt.Fprintf(w, "Coverage: left %.1f%%, right %.1f%%\n", s.LeftCoverage*100, s.RightCoverage*100)
	if s.Windows > 0 {
		fmt.Fprintf(w, "Windows: %d (%d computed, %d resumed)\n", s.Windows, s.Computed, s.Resumed)
	}
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	for _, f := range s.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	return nil
}

// Status describes the contents of a context directory.
type Status struct {
	ContextDir    string    `json:"context_dir"`
	Backend       string    `json:"backend"`
	WindowSize    int       `json:"window_size"`
	Provider      string    `json:"embedding_provider"`
	Checkpoints   int       `json:"checkpoints"`
	LastIteration int       `json:"last_iteration"`
	DiskBytes     int64     `json:"disk_bytes"`
	RunID         string    `json:"run_id,omitempty"`
	ResultAt      time.Time `json:"result_at,omitzero"`
	Steps         int       `json:"steps,omitempty"`
}

// WriteStatus writes st to w as a table, or JSON.
func WriteStatus(w io.Writer, st Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Setting", "Value"})
	tw.AppendRows([]table.Row{
		{"Context", utils.Truncate(st.ContextDir, 60)},
		{"Backend", st.Backend},
		{"Window size", st.WindowSize},
		{"Embedding", st.Provider},
		{"Checkpoints", st.Checkpoints},
		{"Last iteration", lastIteration(st)},
		{"Disk usage", FormatBytes(st.DiskBytes)},
	})
	if st.RunID != "" {
		tw.AppendSeparator()
		tw.AppendRows([]table.Row{
			{"Last run", st.RunID},
			{"Finished", st.ResultAt.Local().Format(time.RFC3339)},
			{"Path steps", st.Steps},
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	tw.Render()
	return nil
}

func lastIteration(st Status) string {
	if st.Checkpoints == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", st.LastIteration)
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
