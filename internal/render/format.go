package render

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Format selects how Write prints blocks.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, FormatTable, FormatJSON, FormatHTML:
		return f, nil
	case "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown format %q (want auto, table, json or html)", s)
}

// Resolve picks table for terminals and JSON otherwise when f is auto.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if isTerminal(w) {
		return FormatTable
	}
	return FormatJSON
}

// Write prints rows to w in format f. columns is only used by the HTML format.
func Write(w io.Writer, f Format, rows []Row, columns int) error {
	switch f.Resolve(w) {
	case FormatTable:
		Table(w, rows, DefaultCellWidth)
		return nil
	case FormatJSON:
		return JSON(w, rows)
	case FormatHTML:
		return HTML(w, columns, rows)
	}
	return fmt.Errorf("unknown format %q", f)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
