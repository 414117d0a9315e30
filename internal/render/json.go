package render

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSON writes rows as an indented JSON array.
func JSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if rows == nil {
		rows = []Row{}
	}
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode blocks: %w", err)
	}
	return nil
}
