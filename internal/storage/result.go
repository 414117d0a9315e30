package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/narabe/internal/models"
)

// ResultFile is the name of the final alignment artifact inside a context directory.
const ResultFile = "result.json"

// WriteResult atomically writes res to dir/result.json.
func WriteResult(dir string, res *models.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(dir, ResultFile), res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// ReadResult reads dir/result.json.
func ReadResult(dir string) (*models.Result, error) {
	path := filepath.Join(dir, ResultFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var res models.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &res, nil
}
