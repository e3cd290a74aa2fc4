// Package output persists one result artifact per annotated image pair.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"flickertag/internal/session"
)

// Writer writes session results as JSON documents, one file per pair.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at the output directory. The directory
// is created on the first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists a terminal session result to path. Paths outside the
// writer's directory are honored so manual mode can save anywhere.
func (w *Writer) Write(path string, result session.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Read loads a previously written result artifact.
func Read(path string) (session.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to read result: %w", err)
	}

	var result session.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return session.Result{}, fmt.Errorf("failed to decode result %s: %w", filepath.Base(path), err)
	}
	return result, nil
}

// Exists reports whether a result artifact is already present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
