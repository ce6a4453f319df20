package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer serializes output writes so that two workers never write the same
// path at the same time. Files are written to a temporary sibling and
// renamed into place.
type Writer struct {
	mu      sync.Mutex
	written map[string]int
}

func NewWriter() *Writer {
	return &Writer{written: make(map[string]int)}
}

// Write stores data at path, creating parent directories. It returns how
// many times path was written before in this batch.
func (w *Writer) Write(path string, data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temporary output: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("moving output into place: %w", err)
	}
	prev := w.written[path]
	w.written[path]++
	return prev, nil
}

// Written returns the number of distinct paths written.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.written)
}
