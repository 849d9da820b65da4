// Package sink writes newline-delimited JSON records in append mode.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vietddude/trendlake/internal/harvest/metrics"
)

// Writer appends one record per line.
type Writer interface {
	Write(record any) error
}

// File is an append-only JSON lines file. Every record goes straight to the
// file so an aborted run keeps everything written before the failure.
type File struct {
	name  string
	path  string
	mu    sync.Mutex
	f     *os.File
	count int
}

// Create truncates path and opens it for appending.
func Create(name, path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sink dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open sink %s: %w", name, err)
	}
	return &File{name: name, path: path, f: f}, nil
}

// Write marshals record and appends it with a trailing newline.
func (s *File) Write(record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", s.name, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return fmt.Errorf("sink %s is closed", s.name)
	}
	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("failed to write %s record: %w", s.name, err)
	}
	s.count++
	metrics.RecordsWritten.WithLabelValues(s.name).Inc()
	return nil
}

// Count returns the number of records written.
func (s *File) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Path returns the file location.
func (s *File) Path() string { return s.path }

// Close syncs and closes the file.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Sync()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.f = nil
	return err
}
