package feedback

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore keeps the history in a single JSON array file, rewritten in
// full on every append. O(history) per append, fine at demo scale.
type JSONStore struct {
	path string

	mu      sync.Mutex
	records []Record
}

// OpenJSON loads (or initializes) a JSON feedback file. A missing or
// corrupt file yields an empty history with a warning, never an error.
func OpenJSON(path string) *JSONStore {
	s := &JSONStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: feedback history unreadable, starting empty: %v", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		log.Printf("Warning: feedback history corrupt, starting empty: %v", err)
		s.records = nil
	}
	return s
}

// Append adds the record in memory and rewrites the file. On a write error
// the record stays queryable in this process and the error is returned.
func (s *JSONStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feedback history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating feedback directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing feedback history: %w", err)
	}
	return nil
}

// Records returns a copy of the history in append order.
func (s *JSONStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Close is a no-op for the JSON backend.
func (s *JSONStore) Close() error {
	return nil
}
