package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrUnavailable indicates the corpus file is missing or malformed.
// Callers are expected to degrade to an empty candidate list, not crash.
var ErrUnavailable = errors.New("corpus unavailable")

// JokeRecord is one pre-embedded example joke. Immutable after load.
type JokeRecord struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Category  string    `json:"category"`
	Source    string    `json:"source,omitempty"`
}

// Corpus holds the example jokes grouped by category, loaded once per
// process and read-only thereafter.
type Corpus struct {
	byCategory map[string][]JokeRecord
	flat       []JokeRecord
	dimension  int
}

// Load reads a corpus file of the form {category: [records]}. The load is
// all-or-nothing: any structural problem (unreadable file, bad JSON, a record
// without text or embedding, inconsistent embedding dimensions) fails the
// whole load with an error wrapping ErrUnavailable.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, path, err)
	}

	var byCategory map[string][]JokeRecord
	if err := json.Unmarshal(data, &byCategory); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrUnavailable, path, err)
	}

	c := &Corpus{byCategory: byCategory}
	for _, category := range c.Categories() {
		records := byCategory[category]
		for i := range records {
			r := &records[i]
			if r.Category == "" {
				r.Category = category
			}
			if r.Text == "" {
				return nil, fmt.Errorf("%w: category %q record %d has no text", ErrUnavailable, category, i)
			}
			if len(r.Embedding) == 0 {
				return nil, fmt.Errorf("%w: category %q record %d has no embedding", ErrUnavailable, category, i)
			}
			if c.dimension == 0 {
				c.dimension = len(r.Embedding)
			} else if len(r.Embedding) != c.dimension {
				return nil, fmt.Errorf("%w: category %q record %d has dimension %d, want %d",
					ErrUnavailable, category, i, len(r.Embedding), c.dimension)
			}
			c.flat = append(c.flat, *r)
		}
	}

	return c, nil
}

// New builds a corpus from already-grouped records. Used by tests and by
// callers that assemble a corpus in memory; the same validation as Load
// applies.
func New(byCategory map[string][]JokeRecord) (*Corpus, error) {
	data, err := json.Marshal(byCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var copied map[string][]JokeRecord
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c := &Corpus{byCategory: copied}
	for _, category := range c.Categories() {
		for i, r := range copied[category] {
			if r.Category == "" {
				copied[category][i].Category = category
				r.Category = category
			}
			if r.Text == "" || len(r.Embedding) == 0 {
				return nil, fmt.Errorf("%w: category %q record %d incomplete", ErrUnavailable, category, i)
			}
			if c.dimension == 0 {
				c.dimension = len(r.Embedding)
			} else if len(r.Embedding) != c.dimension {
				return nil, fmt.Errorf("%w: category %q record %d has dimension %d, want %d",
					ErrUnavailable, category, i, len(r.Embedding), c.dimension)
			}
			c.flat = append(c.flat, r)
		}
	}
	return c, nil
}

// Empty returns a corpus with no records, used when loading failed and the
// caller chose to degrade.
func Empty() *Corpus {
	return &Corpus{byCategory: map[string][]JokeRecord{}}
}

// Len returns the total number of records across all categories.
func (c *Corpus) Len() int {
	return len(c.flat)
}

// Dimension returns the embedding dimensionality, 0 for an empty corpus.
func (c *Corpus) Dimension() int {
	return c.dimension
}

// Categories returns the category labels in sorted order.
func (c *Corpus) Categories() []string {
	names := make([]string, 0, len(c.byCategory))
	for name := range c.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the records of one category in original order.
func (c *Corpus) Records(category string) []JokeRecord {
	return c.byCategory[category]
}

// Flatten returns all records in deterministic order: categories sorted,
// original order within each category. The ranker ties break on this order.
func (c *Corpus) Flatten() []JokeRecord {
	return c.flat
}
