package retrieval

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dmorandini/comedyclub/internal/corpus"
)

// ErrDimensionMismatch indicates the query vector's dimensionality does not
// match the corpus embeddings. This is a precondition violation and fails
// loudly instead of returning garbage similarities.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// RankedCandidate is a corpus entry scored against a query.
type RankedCandidate struct {
	Text             string
	Category         string
	Similarity       float64
	PersonalityScore int
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Zero-magnitude vectors
// yield 0, never NaN. Callers must pass equal-length vectors.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every corpus record against queryVec and returns the topK by
// descending cosine similarity. The sort is stable, so ties keep corpus
// order and results stay deterministic. An empty corpus ranks to an empty
// slice; topK larger than the corpus returns the whole corpus ranked.
func Rank(c *corpus.Corpus, queryVec []float64, topK int) ([]RankedCandidate, error) {
	records := c.Flatten()
	if len(records) == 0 {
		return nil, nil
	}
	if len(queryVec) != c.Dimension() {
		return nil, fmt.Errorf("%w: query has %d dimensions, corpus has %d",
			ErrDimensionMismatch, len(queryVec), c.Dimension())
	}

	candidates := make([]RankedCandidate, len(records))
	for i, r := range records {
		candidates[i] = RankedCandidate{
			Text:       r.Text,
			Category:   r.Category,
			Similarity: CosineSimilarity(queryVec, r.Embedding),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}
