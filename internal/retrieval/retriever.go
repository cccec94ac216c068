package retrieval

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/dmorandini/comedyclub/internal/corpus"
	"github.com/dmorandini/comedyclub/internal/persona"
)

// ErrEmbeddingUnavailable indicates the embedding provider failed; retrieval
// degrades to an empty candidate list.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// webContextLimit caps how much web context is folded into the query text.
const webContextLimit = 200

// Embedder turns texts into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// ContextProvider supplies current-events snippets for a topic. Empty string
// means no context; providers never fail the retrieval.
type ContextProvider interface {
	TopicContext(ctx context.Context, topic string) string
}

// Result is one retrieval outcome.
type Result struct {
	Jokes         []RankedCandidate
	WebContext    string
	EnhancedQuery string
	Status        string
}

// Retriever finds example jokes for a (persona, topic) query. Availability
// of the corpus, embedder and web context is decided once at construction;
// call sites never guess whether a failure means "unavailable" or "bug".
type Retriever struct {
	corpus   *corpus.Corpus
	embedder Embedder
	research ContextProvider // nil disables web context
	table    map[string][]string
	topK     int
}

// New creates a retriever over a loaded corpus. A nil research provider
// disables web context; topK <= 0 defaults to 3.
func New(c *corpus.Corpus, embedder Embedder, research ContextProvider, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		corpus:   c,
		embedder: embedder,
		research: research,
		table:    persona.KeywordTable(),
		topK:     topK,
	}
}

// Available reports whether the retriever can produce candidates at all.
func (r *Retriever) Available() bool {
	return r.corpus != nil && r.corpus.Len() > 0 && r.embedder != nil
}

// Retrieve ranks corpus examples for the persona and topic. Embedding
// failures degrade to an empty candidate list with a warning; a dimension
// mismatch between embedder and corpus is a configuration bug and fails
// loudly.
func (r *Retriever) Retrieve(ctx context.Context, p persona.Persona, topic string) (*Result, error) {
	result := &Result{Status: "ok"}

	if r.research != nil {
		result.WebContext = r.research.TopicContext(ctx, topic)
	}
	result.EnhancedQuery = r.buildQuery(p, topic, result.WebContext)

	if !r.Available() {
		result.Status = "retrieval unavailable"
		return result, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{result.EnhancedQuery})
	if err != nil || len(vectors) == 0 {
		log.Printf("Warning: %v (query for %s/%s): %v", ErrEmbeddingUnavailable, p.Name, topic, err)
		result.Status = "embedding unavailable"
		return result, nil
	}

	// Rank twice the requested depth so the personality filter has slack,
	// then trim after re-ranking.
	candidates, err := Rank(r.corpus, vectors[0], r.topK*2)
	if err != nil {
		return nil, err
	}
	candidates = Filter(candidates, p.Name, r.table)
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}
	result.Jokes = candidates
	return result, nil
}

// buildQuery composes the personalized retrieval query: style descriptor,
// topic, the persona's query keywords, and truncated web context.
func (r *Retriever) buildQuery(p persona.Persona, topic, webContext string) string {
	var b strings.Builder
	style := p.StyleQuery
	if style == "" {
		style = p.Style
	}
	b.WriteString(style)
	b.WriteString(" comedy about ")
	b.WriteString(topic)
	if len(p.QueryKeywords) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(p.QueryKeywords, " "))
	}
	if webContext != "" {
		b.WriteString(" current context: ")
		b.WriteString(truncateContext(webContext, webContextLimit))
	}
	return b.String()
}

// truncateContext caps the context at limit bytes without splitting a rune,
// so the embedder never sees invalid UTF-8.
func truncateContext(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
