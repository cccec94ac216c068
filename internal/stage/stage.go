// Package stage runs performances: it wires retrieval, generation, quality
// analysis, the audience simulation and the feedback store into one pipeline,
// and runs multi-round shows over the full lineup.
package stage

import (
	"context"
	"fmt"
	"log"

	"github.com/dmorandini/comedyclub/internal/audience"
	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/llm"
	"github.com/dmorandini/comedyclub/internal/persona"
	"github.com/dmorandini/comedyclub/internal/quality"
	"github.com/dmorandini/comedyclub/internal/rating"
	"github.com/dmorandini/comedyclub/internal/retrieval"
)

// Performance is one finished set: the joke plus everything measured about
// it.
type Performance struct {
	Persona   persona.Persona
	Topic     string
	Joke      string
	Analysis  quality.Analysis
	Record    feedback.Record
	Retrieval *retrieval.Result
	Tips      []string
}

// StepResult holds the outcome of one performance within a show.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// ShowResult holds the results of a full show.
type ShowResult struct {
	Performances []Performance
	Steps        []StepResult
}

// Stage orchestrates performances.
type Stage struct {
	provider  llm.Provider
	retriever *retrieval.Retriever
	store     feedback.Store
	ratings   *rating.Book // nil disables prompt learning
	maxTokens int
}

// New creates a stage. The retriever and rating book may be nil; the
// provider and store may not.
func New(provider llm.Provider, retriever *retrieval.Retriever, store feedback.Store, ratings *rating.Book, maxTokens int) *Stage {
	if maxTokens <= 0 {
		maxTokens = 150
	}
	return &Stage{
		provider:  provider,
		retriever: retriever,
		store:     store,
		ratings:   ratings,
		maxTokens: maxTokens,
	}
}

// Perform runs one set: retrieve examples, generate the joke, score it, let
// the audience react and record the outcome. Retrieval problems degrade; a
// generation failure aborts the performance.
func (s *Stage) Perform(ctx context.Context, p persona.Persona, topic string) (*Performance, error) {
	var ret *retrieval.Result
	if s.retriever != nil {
		var err error
		ret, err = s.retriever.Retrieve(ctx, p, topic)
		if err != nil {
			return nil, fmt.Errorf("retrieving examples for %s: %w", p.Name, err)
		}
		if ret.Status != "ok" {
			log.Printf("Retrieval degraded for %s/%s: %s", p.Name, topic, ret.Status)
		}
	}

	prompt := buildPrompt(p, topic, ret)
	if s.ratings != nil {
		prompt = s.ratings.EnhancePrompt(p.Name, prompt)
	}

	response, err := s.provider.Generate(ctx, prompt, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating joke for %s: %w", p.Name, err)
	}
	joke := extractJoke(response)
	if joke == "" {
		return nil, fmt.Errorf("empty joke from provider for %s", p.Name)
	}

	analysis := quality.Analyze(joke)
	record := audience.React(joke, p.Name, topic, analysis, s.store.Records())
	if err := s.store.Append(record); err != nil {
		log.Printf("Warning: could not persist feedback for %s: %v", p.Name, err)
	}

	return &Performance{
		Persona:   p,
		Topic:     topic,
		Joke:      joke,
		Analysis:  analysis,
		Record:    record,
		Retrieval: ret,
		Tips:      quality.Improvements(analysis),
	}, nil
}

// RunShow performs the given number of rounds over the full lineup, one
// topic per round (topics cycle when rounds exceed them). A failed set is
// recorded and the show goes on.
func (s *Stage) RunShow(ctx context.Context, topics []string, rounds int) *ShowResult {
	result := &ShowResult{}
	if rounds <= 0 || len(topics) == 0 {
		return result
	}

	lineup := persona.All()
	for round := 0; round < rounds; round++ {
		topic := topics[round%len(topics)]
		for _, p := range lineup {
			name := fmt.Sprintf("%s on %q", p.Name, topic)

			perf, err := s.Perform(ctx, p, topic)
			if err != nil {
				result.Steps = append(result.Steps, StepResult{Name: name, Err: err})
				log.Printf("Performance failed: %s: %v", name, err)
				continue
			}

			result.Performances = append(result.Performances, *perf)
			result.Steps = append(result.Steps, StepResult{
				Name: name,
				Summary: fmt.Sprintf("quality %.2f, audience %.2f",
					perf.Analysis.OverallScore, perf.Record.AudienceScore),
			})
		}
	}
	return result
}
