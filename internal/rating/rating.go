// Package rating collects human verdicts on performed jokes and distills
// them into per-comedian learning patterns. The patterns feed back into
// joke-generation prompts, so a comedian who keeps bombing on a theme is
// told to drop it.
package rating

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmorandini/comedyclub/internal/feedback"
)

// Rating is one human verdict on a performed joke.
type Rating struct {
	Text      string  `json:"text"`
	Comedian  string  `json:"comedian"`
	Topic     string  `json:"topic"`
	Verdict   string  `json:"verdict"`
	Score     float64 `json:"score"`
	Comment   string  `json:"comment,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// Pattern is what the system has learned about one comedian from human
// ratings.
type Pattern struct {
	Comedian           string   `json:"comedian"`
	SuccessfulElements []string `json:"successful_elements"`
	FailedElements     []string `json:"failed_elements"`
	PreferredTopics    []string `json:"preferred_topics"`
	AverageRating      float64  `json:"average_rating"`
	TotalRatings       int      `json:"total_ratings"`
	LastUpdated        float64  `json:"last_updated"`
}

// verdictScores maps the five allowed verdicts onto a -2..+2 scale.
var verdictScores = map[string]float64{
	"hate":    -2,
	"dislike": -1,
	"meh":     0,
	"like":    1,
	"love":    2,
}

// Verdicts returns the allowed verdict words, worst to best.
func Verdicts() []string {
	return []string{"hate", "dislike", "meh", "like", "love"}
}

// VerdictScore maps a verdict word to its numeric score. The second return
// is false for unknown verdicts.
func VerdictScore(verdict string) (float64, bool) {
	score, ok := verdictScores[strings.ToLower(verdict)]
	return score, ok
}

// Book stores ratings and learned patterns in one JSON file.
type Book struct {
	path string

	mu       sync.Mutex
	ratings  []Rating
	patterns map[string]*Pattern
}

type bookFile struct {
	Ratings  []Rating            `json:"ratings"`
	Patterns map[string]*Pattern `json:"patterns"`
}

// Open loads (or initializes) a rating book. A missing or corrupt file
// yields an empty book with a warning, never an error.
func Open(path string) *Book {
	b := &Book{path: path, patterns: make(map[string]*Pattern)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: rating history unreadable, starting empty: %v", err)
		}
		return b
	}

	var file bookFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("Warning: rating history corrupt, starting empty: %v", err)
		return b
	}
	b.ratings = file.Ratings
	if file.Patterns != nil {
		b.patterns = file.Patterns
	}
	return b
}

// Add records a verdict and updates the comedian's learning pattern. An
// unknown verdict is an error; a failed durable write is returned but the
// rating stays effective in this process.
func (b *Book) Add(text, comedian, topic, verdict, comment string) (Rating, error) {
	score, ok := VerdictScore(verdict)
	if !ok {
		return Rating{}, fmt.Errorf("unknown verdict %q (want one of %s)",
			verdict, strings.Join(Verdicts(), ", "))
	}

	r := Rating{
		Text:      text,
		Comedian:  comedian,
		Topic:     topic,
		Verdict:   strings.ToLower(verdict),
		Score:     score,
		Comment:   comment,
		Timestamp: feedback.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.ratings = append(b.ratings, r)
	b.learn(r)
	return r, b.save()
}

// learn folds one rating into the comedian's pattern. Caller holds the lock.
func (b *Book) learn(r Rating) {
	p, ok := b.patterns[r.Comedian]
	if !ok {
		p = &Pattern{Comedian: r.Comedian}
		b.patterns[r.Comedian] = p
	}

	total := p.AverageRating*float64(p.TotalRatings) + r.Score
	p.TotalRatings++
	p.AverageRating = total / float64(p.TotalRatings)
	p.LastUpdated = r.Timestamp

	features := JokeFeatures(r.Text)
	switch {
	case r.Score >= 1:
		p.SuccessfulElements = appendMissing(p.SuccessfulElements, features...)
		p.PreferredTopics = appendMissing(p.PreferredTopics, r.Topic)
	case r.Score <= -1:
		p.FailedElements = appendMissing(p.FailedElements, features...)
	}
}

func appendMissing(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, have := range list {
			if have == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}

func (b *Book) save() error {
	file := bookFile{Ratings: b.ratings, Patterns: b.patterns}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rating history: %w", err)
	}
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating rating directory: %w", err)
		}
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("writing rating history: %w", err)
	}
	return nil
}

// Pattern returns the learned pattern for one comedian.
func (b *Book) Pattern(comedian string) (Pattern, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.patterns[comedian]
	if !ok {
		return Pattern{}, false
	}
	out := *p
	out.SuccessfulElements = append([]string(nil), p.SuccessfulElements...)
	out.FailedElements = append([]string(nil), p.FailedElements...)
	out.PreferredTopics = append([]string(nil), p.PreferredTopics...)
	return out, true
}

// Recent returns the latest n ratings, newest first.
func (b *Book) Recent(n int) []Rating {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Rating, len(b.ratings))
	copy(out, b.ratings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Len returns the number of recorded ratings.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ratings)
}

// EnhancePrompt appends the learned audience feedback to a generation
// prompt. With no pattern for the comedian the prompt passes through
// unchanged.
func (b *Book) EnhancePrompt(comedian, prompt string) string {
	p, ok := b.Pattern(comedian)
	if !ok {
		return prompt
	}

	var lines []string
	if len(p.SuccessfulElements) > 0 {
		lines = append(lines, "WHAT WORKS FOR YOU: "+strings.Join(head(p.SuccessfulElements, 3), ", "))
	}
	if len(p.FailedElements) > 0 {
		lines = append(lines, "AVOID: "+strings.Join(head(p.FailedElements, 3), ", "))
	}
	if len(p.PreferredTopics) > 0 {
		lines = append(lines, "TOPICS THAT LAND: "+strings.Join(head(p.PreferredTopics, 2), ", "))
	}
	switch {
	case p.AverageRating > 0.5:
		lines = append(lines, "The audience loves your style, keep it up.")
	case p.AverageRating < -0.5:
		lines = append(lines, "The audience is not laughing. Change the approach, go lighter.")
	}

	if len(lines) == 0 {
		return prompt
	}
	return prompt + "\n\n--- AUDIENCE FEEDBACK ---\n" + strings.Join(lines, "\n")
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// Feature labels assigned by JokeFeatures.
const (
	FeatureDarkHumor    = "dark humor"
	FeatureFamily       = "family reference"
	FeatureRelationship = "relationship humor"
	FeatureQuestion     = "question format"
	FeatureComplexSetup = "complex setup"
	FeatureSetupPunch   = "setup-punchline"
	FeatureShort        = "short joke"
	FeatureMedium       = "medium joke"
	FeatureLong         = "long joke"
)

var featureKeywords = []struct {
	label string
	words []string
}{
	{FeatureDarkHumor, []string{"death", "dead", "kill", "funeral", "war"}},
	{FeatureFamily, []string{"grandma", "grandpa", "family", "mom", "dad"}},
	{FeatureRelationship, []string{"girlfriend", "boyfriend", "wife", "husband", "dating"}},
}

// JokeFeatures extracts the coarse structural labels used for learning:
// theme keywords, question format, setup complexity and a length class.
func JokeFeatures(text string) []string {
	var features []string
	lower := strings.ToLower(text)

	for _, group := range featureKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				features = append(features, group.label)
				break
			}
		}
	}

	if strings.Contains(text, "?") {
		features = append(features, FeatureQuestion)
	}
	if strings.Count(text, ",") > 2 {
		features = append(features, FeatureComplexSetup)
	}
	for _, word := range []string{"why", "how come", "what"} {
		if strings.Contains(lower, word) {
			features = append(features, FeatureSetupPunch)
			break
		}
	}

	switch words := len(strings.Fields(text)); {
	case words < 10:
		features = append(features, FeatureShort)
	case words > 30:
		features = append(features, FeatureLong)
	default:
		features = append(features, FeatureMedium)
	}

	return features
}
