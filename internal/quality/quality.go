// Package quality scores joke texts with a deterministic, explainable
// heuristic. Everything here is a pure function of the input string; the
// constants are fixed reference behavior, not tunables.
package quality

import "strings"

// Analysis holds the five sub-scores plus the derived overall score and
// humor type for one text.
type Analysis struct {
	HumorType       string  `json:"humor_type"`
	SetupStrength   float64 `json:"setup_strength"`
	PunchlineImpact float64 `json:"punchline_impact"`
	TimingScore     float64 `json:"timing_score"`
	Relatability    float64 `json:"relatability"`
	Originality     float64 `json:"originality"`
	OverallScore    float64 `json:"overall_score"`
}

var setupIndicators = []string{
	"have you ever noticed",
	"what's the deal with",
	"why is it that",
	"you know what i hate",
	"i was thinking about",
}

var pivotWords = []string{"but", "however", "actually", "turns out", "except", "until"}

var relatableTopics = []string{
	"work", "family", "food", "technology", "traffic", "sleep",
	"money", "relationships", "social media", "shopping", "weather",
}

var cliches = []string{
	"walked into a bar", "your mama", "that's what she said",
	"chicken cross the road", "lightbulb",
}

// Analyze scores a text. It is total: any string, including empty, yields a
// valid analysis with every score clamped to [0,1].
func Analyze(text string) Analysis {
	a := Analysis{
		SetupStrength:   setupStrength(text),
		PunchlineImpact: punchlineImpact(text),
		TimingScore:     timingScore(text),
		Relatability:    relatability(text),
		Originality:     originality(text),
		HumorType:       humorType(text),
	}
	a.OverallScore = (a.SetupStrength + a.PunchlineImpact + a.TimingScore +
		a.Relatability + a.Originality) / 5.0
	return a
}

func setupStrength(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.3

	for _, indicator := range setupIndicators {
		if strings.Contains(lower, indicator) {
			score += 0.3
			break
		}
	}

	if len(strings.Fields(text)) > 30 {
		score -= 0.2
	}
	if strings.Contains(text, "?") {
		score += 0.2
	}

	return clamp01(score)
}

func punchlineImpact(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.5

	for _, word := range pivotWords {
		if strings.Contains(lower, word) {
			score += 0.3
			break
		}
	}

	if containsWordplay(text) {
		score += 0.2
	}

	return clamp01(score)
}

func timingScore(text string) float64 {
	words := len(strings.Fields(text))
	switch {
	case words > 50:
		return 0.3
	case words > 30:
		return 0.6
	case words >= 10 && words <= 25:
		return 0.9
	default:
		return 0.7
	}
}

func relatability(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.4
	for _, topic := range relatableTopics {
		if strings.Contains(lower, topic) {
			score += 0.1
		}
	}
	return clamp01(score)
}

func originality(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.8
	for _, cliche := range cliches {
		if strings.Contains(lower, cliche) {
			score -= 0.3
		}
	}
	if score < 0.2 {
		return 0.2
	}
	return score
}

func humorType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "what do you call", "why did", "pun"):
		return "wordplay"
	case containsAny(lower, "have you noticed", "why is it"):
		return "observational"
	case containsAny(lower, "what if", "imagine"):
		return "absurd"
	case len(strings.Fields(text)) > 30:
		return "storytelling"
	default:
		return "mixed"
	}
}

// containsWordplay looks for two distinct words longer than three characters
// whose consonant skeletons match. A crude pun detector, kept crude on
// purpose: the scores depend on its exact behavior.
func containsWordplay(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	for i, w1 := range words {
		if len(w1) <= 3 {
			continue
		}
		for j, w2 := range words {
			if i == j || len(w2) <= 3 || w1 == w2 {
				continue
			}
			if stripVowels(w1) == stripVowels(w2) {
				return true
			}
		}
	}
	return false
}

func stripVowels(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsAny(text string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const improvementThreshold = 0.6

// Improvements lists one suggestion per dimension scoring below 0.6, in the
// fixed dimension order of the analysis.
func Improvements(a Analysis) []string {
	var suggestions []string
	if a.SetupStrength < improvementThreshold {
		suggestions = append(suggestions, "Make the setup clearer and build more anticipation")
	}
	if a.PunchlineImpact < improvementThreshold {
		suggestions = append(suggestions, "Add an element of surprise to the punchline")
	}
	if a.TimingScore < improvementThreshold {
		suggestions = append(suggestions, "Tighten the joke: cut non-essential words")
	}
	if a.Relatability < improvementThreshold {
		suggestions = append(suggestions, "Anchor the joke in situations the audience shares")
	}
	if a.Originality < improvementThreshold {
		suggestions = append(suggestions, "Drop the cliches and find a fresher angle")
	}
	return suggestions
}
