// Package audience simulates a crowd's reaction to a performed joke. The
// simulation is deterministic: it reads the quality analysis, the topic, the
// joke length and the comedian's track record, never a random source.
package audience

import (
	"strings"

	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/quality"
)

// House taste. The crowd is moderately tough: it prefers stories and
// observations, tolerates puns, and only a niche enjoys the absurd.
var stylePreferences = map[string]float64{
	"observational": 0.6,
	"wordplay":      0.5,
	"storytelling":  0.7,
	"absurd":        0.4,
}

const defaultStylePreference = 0.3

var relatableTopics = map[string]bool{
	"work":          true,
	"technology":    true,
	"food":          true,
	"relationships": true,
}

const originalityWeight = 0.7

// Score simulates the audience score in [0,1] for one performance. The
// history is the comedian's prior records; an audience warms to comedians
// with a strong track record and cools slightly on ones who keep bombing.
func Score(text, comedian, topic string, a quality.Analysis, history []feedback.Record) float64 {
	// Quality carries most of the weight but is compressed: even a perfect
	// joke only guarantees 0.7 from structure alone.
	score := a.OverallScore * 0.7
	if score < 0.2 {
		score = 0.2
	}

	pref, ok := stylePreferences[a.HumorType]
	if !ok {
		pref = defaultStylePreference
	}
	score += pref * 0.15

	if relatableTopics[strings.ToLower(topic)] {
		score += 0.05
	}

	score += a.Originality * originalityWeight * 0.1
	score += historyBonus(comedian, history)

	words := len(strings.Fields(text))
	switch {
	case words > 40:
		score -= 0.2
	case words < 8:
		score -= 0.1
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

func historyBonus(comedian string, history []feedback.Record) float64 {
	var sum float64
	var n int
	for _, rec := range history {
		if rec.Comedian == comedian {
			sum += rec.AudienceScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	switch avg := sum / float64(n); {
	case avg > 0.7:
		return 0.1
	case avg < 0.4:
		return -0.05
	default:
		return 0
	}
}

// Notes produces short human-readable feedback lines for a performance: one
// on technical quality, one on the crowd reaction, then one per weak
// structural component.
func Notes(a quality.Analysis, audienceScore float64) []string {
	var notes []string

	switch {
	case a.OverallScore > 0.8:
		notes = append(notes, "Excellent technical quality")
	case a.OverallScore > 0.6:
		notes = append(notes, "Solid comedic structure")
	default:
		notes = append(notes, "The structure needs work")
	}

	switch {
	case audienceScore > 0.8:
		notes = append(notes, "The crowd went wild")
	case audienceScore > 0.6:
		notes = append(notes, "Good laughs from the crowd")
	case audienceScore > 0.4:
		notes = append(notes, "Lukewarm reaction from the crowd")
	default:
		notes = append(notes, "The crowd did not react well")
	}

	if a.SetupStrength < 0.5 {
		notes = append(notes, "Build more anticipation in the setup")
	}
	if a.PunchlineImpact < 0.5 {
		notes = append(notes, "The punchline needs more surprise")
	}
	if a.TimingScore < 0.6 {
		notes = append(notes, "Work on the timing: tighter or more developed")
	}
	if a.Relatability < 0.5 {
		notes = append(notes, "Make the joke more universal")
	}
	if a.Originality < 0.5 {
		notes = append(notes, "Find a fresher angle on the topic")
	}

	return notes
}

// React scores a performance and packages the result as a feedback record,
// stamped with the current time.
func React(text, comedian, topic string, a quality.Analysis, history []feedback.Record) feedback.Record {
	score := Score(text, comedian, topic, a, history)
	return feedback.Record{
		Text:          text,
		Comedian:      comedian,
		Topic:         topic,
		QualityScore:  a.OverallScore,
		AudienceScore: score,
		Notes:         Notes(a, score),
		Timestamp:     feedback.Now(),
	}
}
