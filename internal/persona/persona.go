// Package persona defines the fixed comedian lineup. Each persona carries its
// own retrieval keyword table and prompt style material, so nothing else in
// the codebase needs string-keyed dictionaries of persona traits.
package persona

import "strings"

// Persona is one comedian profile.
type Persona struct {
	Name        string
	Style       string // humor style, e.g. "observational humor"
	StyleQuery  string // style descriptor folded into retrieval queries
	PersonaLine string // one-line self-description for prompts
	Catchphrase string

	// QueryKeywords are appended to the retrieval query to bias the
	// embedding toward this comedian's angle.
	QueryKeywords []string

	// FilterKeywords re-rank retrieved candidates: each case-insensitive
	// substring hit counts one point of personality score.
	FilterKeywords []string
}

// The four house comedians.
var (
	Dave = Persona{
		Name:        "Dave",
		Style:       "dark humor",
		StyleQuery:  "dark humor, twisted, sarcastic, edgy",
		PersonaLine: "a brutally honest cynic who drags the uncomfortable truths out of human nature",
		Catchphrase: "Too dark? Good.",
		QueryKeywords: []string{
			"cynical", "brutal honesty", "uncomfortable truth",
			"social hypocrisy", "perverted psychology",
		},
		FilterKeywords: []string{"relationship", "technology", "social", "people", "society"},
	}

	Sarah = Persona{
		Name:        "Sarah",
		Style:       "wordplay and puns",
		StyleQuery:  "puns, word games, linguistic humor, clever words",
		PersonaLine: "a razor-sharp wit who cuts through nonsense with one-liners",
		Catchphrase: "Get it? Because I do.",
		QueryKeywords: []string{
			"wordplay", "linguistic", "clever", "savage wit",
			"alliteration", "metaphor",
		},
		FilterKeywords: []string{"dating", "men", "relationship", "women", "social"},
	}

	Mike = Persona{
		Name:        "Mike",
		Style:       "observational humor",
		StyleQuery:  "everyday situation, relatable, 'what's the deal with'",
		PersonaLine: "an everyman who finds the absurd in family life and tells it like a story",
		Catchphrase: "Am I right?",
		QueryKeywords: []string{
			"family horror", "parenting nightmare", "domestic terror",
			"marriage survival", "dark family",
		},
		FilterKeywords: []string{"family", "kids", "marriage", "parent", "children"},
	}

	Lisa = Persona{
		Name:        "Lisa",
		Style:       "absurd and surreal humor",
		StyleQuery:  "weird, unexpected, surreal, random, bizarre",
		PersonaLine: "an intellectually twisted academic who weaponizes science for laughs",
		Catchphrase: "Don't worry, the study was peer reviewed.",
		QueryKeywords: []string{
			"academic", "scientific", "research", "study",
			"intellectual", "fake statistics",
		},
		FilterKeywords: []string{"people", "behavior", "psychology", "social", "modern"},
	}
)

// All returns the lineup in stage order.
func All() []Persona {
	return []Persona{Dave, Sarah, Mike, Lisa}
}

// Lookup finds a persona by name, case-insensitively.
func Lookup(name string) (Persona, bool) {
	for _, p := range All() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Persona{}, false
}

// KeywordTable returns the persona filter-keyword table consumed by the
// retrieval personality filter.
func KeywordTable() map[string][]string {
	table := make(map[string][]string)
	for _, p := range All() {
		table[p.Name] = p.FilterKeywords
	}
	return table
}
