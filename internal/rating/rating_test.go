package rating

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openTestBook(t *testing.T) (*Book, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratings.json")
	return Open(path), path
}

func TestVerdictScores(t *testing.T) {
	cases := map[string]float64{
		"hate":    -2,
		"dislike": -1,
		"meh":     0,
		"like":    1,
		"love":    2,
	}
	for verdict, want := range cases {
		got, ok := VerdictScore(verdict)
		if !ok || got != want {
			t.Errorf("%s: expected %v, got %v (ok=%v)", verdict, want, got, ok)
		}
	}
	// Case-insensitive.
	if got, ok := VerdictScore("LOVE"); !ok || got != 2 {
		t.Errorf("expected uppercase verdict accepted, got %v (ok=%v)", got, ok)
	}
	if _, ok := VerdictScore("spectacular"); ok {
		t.Error("expected unknown verdict rejected")
	}
}

func TestAddRejectsUnknownVerdict(t *testing.T) {
	book, _ := openTestBook(t)
	if _, err := book.Add("joke", "Dave", "work", "amazing", ""); err == nil {
		t.Fatal("expected error for unknown verdict")
	}
	if book.Len() != 0 {
		t.Error("expected nothing stored after rejected verdict")
	}
}

func TestLearningUpdatesRunningAverage(t *testing.T) {
	book, _ := openTestBook(t)

	book.Add("Why does my code work?", "Dave", "technology", "love", "")
	book.Add("Another joke about nothing", "Dave", "sports", "dislike", "")

	p, ok := book.Pattern("Dave")
	if !ok {
		t.Fatal("expected pattern for Dave")
	}
	if p.TotalRatings != 2 {
		t.Errorf("expected 2 ratings, got %d", p.TotalRatings)
	}
	// (2 + -1) / 2
	if math.Abs(p.AverageRating-0.5) > 1e-9 {
		t.Errorf("expected running average 0.5, got %v", p.AverageRating)
	}
}

func TestLearningCollectsElementsAndTopics(t *testing.T) {
	book, _ := openTestBook(t)

	book.Add("Why is my wife always right?", "Mike", "relationships", "love", "")
	p, _ := book.Pattern("Mike")

	if !contains(p.SuccessfulElements, FeatureQuestion) {
		t.Errorf("expected %q in successful elements, got %v", FeatureQuestion, p.SuccessfulElements)
	}
	if !contains(p.SuccessfulElements, FeatureRelationship) {
		t.Errorf("expected %q in successful elements, got %v", FeatureRelationship, p.SuccessfulElements)
	}
	if !contains(p.PreferredTopics, "relationships") {
		t.Errorf("expected preferred topic recorded, got %v", p.PreferredTopics)
	}

	// A bomb collects failed elements but no preferred topic.
	book.Add("A long rambling story, with commas, many commas, and no point", "Mike", "trains", "hate", "")
	p, _ = book.Pattern("Mike")
	if !contains(p.FailedElements, FeatureComplexSetup) {
		t.Errorf("expected %q in failed elements, got %v", FeatureComplexSetup, p.FailedElements)
	}
	if contains(p.PreferredTopics, "trains") {
		t.Errorf("expected no preferred topic for hated joke, got %v", p.PreferredTopics)
	}
}

func TestLearningIgnoresNeutralVerdicts(t *testing.T) {
	book, _ := openTestBook(t)
	book.Add("Why though?", "Lisa", "science", "meh", "")

	p, _ := book.Pattern("Lisa")
	if len(p.SuccessfulElements) != 0 || len(p.FailedElements) != 0 {
		t.Errorf("expected no learned elements for 'meh', got %+v", p)
	}
	if p.TotalRatings != 1 {
		t.Errorf("expected the rating still counted, got %d", p.TotalRatings)
	}
}

func TestElementsAreDeduplicated(t *testing.T) {
	book, _ := openTestBook(t)
	book.Add("Why one?", "Dave", "work", "love", "")
	book.Add("Why two?", "Dave", "work", "love", "")

	p, _ := book.Pattern("Dave")
	count := 0
	for _, e := range p.SuccessfulElements {
		if e == FeatureQuestion {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected %q once, found %d times", FeatureQuestion, count)
	}
	count = 0
	for _, topic := range p.PreferredTopics {
		if topic == "work" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected topic 'work' once, found %d times", count)
	}
}

func TestBookPersistsAcrossOpens(t *testing.T) {
	book, path := openTestBook(t)
	book.Add("Why persist?", "Sarah", "technology", "like", "nice one")

	reloaded := Open(path)
	if reloaded.Len() != 1 {
		t.Fatalf("expected 1 rating after reload, got %d", reloaded.Len())
	}
	p, ok := reloaded.Pattern("Sarah")
	if !ok {
		t.Fatal("expected pattern to survive reload")
	}
	if p.TotalRatings != 1 || p.AverageRating != 1 {
		t.Errorf("pattern did not round-trip: %+v", p)
	}

	recent := reloaded.Recent(5)
	if len(recent) != 1 || recent[0].Comment != "nice one" {
		t.Errorf("rating did not round-trip: %+v", recent)
	}
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}
	book := Open(path)
	if book.Len() != 0 {
		t.Errorf("expected empty book for corrupt file, got %d ratings", book.Len())
	}
}

func TestRecentNewestFirst(t *testing.T) {
	book, _ := openTestBook(t)
	book.Add("first", "Dave", "work", "meh", "")
	book.Add("second", "Dave", "work", "meh", "")
	book.Add("third", "Dave", "work", "meh", "")

	recent := book.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 ratings, got %d", len(recent))
	}
	if recent[0].Text != "third" || recent[1].Text != "second" {
		t.Errorf("expected newest first, got %q then %q", recent[0].Text, recent[1].Text)
	}
}

func TestEnhancePromptNoPatternPassthrough(t *testing.T) {
	book, _ := openTestBook(t)
	prompt := "Tell a joke about work."
	if got := book.EnhancePrompt("Dave", prompt); got != prompt {
		t.Errorf("expected passthrough for unrated comedian, got %q", got)
	}
}

func TestEnhancePromptAddsLearnedFeedback(t *testing.T) {
	book, _ := openTestBook(t)
	book.Add("Why does my wife laugh?", "Mike", "relationships", "love", "")

	got := book.EnhancePrompt("Mike", "Tell a joke.")
	if !strings.Contains(got, "AUDIENCE FEEDBACK") {
		t.Errorf("expected feedback section, got %q", got)
	}
	if !strings.Contains(got, "WHAT WORKS FOR YOU:") {
		t.Errorf("expected successful elements line, got %q", got)
	}
	if !strings.Contains(got, "TOPICS THAT LAND: relationships") {
		t.Errorf("expected topics line, got %q", got)
	}
	if !strings.Contains(got, "keep it up") {
		t.Errorf("expected positive coaching line for high average, got %q", got)
	}
}

func TestJokeFeaturesLengthClasses(t *testing.T) {
	short := JokeFeatures("Tiny joke here")
	if !contains(short, FeatureShort) {
		t.Errorf("expected short class, got %v", short)
	}

	medium := JokeFeatures(strings.Repeat("word ", 15))
	if !contains(medium, FeatureMedium) {
		t.Errorf("expected medium class, got %v", medium)
	}

	long := JokeFeatures(strings.Repeat("word ", 35))
	if !contains(long, FeatureLong) {
		t.Errorf("expected long class, got %v", long)
	}
}

func contains(list []string, item string) bool {
	for _, have := range list {
		if have == item {
			return true
		}
	}
	return false
}
