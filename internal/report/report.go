// Package report renders show results and club statistics as markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/stage"
)

// ShowReport renders a full show as a markdown document.
func ShowReport(result *stage.ShowResult, when time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Comedy Club Show: %s\n\n", when.Format("2006-01-02 15:04"))

	if len(result.Performances) == 0 {
		b.WriteString("Nobody made it on stage tonight.\n")
		return appendFailures(&b, result)
	}

	for i, perf := range result.Performances {
		fmt.Fprintf(&b, "## %d. %s on %q\n\n", i+1, perf.Persona.Name, perf.Topic)
		fmt.Fprintf(&b, "> %s\n\n", perf.Joke)
		fmt.Fprintf(&b, "*%s* scored **%.2f** on quality (%s) and **%.2f** with the audience.\n\n",
			perf.Persona.Name, perf.Analysis.OverallScore, perf.Analysis.HumorType,
			perf.Record.AudienceScore)
		if len(perf.Record.Notes) > 0 {
			for _, note := range perf.Record.Notes {
				fmt.Fprintf(&b, "- %s\n", note)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Scoreboard\n\n")
	writeLeaderboard(&b, leaderboardFrom(result))

	return appendFailures(&b, result)
}

func leaderboardFrom(result *stage.ShowResult) []feedback.PerformerStat {
	var records []feedback.Record
	for _, perf := range result.Performances {
		records = append(records, perf.Record)
	}
	return feedback.TopPerformers(records, -1)
}

func appendFailures(b *strings.Builder, result *stage.ShowResult) string {
	var failed []stage.StepResult
	for _, step := range result.Steps {
		if step.Err != nil {
			failed = append(failed, step)
		}
	}
	if len(failed) > 0 {
		b.WriteString("## No-shows\n\n")
		for _, step := range failed {
			fmt.Fprintf(b, "- %s: %v\n", step.Name, step.Err)
		}
	}
	return b.String()
}

// Leaderboard renders the all-time top performers as markdown.
func Leaderboard(stats []feedback.PerformerStat) string {
	var b strings.Builder
	b.WriteString("# Top Performers\n\n")
	writeLeaderboard(&b, stats)
	return b.String()
}

func writeLeaderboard(b *strings.Builder, stats []feedback.PerformerStat) {
	if len(stats) == 0 {
		b.WriteString("No performances recorded yet.\n")
		return
	}
	b.WriteString("| # | Comedian | Avg Audience | Sets |\n")
	b.WriteString("|---|----------|--------------|------|\n")
	for i, s := range stats {
		fmt.Fprintf(b, "| %d | %s | %.2f | %d |\n", i+1, s.Comedian, s.AverageScore, s.Performances)
	}
}

// ComedianReport renders one comedian's statistics as markdown.
func ComedianReport(s feedback.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Comedian)
	fmt.Fprintf(&b, "- Performances: %d\n", s.Performances)
	fmt.Fprintf(&b, "- Average quality: %.2f\n", s.AverageQuality)
	fmt.Fprintf(&b, "- Average audience score: %.2f\n", s.AverageAudience)
	fmt.Fprintf(&b, "- Best topic: %s\n", s.BestTopic)
	fmt.Fprintf(&b, "- Trend: %s\n", s.Trend)
	if s.BestText != "" {
		fmt.Fprintf(&b, "\nBest joke:\n\n> %s\n", s.BestText)
	}
	return b.String()
}
