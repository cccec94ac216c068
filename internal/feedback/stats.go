package feedback

import "sort"

// Trend labels for ComedianStats.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient data"
)

// PerformerStat is one row of the leaderboard.
type PerformerStat struct {
	Comedian     string
	AverageScore float64
	Performances int
}

// Stats summarizes one comedian's history.
type Stats struct {
	Comedian        string
	Performances    int
	AverageQuality  float64
	AverageAudience float64
	BestText        string
	BestTopic       string
	Trend           string
}

// TopPerformers groups records by comedian, averages the audience scores
// and returns the best n, descending. Comedians without records simply do
// not appear.
func TopPerformers(records []Record, n int) []PerformerStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if counts[rec.Comedian] == 0 {
			order = append(order, rec.Comedian)
		}
		sums[rec.Comedian] += rec.AudienceScore
		counts[rec.Comedian]++
	}

	stats := make([]PerformerStat, 0, len(order))
	for _, name := range order {
		stats = append(stats, PerformerStat{
			Comedian:     name,
			AverageScore: sums[name] / float64(counts[name]),
			Performances: counts[name],
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AverageScore > stats[j].AverageScore
	})

	if n >= 0 && n < len(stats) {
		stats = stats[:n]
	}
	return stats
}

// ComedianStats summarizes one comedian. The second return is false when
// the comedian has no records.
func ComedianStats(records []Record, comedian string) (Stats, bool) {
	var own []Record
	for _, rec := range records {
		if rec.Comedian == comedian {
			own = append(own, rec)
		}
	}
	if len(own) == 0 {
		return Stats{}, false
	}

	s := Stats{Comedian: comedian, Performances: len(own)}

	var qualitySum, audienceSum float64
	best := own[0]
	topicCounts := make(map[string]int)
	for _, rec := range own {
		qualitySum += rec.QualityScore
		audienceSum += rec.AudienceScore
		if rec.AudienceScore > best.AudienceScore {
			best = rec
		}
		topicCounts[rec.Topic]++
	}
	s.AverageQuality = qualitySum / float64(len(own))
	s.AverageAudience = audienceSum / float64(len(own))
	s.BestText = best.Text

	bestCount := 0
	for topic, count := range topicCounts {
		if count > bestCount || (count == bestCount && topic < s.BestTopic) {
			s.BestTopic = topic
			bestCount = count
		}
	}

	s.Trend = trend(own)
	return s, true
}

// trend splits the chronologically sorted history at the midpoint and
// compares the audience-score means of the halves.
func trend(records []Record) string {
	if len(records) < 3 {
		return TrendInsufficient
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	mid := len(sorted) / 2
	var firstSum, secondSum float64
	for _, rec := range sorted[:mid] {
		firstSum += rec.AudienceScore
	}
	for _, rec := range sorted[mid:] {
		secondSum += rec.AudienceScore
	}
	firstAvg := firstSum / float64(mid)
	secondAvg := secondSum / float64(len(sorted)-mid)

	switch {
	case secondAvg > firstAvg+0.1:
		return TrendImproving
	case secondAvg < firstAvg-0.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}
