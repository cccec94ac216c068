package corpus

import (
	"math"
	"sort"
	"strings"
)

// DefaultClusterThreshold is the centroid distance at which merging stops.
// Tuned for normalized sentence embeddings, same scale as the retrieval side.
const DefaultClusterThreshold = 1.2

// Cluster is a thematic group of corpus records.
type Cluster struct {
	Label   string
	Records []JokeRecord
}

// Clusters groups the corpus records by embedding proximity using
// agglomerative centroid-linkage clustering: repeatedly merge the two
// closest clusters until the closest pair is farther apart than threshold.
// Labels come from the most frequent non-stop-words of the grouped texts.
func (c *Corpus) Clusters(threshold float64) []Cluster {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}

	records := c.Flatten()
	if len(records) == 0 {
		return nil
	}

	// Each record starts as its own cluster.
	type group struct {
		members  []int
		centroid []float64
	}
	groups := make([]*group, len(records))
	for i, r := range records {
		centroid := make([]float64, len(r.Embedding))
		copy(centroid, r.Embedding)
		groups[i] = &group{members: []int{i}, centroid: centroid}
	}

	for len(groups) > 1 {
		bestI, bestJ := -1, -1
		bestDist := math.MaxFloat64
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				d := euclidean(groups[i].centroid, groups[j].centroid)
				if d < bestDist {
					bestDist = d
					bestI, bestJ = i, j
				}
			}
		}
		if bestDist > threshold {
			break
		}

		a, b := groups[bestI], groups[bestJ]
		merged := &group{members: append(append([]int{}, a.members...), b.members...)}
		merged.centroid = make([]float64, len(a.centroid))
		na, nb := float64(len(a.members)), float64(len(b.members))
		for k := range merged.centroid {
			merged.centroid[k] = (a.centroid[k]*na + b.centroid[k]*nb) / (na + nb)
		}

		groups = append(groups[:bestJ], groups[bestJ+1:]...)
		groups[bestI] = merged
	}

	clusters := make([]Cluster, 0, len(groups))
	for _, g := range groups {
		sort.Ints(g.members)
		cl := Cluster{}
		for _, idx := range g.members {
			cl.Records = append(cl.Records, records[idx])
		}
		cl.Label = clusterLabel(cl.Records)
		clusters = append(clusters, cl)
	}

	// Largest clusters first; ties keep corpus order via first member text.
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Records) > len(clusters[j].Records)
	})
	return clusters
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for k := range a {
		diff := a[k] - b[k]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

var labelStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "can": true, "to": true, "of": true,
	"in": true, "for": true, "on": true, "with": true, "at": true,
	"by": true, "from": true, "as": true, "and": true, "but": true,
	"or": true, "not": true, "so": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true,
	"what": true, "when": true, "why": true, "how": true, "who": true,
	"you": true, "your": true, "they": true, "their": true, "my": true,
	"me": true, "i": true, "he": true, "she": true, "his": true, "her": true,
	"just": true, "like": true, "get": true, "got": true, "one": true,
	"about": true, "because": true, "dont": true, "don't": true,
}

// clusterLabel picks the three most frequent meaningful words across the
// cluster's texts, falling back to the first text truncated.
func clusterLabel(records []JokeRecord) string {
	counts := make(map[string]int)
	for _, r := range records {
		for _, word := range strings.Fields(strings.ToLower(r.Text)) {
			word = strings.Trim(word, ".,!?:;\"'()-[]")
			if len(word) > 2 && !labelStopWords[word] {
				counts[word]++
			}
		}
	}

	var top []string
	for i := 0; i < 3; i++ {
		best, bestCount := "", 0
		for word, count := range counts {
			if count > bestCount || (count == bestCount && best != "" && word < best) {
				best, bestCount = word, count
			}
		}
		if best == "" {
			break
		}
		top = append(top, strings.ToUpper(best[:1])+best[1:])
		delete(counts, best)
	}
	if len(top) > 0 {
		return strings.Join(top, " ")
	}

	text := records[0].Text
	if len(text) > 50 {
		text = text[:50]
	}
	return text
}
