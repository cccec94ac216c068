// Package feedback records per-performance results and answers simple
// aggregate queries over them. Two durable backends exist: a rewrite-on-
// append JSON file (the default) and SQLite. Both keep the full history in
// memory, so a failed durable write never loses the record for the current
// process.
package feedback

import "time"

// Record is one performance outcome.
type Record struct {
	Text          string   `json:"text"`
	Comedian      string   `json:"comedian"`
	Topic         string   `json:"topic"`
	QualityScore  float64  `json:"quality_score"`
	AudienceScore float64  `json:"audience_score"`
	Notes         []string `json:"notes,omitempty"`
	Timestamp     float64  `json:"timestamp"`
}

// Now returns the current time as a feedback timestamp (unix seconds with
// sub-second precision).
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Store persists performance records. Append must serialize concurrent
// writers; the histories involved are small enough that whole-history
// rewrites are acceptable.
type Store interface {
	// Append adds the record. The in-memory history always grows; a
	// non-nil error means only the durable write failed.
	Append(rec Record) error

	// Records returns the full history in chronological append order.
	Records() []Record

	Close() error
}
