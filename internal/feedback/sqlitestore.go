package feedback

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const performancesSchema = `
CREATE TABLE IF NOT EXISTS performances (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	comedian TEXT NOT NULL,
	topic TEXT NOT NULL,
	joke TEXT NOT NULL,
	quality_score REAL NOT NULL,
	audience_score REAL NOT NULL,
	notes TEXT,
	ts REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_performances_comedian ON performances(comedian);
`

// SQLiteStore keeps the history in a SQLite database. The full history is
// also cached in memory so failed inserts do not lose records and Records
// stays cheap.
type SQLiteStore struct {
	conn *sql.DB
	path string

	mu      sync.Mutex
	records []Record
}

// OpenSQLite creates or opens a SQLite feedback database.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening feedback database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec(performancesSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating feedback schema: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: dbPath}
	if err := s.loadAll(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) loadAll() error {
	rows, err := s.conn.Query(
		`SELECT comedian, topic, joke, quality_score, audience_score, notes, ts
		 FROM performances ORDER BY ts, id`)
	if err != nil {
		return fmt.Errorf("loading feedback history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		var notes sql.NullString
		if err := rows.Scan(&rec.Comedian, &rec.Topic, &rec.Text,
			&rec.QualityScore, &rec.AudienceScore, &notes, &rec.Timestamp); err != nil {
			return fmt.Errorf("scanning feedback row: %w", err)
		}
		if notes.Valid && notes.String != "" {
			json.Unmarshal([]byte(notes.String), &rec.Notes)
		}
		s.records = append(s.records, rec)
	}
	return rows.Err()
}

// Append inserts the record. The in-memory history grows even when the
// insert fails; the error is returned for the caller to report.
func (s *SQLiteStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	var notes any
	if len(rec.Notes) > 0 {
		data, err := json.Marshal(rec.Notes)
		if err != nil {
			return fmt.Errorf("encoding feedback notes: %w", err)
		}
		notes = string(data)
	}

	_, err := s.conn.Exec(
		`INSERT INTO performances (comedian, topic, joke, quality_score, audience_score, notes, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Comedian, rec.Topic, rec.Text, rec.QualityScore, rec.AudienceScore, notes, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("writing feedback record: %w", err)
	}
	return nil
}

// Records returns a copy of the history in chronological order.
func (s *SQLiteStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
