// Package store keeps a history of classification results in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
)

// Store wraps the history database connection
type Store struct {
	*sqlx.DB
	path string
}

// Record is one stored classification
type Record struct {
	ID         string    `db:"id" json:"id"`
	Source     string    `db:"source" json:"source"`
	Label      string    `db:"label" json:"label"`
	Confidence float64   `db:"confidence" json:"confidence"`
	Membership float64   `db:"membership" json:"membership"`
	ResultJSON string    `db:"result_json" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Result decodes the full classification result stored with the record
func (r Record) Result() (emotion.Result, error) {
	var result emotion.Result
	if err := json.Unmarshal([]byte(r.ResultJSON), &result); err != nil {
		return result, fmt.Errorf("failed to decode result %s: %w", r.ID, err)
	}
	return result, nil
}

// LabelCount is the number of stored classifications with a label
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{DB: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	for _, m := range []string{migrationClassifications, migrationIndexes} {
		if _, err := s.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const migrationClassifications = `
CREATE TABLE IF NOT EXISTS classifications (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    label TEXT NOT NULL,
    confidence REAL NOT NULL,
    membership REAL NOT NULL,
    result_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_classifications_label ON classifications(label);
CREATE INDEX IF NOT EXISTS idx_classifications_created ON classifications(created_at);
`

// Save stores a classification result and returns its record ID
func (s *Store) Save(source string, result emotion.Result) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO classifications (
			id, source, label, confidence, membership, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.Exec(query,
		id,
		source,
		result.Label,
		result.Confidence,
		result.LabelMembership,
		string(data),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save classification: %w", err)
	}
	return id, nil
}

// Get retrieves a record by ID, or nil when there is none
func (s *Store) Get(id string) (*Record, error) {
	var record Record
	err := s.DB.Get(&record, `SELECT * FROM classifications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}
	return &record, nil
}

// Recent lists the newest records first
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	records := []Record{}
	query := `SELECT * FROM classifications ORDER BY created_at DESC, rowid DESC LIMIT ?`
	if err := s.Select(&records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	return records, nil
}

// CountByLabel tallies stored records per label, most frequent first
func (s *Store) CountByLabel() ([]LabelCount, error) {
	counts := []LabelCount{}
	query := `
		SELECT label, COUNT(*) AS count
		FROM classifications
		GROUP BY label
		ORDER BY count DESC, label ASC
	`
	if err := s.Select(&counts, query); err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	return counts, nil
}
