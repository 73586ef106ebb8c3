package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents of many runs in a single database file.
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

func NewSQLiteStore(dbPath, runID string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := &SQLiteStore{db: db, runID: runID}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
	run_id     TEXT NOT NULL,
	name       TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, name)
)`)
	return err
}

func (s *SQLiteStore) Put(name string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	_, err = s.db.Exec(`
INSERT INTO documents (run_id, name, body, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (run_id, name) DO UPDATE SET body = excluded.body, created_at = excluded.created_at`,
		s.runID, name, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Get returns the JSON body of a document written by run runID.
func (s *SQLiteStore) Get(runID, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE run_id = ? AND name = ?`, runID, name).Scan(&body)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Names lists the documents of run runID in name order.
func (s *SQLiteStore) Names(runID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM documents WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Discard deletes every document of the current run.
func (s *SQLiteStore) Discard() error {
	if _, err := s.db.Exec(`DELETE FROM documents WHERE run_id = ?`, s.runID); err != nil {
		return fmt.Errorf("failed to discard run %s: %w", s.runID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
