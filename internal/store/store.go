package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	sql *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}
	return &Store{sql: conn}, nil
}

func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) Migrate() error {
	_, err := s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}

	_, err = s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS briefings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			title         TEXT NOT NULL,
			source_path   TEXT NOT NULL UNIQUE,
			body          TEXT NOT NULL DEFAULT '',
			summary       TEXT NOT NULL DEFAULT '',
			summary_ready INTEGER NOT NULL DEFAULT 0,
			created_at    INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create briefings: %w", err)
	}

	// Add summarized_at column to existing DBs; ignore "duplicate column" errors.
	if _, alterErr := s.sql.Exec(`ALTER TABLE briefings ADD COLUMN summarized_at INTEGER NOT NULL DEFAULT 0`); alterErr != nil {
		if !isDuplicateColumnError(alterErr) {
			return fmt.Errorf("alter briefings add summarized_at: %w", alterErr)
		}
	}

	_, err = s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create accounts: %w", err)
	}

	_, err = s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token      TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create refresh_tokens: %w", err)
	}

	return nil
}

// InsertBriefing stores a new briefing and returns its assigned id.
func (s *Store) InsertBriefing(title, sourcePath, body string) (int64, error) {
	res, err := s.sql.Exec(`
		INSERT INTO briefings (title, source_path, body, created_at)
		VALUES (?,?,?,?)`,
		title, sourcePath, body, time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetBriefing(id int64) (*Briefing, error) {
	row := s.sql.QueryRow(`
		SELECT id, title, source_path, body, summary, summary_ready,
			created_at, summarized_at
		FROM briefings WHERE id = ?`, id)
	return scanBriefing(row)
}

// LoadBriefings returns all briefings, newest first.
func (s *Store) LoadBriefings() ([]*Briefing, error) {
	rows, err := s.sql.Query(`
		SELECT id, title, source_path, body, summary, summary_ready,
			created_at, summarized_at
		FROM briefings ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var briefings []*Briefing
	for rows.Next() {
		b, err := scanBriefing(rows)
		if err != nil {
			return nil, err
		}
		briefings = append(briefings, b)
	}
	return briefings, rows.Err()
}

// HasSource reports whether a briefing was already ingested from sourcePath.
func (s *Store) HasSource(sourcePath string) (bool, error) {
	var count int
	err := s.sql.QueryRow("SELECT COUNT(*) FROM briefings WHERE source_path = ?", sourcePath).Scan(&count)
	return count > 0, err
}

// SetSummary records the computed summary and flips summary_ready.
func (s *Store) SetSummary(id int64, summary string) error {
	_, err := s.sql.Exec(
		"UPDATE briefings SET summary = ?, summary_ready = 1, summarized_at = ? WHERE id = ?",
		summary, time.Now().UnixMilli(), id,
	)
	return err
}

func (s *Store) DeleteBriefing(id int64) error {
	_, err := s.sql.Exec("DELETE FROM briefings WHERE id = ?", id)
	return err
}

func isDuplicateColumnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// rowScanner is implemented by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBriefing(row rowScanner) (*Briefing, error) {
	var b Briefing
	var ready int
	var createdAt, summarizedAt int64
	err := row.Scan(
		&b.ID, &b.Title, &b.SourcePath, &b.Body, &b.Summary, &ready,
		&createdAt, &summarizedAt,
	)
	if err != nil {
		return nil, err
	}
	b.SummaryReady = ready == 1
	b.CreatedAt = time.UnixMilli(createdAt)
	if summarizedAt != 0 {
		b.SummarizedAt = time.UnixMilli(summarizedAt)
	}
	return &b, nil
}

func (s *Store) SetMeta(key, value string) error {
	_, err := s.sql.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES (?,?)", key, value)
	return err
}

func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.sql.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) Touch() error {
	return s.SetMeta("last_modified", fmt.Sprintf("%d", time.Now().UnixMilli()))
}

func (s *Store) LastModified() int64 {
	v, _ := s.GetMeta("last_modified")
	if v == "" {
		return 0
	}
	var ts int64
	fmt.Sscanf(v, "%d", &ts)
	return ts
}
