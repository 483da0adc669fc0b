package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger in a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite opens or creates the database at path, creating the parent
// directory if needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS programs (
			hash TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			image BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			program TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS runs_by_program ON runs (program, id)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	log.Debugf("opened sqlite ledger %s", path)
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) PutProgram(name string, p intcode.Program) (string, error) {
	img := intcode.NewImage(name, p)
	data, err := intcode.MarshalImage(img)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO programs (hash, name, image, created_at) VALUES (?, ?, ?, ?)",
		img.Hash, name, data, time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("saving program: %w", err)
	}
	return img.Hash, nil
}

func (s *SQLiteStore) GetProgram(hash string) (*ProgramRecord, error) {
	var (
		name    string
		data    []byte
		created int64
	)
	err := s.db.QueryRow("SELECT name, image, created_at FROM programs WHERE hash = ?", hash).
		Scan(&name, &data, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("program %s: %w", hash, ErrNotFound)
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}

	img, err := intcode.UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", hash, err)
	}
	return &ProgramRecord{
		Hash:      hash,
		Name:      name,
		Program:   img.Program(),
		CreatedAt: time.Unix(0, created).UTC(),
	}, nil
}

func (s *SQLiteStore) RecordRun(r *Run) error {
	if err := prepareRun(r); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO runs (id, program, data) VALUES (?, ?, json(?))",
		r.ID, r.Program, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM runs WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return decodeRunJSON(data)
}

func (s *SQLiteStore) Runs(programHash string) ([]*Run, error) {
	rows, err := s.db.Query("SELECT data FROM runs WHERE program = ? ORDER BY id", programHash)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r, err := decodeRunJSON(data)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func decodeRunJSON(data string) (*Run, error) {
	var r Run
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decoding run: %w", err)
	}
	return &r, nil
}
