// Package store persists completed analysis runs in SQLite so repeated
// requests for the same repository skip re-analysis.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/repolens/repolens/internal/engine"
)

// Store wraps a SQLite connection holding serialized analysis runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Run is one persisted analysis with its identity metadata.
type Run struct {
	ID        string
	RepoURL   string
	RepoName  string
	CreatedAt time.Time
	Analysis  *engine.Analysis
}

// RunInfo is the listing view of a run, without the analysis payload.
type RunInfo struct {
	ID        string    `json:"id"`
	RepoURL   string    `json:"repo_url"`
	RepoName  string    `json:"repo_name"`
	CreatedAt time.Time `json:"created_at"`
	Files     int       `json:"files"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    repo_url    TEXT NOT NULL,
    repo_name   TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    total_files INTEGER NOT NULL,
    analysis    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_repo_url ON runs(repo_url);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// cacheDir returns the default directory for the runs database.
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	dir := filepath.Join(home, ".cache", "repolens")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir cache: %w", err)
	}
	return dir, nil
}

// Open opens the default runs database under the user cache directory.
func Open() (*Store, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, "runs.db"))
}

// OpenPath opens a runs database at the given path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, dbPath: dbPath}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory runs database (for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	s := &Store{db: db, dbPath: ":memory:"}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces one analysis run.
func (s *Store) SaveRun(run *Run) error {
	payload, err := json.Marshal(run.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO runs (id, repo_url, repo_name, created_at, total_files, analysis)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoURL, run.RepoName,
		createdAt.Format(time.RFC3339), run.Analysis.TotalFiles, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun loads one run by id. A missing id returns (nil, nil).
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, repo_url, repo_name, created_at, analysis FROM runs WHERE id = ?`, id)

	var run Run
	var createdAt, payload string
	if err := row.Scan(&run.ID, &run.RepoURL, &run.RepoName, &createdAt, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if err := json.Unmarshal([]byte(payload), &run.Analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &run, nil
}

// FindByRepoURL returns the most recent run for a repository URL, or
// (nil, nil) when none exists.
func (s *Store) FindByRepoURL(url string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id FROM runs WHERE repo_url = ? ORDER BY created_at DESC LIMIT 1`, url)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run id: %w", err)
	}
	return s.GetRun(id)
}

// ListRuns returns run metadata, newest first.
func (s *Store) ListRuns() ([]RunInfo, error) {
	rows, err := s.db.Query(
		`SELECT id, repo_url, repo_name, created_at, total_files FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.RepoURL, &info.RepoName, &createdAt, &info.Files); err != nil {
			return nil, fmt.Errorf("scan run info: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteRun removes one run; deleting an absent id is a no-op.
func (s *Store) DeleteRun(id string) error {
	if _, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
