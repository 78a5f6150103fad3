// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snakepilot/internal/config"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is one finished game.
type Run struct {
	ID         int64     `json:"id"`
	Provider   string    `json:"provider"` // Planner that steered, or "manual"
	Score      int       `json:"score"`
	Cause      string    `json:"cause"`
	Ticks      int       `json:"ticks"`
	Decisions  int       `json:"decisions"`
	Successful int       `json:"successful"`
	Fallbacks  int       `json:"fallbacks"`
	CreatedAt  time.Time `json:"created_at"`
}

// SuccessRate returns the share of successful planner decisions in percent.
func (r Run) SuccessRate() float64 {
	if r.Decisions == 0 {
		return 0
	}
	return float64(r.Successful) / float64(r.Decisions) * 100
}

// ProviderStats aggregates all runs of one provider.
type ProviderStats struct {
	Provider   string    `json:"provider"`
	Runs       int       `json:"runs"`
	HighScore  int       `json:"high_score"`
	AvgScore   float64   `json:"avg_score"`
	Decisions  int64     `json:"decisions"`
	Successful int64     `json:"successful"`
	Fallbacks  int64     `json:"fallbacks"`
	LastPlayed time.Time `json:"last_played"`
}

// SuccessRate returns the share of successful planner decisions in percent.
func (p ProviderStats) SuccessRate() float64 {
	if p.Decisions == 0 {
		return 0
	}
	return float64(p.Successful) / float64(p.Decisions) * 100
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			score INTEGER NOT NULL,
			cause TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL DEFAULT 0,
			decisions INTEGER NOT NULL DEFAULT 0,
			successful INTEGER NOT NULL DEFAULT 0,
			fallbacks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_provider ON runs(provider);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(provider, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and returns its ID.
func (s *Store) SaveRun(r Run) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (provider, score, cause, ticks, decisions, successful, fallbacks)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Provider, r.Score, r.Cause, r.Ticks, r.Decisions, r.Successful, r.Fallbacks,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopRuns retrieves the best runs, highest score first.
// An empty provider matches every provider.
func (s *Store) TopRuns(provider string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, provider, score, cause, ticks, decisions, successful, fallbacks, created_at
		 FROM runs
		 WHERE ? = '' OR provider = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		provider, provider, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Provider, &r.Score, &r.Cause, &r.Ticks,
			&r.Decisions, &r.Successful, &r.Fallbacks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// HighScore returns the best score for the provider, or 0 with no runs.
func (s *Store) HighScore(provider string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE provider = ?",
		provider,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearRuns deletes all runs of the provider.
func (s *Store) ClearRuns(provider string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE provider = ?", provider)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// ProviderStats retrieves aggregated statistics for one provider.
func (s *Store) ProviderStats(provider string) (*ProviderStats, error) {
	stats := &ProviderStats{Provider: provider}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(decisions), 0), COALESCE(SUM(successful), 0), COALESCE(SUM(fallbacks), 0)
		 FROM runs WHERE provider = ?`,
		provider,
	).Scan(&stats.Runs, &stats.HighScore, &stats.AvgScore, &stats.Decisions, &stats.Successful, &stats.Fallbacks)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get provider stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE provider = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		provider,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// AllProviderStats retrieves statistics for every provider with runs.
func (s *Store) AllProviderStats() (map[string]*ProviderStats, error) {
	rows, err := s.db.Query(
		`SELECT provider, COUNT(*), MAX(score), AVG(score),
		        SUM(decisions), SUM(successful), SUM(fallbacks), MAX(created_at)
		 FROM runs
		 GROUP BY provider`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get provider stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ProviderStats)
	for rows.Next() {
		var p ProviderStats
		var lastPlayed any
		if err := rows.Scan(&p.Provider, &p.Runs, &p.HighScore, &p.AvgScore,
			&p.Decisions, &p.Successful, &p.Fallbacks, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		p.LastPlayed = parseTime(lastPlayed)
		stats[p.Provider] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles both driver-decoded times and raw SQLite datetime text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
