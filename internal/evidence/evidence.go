// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence persists research snapshots into a SQLite full-text
// index so completed and in-flight tasks can be queried across runs.
package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/prodscout/pkg/types"
)

const dbFile = "evidence.db"

// Store manages the evidence SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the evidence database at indexDir/evidence.db
// and creates the schema when missing.
func NewStore(cfg types.EvidenceConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT,
			status TEXT,
			iterations_used INTEGER,
			quality_score REAL,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL REFERENCES tasks(id),
			url TEXT NOT NULL,
			title TEXT,
			provider TEXT,
			dimension TEXT,
			enriched INTEGER,
			content TEXT,
			UNIQUE(task_id, url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_task_id ON sources(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_dimension ON sources(dimension)`,
		`CREATE TABLE IF NOT EXISTS findings (
			task_id TEXT NOT NULL REFERENCES tasks(id),
			url TEXT NOT NULL,
			key_points TEXT,
			features TEXT,
			competitors TEXT,
			tech_stack TEXT,
			use_cases TEXT,
			market_info TEXT,
			limitations TEXT,
			quality_score INTEGER,
			UNIQUE(task_id, url)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sources_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sources_fts USING fts5(title, content, content=sources, content_rowid=rowid)`,
			`CREATE TRIGGER sources_ai AFTER INSERT ON sources BEGIN
				INSERT INTO sources_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
			`CREATE TRIGGER sources_ad AFTER DELETE ON sources BEGIN
				INSERT INTO sources_fts(sources_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
			END`,
			`CREATE TRIGGER sources_au AFTER UPDATE ON sources BEGIN
				INSERT INTO sources_fts(sources_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
				INSERT INTO sources_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Sources  int
	Findings int
}

// Ingest indexes a snapshot's sources and findings. Re-ingesting the same
// task replaces its previous rows, so the operation is idempotent.
func (s *Store) Ingest(ctx context.Context, snap *types.Snapshot) (IngestSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	score := 0.0
	if snap.Quality != nil {
		score = snap.Quality.Score
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, status, iterations_used, quality_score, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, status=excluded.status,
			iterations_used=excluded.iterations_used,
			quality_score=excluded.quality_score, updated_at=excluded.updated_at`,
		snap.Task.ID, snap.Task.Title, string(snap.Task.Status),
		snap.Task.IterationsUsed, score, snap.Task.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("upserting task: %w", err)
	}

	// Replace the task's rows wholesale. The FTS delete triggers keep the
	// index in step.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE task_id = ?`, snap.Task.ID); err != nil {
		return IngestSummary{}, fmt.Errorf("deleting old sources: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE task_id = ?`, snap.Task.ID); err != nil {
		return IngestSummary{}, fmt.Errorf("deleting old findings: %w", err)
	}

	srcStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sources (task_id, url, title, provider, dimension, enriched, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing source insert: %w", err)
	}
	defer srcStmt.Close()

	var summary IngestSummary
	for _, r := range snap.Results {
		enriched := 0
		if r.Enriched {
			enriched = 1
		}
		if _, err := srcStmt.ExecContext(ctx,
			snap.Task.ID, r.URL, r.Title, r.Provider, r.Dimension, enriched, r.Content,
		); err != nil {
			return summary, fmt.Errorf("inserting source %s: %w", r.URL, err)
		}
		summary.Sources++
	}

	findStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (task_id, url, key_points, features, competitors,
			tech_stack, use_cases, market_info, limitations, quality_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing finding insert: %w", err)
	}
	defer findStmt.Close()

	for _, e := range snap.Extractions {
		if _, err := findStmt.ExecContext(ctx,
			snap.Task.ID, e.URL,
			jsonList(e.KeyPoints), jsonList(e.Features), jsonList(e.Competitors),
			jsonList(e.TechStack), jsonList(e.UseCases), jsonList(e.MarketInfo),
			jsonList(e.Limitations), e.QualityScore,
		); err != nil {
			return summary, fmt.Errorf("inserting finding %s: %w", e.URL, err)
		}
		summary.Findings++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

func jsonList(items []string) string {
	data, _ := json.Marshal(items)
	return string(data)
}
