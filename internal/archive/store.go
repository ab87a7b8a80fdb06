// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local record of classified papers: a SQLite
// index plus downloaded PDFs and YAML metadata sidecars, organized by
// briefing date.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/snlongmore/morning-report/pkg/types"
)

const dbFile = "papers.db"

// Store manages the paper archive SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive database at papersDir/papers.db,
// creating the schema if needed.
func NewStore(papersDir string) (*Store, error) {
	if err := os.MkdirAll(papersDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating papers directory: %w", err)
	}

	dbPath := filepath.Join(papersDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT NOT NULL,
			briefing_date TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			primary_category TEXT,
			categories TEXT,
			published TEXT,
			abs_url TEXT,
			tier INTEGER NOT NULL,
			reason TEXT,
			matched_keywords TEXT,
			PRIMARY KEY (arxiv_id, briefing_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_date ON papers(briefing_date)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_tier ON papers(tier)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordPapers upserts every classified paper under the given briefing
// date in a single transaction. Re-running a briefing for the same date
// overwrites the earlier rows.
func (s *Store) RecordPapers(ctx context.Context, date string, groups types.TierGroups) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (arxiv_id, briefing_date, title, authors, abstract,
			primary_category, categories, published, abs_url, tier, reason, matched_keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(arxiv_id, briefing_date) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			primary_category=excluded.primary_category, categories=excluded.categories,
			published=excluded.published, abs_url=excluded.abs_url,
			tier=excluded.tier, reason=excluded.reason,
			matched_keywords=excluded.matched_keywords`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, papers := range groups {
		for _, p := range papers {
			authorsJSON, _ := json.Marshal(p.Authors)
			categoriesJSON, _ := json.Marshal(p.Categories)
			keywordsJSON, _ := json.Marshal(p.MatchedKeywords)
			_, err := stmt.ExecContext(ctx,
				p.ArxivID, date, p.Title, string(authorsJSON), p.Abstract,
				p.PrimaryCategory, string(categoriesJSON), p.Published, p.AbsURL,
				int(p.Tier), p.Reason, string(keywordsJSON),
			)
			if err != nil {
				return fmt.Errorf("inserting paper %s: %w", p.ArxivID, err)
			}
		}
	}
	return tx.Commit()
}

// PapersForDate returns all papers recorded under a briefing date,
// grouped by tier, ordered as stored.
func (s *Store) PapersForDate(ctx context.Context, date string) (types.TierGroups, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT arxiv_id, title, authors, abstract, primary_category, categories,
			published, abs_url, tier, reason, matched_keywords
		 FROM papers WHERE briefing_date = ? ORDER BY tier, rowid`, date)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	groups := types.TierGroups{}
	for rows.Next() {
		var p types.ClassifiedPaper
		var tier int
		var authorsJSON, categoriesJSON, keywordsJSON string
		if err := rows.Scan(&p.ArxivID, &p.Title, &authorsJSON, &p.Abstract,
			&p.PrimaryCategory, &categoriesJSON, &p.Published, &p.AbsURL,
			&tier, &p.Reason, &keywordsJSON); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		p.Tier = types.Tier(tier)
		json.Unmarshal([]byte(authorsJSON), &p.Authors)
		json.Unmarshal([]byte(categoriesJSON), &p.Categories)
		json.Unmarshal([]byte(keywordsJSON), &p.MatchedKeywords)
		groups[p.Tier] = append(groups[p.Tier], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading paper rows: %w", err)
	}
	return groups, nil
}

// Dates returns the briefing dates present in the archive, newest first.
func (s *Store) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT briefing_date FROM papers ORDER BY briefing_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning date row: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
