// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index keeps a SQLite ledger of the summaries written by convert
// runs, for listing and export. It never decides whether a file is
// converted.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dat2csv/internal/csvfile"
	"github.com/pdiddy/dat2csv/pkg/types"
)

const (
	dbFile            = "summaries.db"
	defaultMaxResults = 50

	// timeLayout is fixed-width so converted_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the summary index database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates indexDir/summaries.db and its schema.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if cfg.IndexDir == "" {
		return nil, fmt.Errorf("index directory is required")
	}
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, indexDir: cfg.IndexDir, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS summaries (
			input_path TEXT PRIMARY KEY,
			output_path TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			second_highest INTEGER NOT NULL,
			average REAL NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_output ON summaries(output_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Entry is one indexed summary.
type Entry struct {
	Input         string    `json:"input" yaml:"input"`
	Output        string    `json:"output" yaml:"output"`
	Rows          int       `json:"rows" yaml:"rows"`
	Duplicates    int       `json:"duplicates" yaml:"duplicates"`
	SecondHighest int       `json:"second_highest" yaml:"second_highest"`
	Average       float64   `json:"average" yaml:"average"`
	ConvertedAt   time.Time `json:"converted_at" yaml:"converted_at"`
}

// Record upserts the summary of a converted file, keyed by input path.
// Skipped and failed results carry no summary and are ignored.
func (s *Store) Record(ctx context.Context, res types.FileResult) error {
	if res.Skipped || res.Summary == nil {
		return nil
	}

	at := res.Finished
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (input_path, output_path, row_count, duplicates, second_highest, average, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(input_path) DO UPDATE SET
			output_path=excluded.output_path, row_count=excluded.row_count,
			duplicates=excluded.duplicates, second_highest=excluded.second_highest,
			average=excluded.average, converted_at=excluded.converted_at`,
		res.Input, res.Output, res.Rows, res.Duplicates,
		res.Summary.SecondHighest, res.Summary.Average,
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", res.Input, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Input keeps entries whose input path contains this substring.
	Input string

	// MaxResults caps the number of entries (0 = store default).
	MaxResults int
}

// List returns indexed summaries, most recent first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT input_path, output_path, row_count, duplicates, second_highest, average, converted_at
		FROM summaries`
	var args []any
	if opts.Input != "" {
		query += ` WHERE instr(input_path, ?) > 0`
		args = append(args, opts.Input)
	}
	query += ` ORDER BY converted_at DESC, input_path LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.Input, &e.Output, &e.Rows, &e.Duplicates,
			&e.SecondHighest, &e.Average, &at); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		e.ConvertedAt, _ = time.Parse(timeLayout, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RebuildSummary holds counts from a Rebuild run.
type RebuildSummary struct {
	Indexed int
	Skipped int
	Failed  int
}

// Rebuild re-indexes every .csv in outputDir from its footer. Files without
// a summary footer are skipped. The input path of a rebuilt entry is the
// matching .dat name in inputDir. Progress goes to w.
func (s *Store) Rebuild(ctx context.Context, inputDir, outputDir string, w io.Writer) (RebuildSummary, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("reading output directory %s: %w", outputDir, err)
	}

	var summary RebuildSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(outputDir, entry.Name())
		table, err := csvfile.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		sum, err := table.Summary()
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", entry.Name(), err)
			summary.Skipped++
			continue
		}

		modTime := time.Now().UTC()
		if info, err := entry.Info(); err == nil {
			modTime = info.ModTime().UTC()
		}

		res := types.FileResult{
			Input:    filepath.Join(inputDir, strings.TrimSuffix(entry.Name(), ".csv")+".dat"),
			Output:   path,
			Rows:     len(table.Rows),
			Summary:  &sum,
			Finished: modTime,
		}
		if err := s.Record(ctx, res); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "indexed %s (%d rows)\n", entry.Name(), res.Rows)
		summary.Indexed++
	}

	fmt.Fprintf(w, "\nindexed: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}
