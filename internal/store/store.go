// Package store persists brand policies and analysis metrics in SQLite.
// Suitable for single-instance deployments; SQLite supports a single writer,
// so the connection pool is capped at one connection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dshills/brandguard/internal/policy"
	"github.com/dshills/brandguard/internal/schema"
)

// ErrNotFound is returned when no policy exists for a brand.
var ErrNotFound = errors.New("store: policy not found")

// Store wraps the SQLite database holding policies and analysis history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Uses WAL mode with a 5 second busy timeout.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: db path cannot be empty")
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS policies (
		brand TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		brand TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		score INTEGER NOT NULL,
		findings INTEGER NOT NULL,
		text_length INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_brand ON analyses(brand);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePolicy validates, normalizes, and upserts a policy document.
func (s *Store) SavePolicy(ctx context.Context, brand string, p schema.BrandPolicy) error {
	if brand == "" {
		return fmt.Errorf("store: brand cannot be empty")
	}
	policy.Normalize(&p)
	if err := policy.Validate(&p); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: marshal policy: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policies (brand, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (brand) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		brand, string(doc), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store: save policy %q: %w", brand, err)
	}
	return nil
}

// GetPolicy returns the normalized policy for a brand, or ErrNotFound.
func (s *Store) GetPolicy(ctx context.Context, brand string) (schema.BrandPolicy, error) {
	var p schema.BrandPolicy
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM policies WHERE brand = ?`, brand).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("store: get policy %q: %w", brand, err)
	}
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return p, fmt.Errorf("store: unmarshal policy %q: %w", brand, err)
	}
	policy.Normalize(&p)
	return p, nil
}

// ListBrands returns the brand identifiers with stored policies, ordered.
func (s *Store) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT brand FROM policies ORDER BY brand`)
	if err != nil {
		return nil, fmt.Errorf("store: list brands: %w", err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("store: scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// RecordAnalysis persists one metrics row for a served analysis. A missing ID
// or timestamp is filled in.
func (s *Store) RecordAnalysis(ctx context.Context, rec schema.AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, brand, role, score, findings, text_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Brand, string(rec.Role), rec.Score, rec.Findings, rec.TextLength, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: record analysis: %w", err)
	}
	return nil
}

// RecentAnalyses returns up to limit analysis records, newest first.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]schema.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand, role, score, findings, text_length, created_at
		FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent analyses: %w", err)
	}
	defer rows.Close()

	var recs []schema.AnalysisRecord
	for rows.Next() {
		var rec schema.AnalysisRecord
		var role string
		if err := rows.Scan(&rec.ID, &rec.Brand, &role, &rec.Score, &rec.Findings,
			&rec.TextLength, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan analysis: %w", err)
		}
		rec.Role = schema.Role(role)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
