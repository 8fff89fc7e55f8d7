package news

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agri-ai/portal/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	link         TEXT NOT NULL,
	source       TEXT NOT NULL,
	category     TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category, published_at DESC);
`

// Store keeps fetched articles in SQLite so restarts keep history.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the article database. Use ":memory:" in
// tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc.org/sqlite serializes access through a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// UpsertArticles inserts new articles and refreshes title/summary on
// re-fetch. Returns how many rows were newly inserted.
func (s *Store) UpsertArticles(ctx context.Context, articles []model.Article) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO articles (id, title, link, source, category, summary, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title = excluded.title, summary = excluded.summary`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range articles {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM articles WHERE id = ?`, a.ID).Scan(&exists); err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Title, a.Link, a.Source, a.Category, a.Summary, a.PublishedAt.UTC()); err != nil {
			return 0, fmt.Errorf("upsert article %s: %w", a.ID, err)
		}
		if exists == 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Latest returns the newest articles, optionally filtered by category.
func (s *Store) Latest(ctx context.Context, limit int, category string) ([]model.Article, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, title, link, source, category, summary, published_at
FROM articles`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Link, &a.Source, &a.Category, &a.Summary, &a.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Prune deletes articles older than the retention window. Returns rows
// removed.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		keepDays = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM articles WHERE published_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
