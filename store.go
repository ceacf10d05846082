package homepage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/eringen/homepage/content"
)

// Store keeps pages in a SQLite database. It is an alternative page source
// to the content directory, filled by the import command.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during an import; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    path TEXT PRIMARY KEY,
    frontmatter TEXT NOT NULL,
    content TEXT NOT NULL,
    updated TEXT NOT NULL
);
`)
	return err
}

// LoadPages returns every stored page ordered by path.
func (s *Store) LoadPages(ctx context.Context) ([]content.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, frontmatter, content, updated FROM pages ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []content.Page
	for rows.Next() {
		var path, fm, body, updated string
		if err := rows.Scan(&path, &fm, &body, &updated); err != nil {
			return nil, err
		}
		p, err := decodePage(path, fm, body, updated)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

// ListPages returns the stored source paths in order.
func (s *Store) ListPages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM pages ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// GetPage returns a single page by source path.
func (s *Store) GetPage(ctx context.Context, path string) (content.Page, error) {
	var fm, body, updated string
	err := s.db.QueryRowContext(ctx, `SELECT frontmatter, content, updated FROM pages WHERE path = ?`, path).
		Scan(&fm, &body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Page{}, ErrNotFound
	}
	if err != nil {
		return content.Page{}, err
	}
	return decodePage(path, fm, body, updated)
}

// SavePage upserts a page. A zero LastUpdated is stored as now.
func (s *Store) SavePage(ctx context.Context, p content.Page) error {
	fm, err := yaml.Marshal(map[string]any(p.Frontmatter))
	if err != nil {
		return fmt.Errorf("homepage: encode frontmatter of %s: %w", p.Path, err)
	}
	updated := p.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO pages (path, frontmatter, content, updated) VALUES (?, ?, ?, ?)`,
		p.Path, string(fm), p.Content, updated.UTC().Format(time.RFC3339Nano))
	return err
}

// DeletePage removes a page by source path.
func (s *Store) DeletePage(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE path = ?`, path)
	return err
}

// ImportPages replaces the stored pages with pages in one transaction.
func (s *Store) ImportPages(ctx context.Context, pages []content.Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (path, frontmatter, content, updated) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range pages {
		fm, err := yaml.Marshal(map[string]any(p.Frontmatter))
		if err != nil {
			return fmt.Errorf("homepage: encode frontmatter of %s: %w", p.Path, err)
		}
		updated := p.LastUpdated
		if updated.IsZero() {
			updated = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, p.Path, string(fm), p.Content, updated.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("homepage: import %s: %w", p.Path, err)
		}
	}
	return tx.Commit()
}

func decodePage(path, fm, body, updated string) (content.Page, error) {
	front, err := content.ParseFrontmatter([]byte(fm))
	if err != nil {
		return content.Page{}, fmt.Errorf("homepage: stored page %s: %w", path, err)
	}
	p := content.Page{Path: path, Frontmatter: front, Content: body}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		p.LastUpdated = t
	}
	return p, nil
}
