package casinocms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrTemplateNotFound is returned when no template matches a lookup.
	// It wraps sql.ErrNoRows.
	ErrTemplateNotFound = fmt.Errorf("template not found: %w", sql.ErrNoRows)
	// ErrSlugTaken is returned when creating a template whose slug exists.
	ErrSlugTaken = errors.New("template slug already exists")
)

const templateColumns = `id, name, slug, component_name, category, description, active, file_path, created_at, updated_at`

// Store wraps a SQLite database holding template metadata.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// WAL lets the dashboard read while an upload writes; the busy timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := newStore(db)
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func newStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    component_name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'custom',
    description TEXT NOT NULL DEFAULT '',
    active INTEGER NOT NULL DEFAULT 1,
    file_path TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS templates_updated_at ON templates(updated_at);
`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (TemplateRecord, error) {
	var t TemplateRecord
	var active int
	var created, updated string
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.ComponentName, &t.Category, &t.Description,
		&active, &t.FilePath, &created, &updated); err != nil {
		return TemplateRecord{}, err
	}
	t.Active = active == 1
	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return TemplateRecord{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return TemplateRecord{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return t, nil
}

// CreateTemplate inserts a new record with a fresh ID and timestamps.
func (s *Store) CreateTemplate(ctx context.Context, t TemplateRecord) (TemplateRecord, error) {
	if _, err := s.GetTemplateBySlug(ctx, t.Slug); err == nil {
		return TemplateRecord{}, ErrSlugTaken
	} else if !errors.Is(err, ErrTemplateNotFound) {
		return TemplateRecord{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	_, err := s.db.ExecContext(ctx, `INSERT INTO templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.ComponentName, t.Category, t.Description, boolInt(t.Active), t.FilePath,
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return TemplateRecord{}, ErrSlugTaken
		}
		return TemplateRecord{}, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

// GetTemplate returns a template by ID.
func (s *Store) GetTemplate(ctx context.Context, id string) (TemplateRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return notFound(scanTemplate(row))
}

// GetTemplateBySlug returns a template by slug.
func (s *Store) GetTemplateBySlug(ctx context.Context, slug string) (TemplateRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE slug = ?`, slug)
	return notFound(scanTemplate(row))
}

func notFound(t TemplateRecord, err error) (TemplateRecord, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return TemplateRecord{}, ErrTemplateNotFound
	}
	return t, err
}

// ListTemplates returns every template, most recently updated first.
func (s *Store) ListTemplates(ctx context.Context) ([]TemplateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []TemplateRecord
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateArtifact points a template at its generated component.
func (s *Store) UpdateArtifact(ctx context.Context, id, componentName, filePath string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE templates SET component_name = ?, file_path = ?, updated_at = ? WHERE id = ?`,
		componentName, filePath, s.now().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update template %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
