package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

//go:embed schema.sql
var defaultSchema string

// PostgresStore keeps the cooking book in a recipes table. Re-importing a
// source URL replaces the stored recipe and keeps the original id.
type PostgresStore struct {
	db *sql.DB
}

func NewStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunMigrations executes the schema at schemaPath, or the embedded schema when
// schemaPath is empty.
func (s *PostgresStore) RunMigrations(schemaPath string) error {
	schema := defaultSchema
	if schemaPath != "" {
		content, err := os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		schema = string(content)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func (s *PostgresStore) Add(ctx context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)

	doc, err := json.Marshal(entry.Recipe)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode recipe: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
INSERT INTO recipes (id, source_url, name, recipe, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (source_url) DO UPDATE SET
    name = EXCLUDED.name,
    recipe = EXCLUDED.recipe,
    updated_at = NOW()
RETURNING id, created_at
`, entry.ID, entry.SourceURL, entry.Recipe.Name, doc, entry.CreatedAt).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Entry, int, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source_url, recipe, created_at
FROM recipes
ORDER BY created_at ASC, id ASC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, source_url, recipe, created_at
FROM recipes
WHERE id = $1
`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e   Entry
		doc []byte
	)
	if err := row.Scan(&e.ID, &e.SourceURL, &doc, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	r, err := recipe.DecodeBytes(doc)
	if err != nil {
		return Entry{}, fmt.Errorf("stored recipe %s: %w", e.ID, err)
	}
	e.Recipe = r
	return e, nil
}
