package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

// ErrNotFound is returned by Get for an unknown entry id.
var ErrNotFound = errors.New("recipe not found")

// Entry is one recipe in the cooking book together with where it came from.
type Entry struct {
	ID        uuid.UUID     `json:"id"`
	SourceURL string        `json:"source_url"`
	Recipe    recipe.Recipe `json:"recipe"`
	CreatedAt time.Time     `json:"created_at"`
}

// Book stores validated recipes.
type Book interface {
	Add(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, limit, offset int) ([]Entry, int, error)
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	Close() error
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// prepare fills the id and timestamp of a new entry.
func prepare(entry Entry) Entry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry
}

// MemoryBook keeps the cooking book in memory only.
type MemoryBook struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryBook() *MemoryBook {
	return &MemoryBook{}
}

func (b *MemoryBook) Add(_ context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)
	b.mu.Lock()
	b.entries = append(b.entries, entry)
	b.mu.Unlock()
	return entry, nil
}

func (b *MemoryBook) List(_ context.Context, limit, offset int) ([]Entry, int, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	total := len(b.entries)
	if offset >= total {
		return []Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]Entry, end-offset)
	copy(out, b.entries[offset:end])
	return out, total, nil
}

func (b *MemoryBook) Get(_ context.Context, id uuid.UUID) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (b *MemoryBook) Close() error {
	return nil
}

func (b *MemoryBook) snapshot() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Open picks the cooking book backend: Postgres when databaseURL is set, the
// JSON file when bookFile is set, memory otherwise.
func Open(databaseURL, bookFile string) (Book, error) {
	switch {
	case databaseURL != "":
		db, err := NewStore(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(""); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case bookFile != "":
		return OpenFileBook(bookFile)
	default:
		slog.Info("new cooking book in memory")
		return NewMemoryBook(), nil
	}
}
