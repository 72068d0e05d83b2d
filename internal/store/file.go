package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileBook is a MemoryBook mirrored to a JSON file. The whole book is rewritten
// on every Add and read back when the book is opened.
type FileBook struct {
	*MemoryBook
	path string
}

func OpenFileBook(path string) (*FileBook, error) {
	slog.Info("new cooking book with file storage", "path", path)

	book := &FileBook{MemoryBook: NewMemoryBook(), path: path}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return book, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read cooking book: %w", err)
	}

	slog.Info("reading existing cooking book", "path", path)
	if err := json.Unmarshal(content, &book.entries); err != nil {
		return nil, fmt.Errorf("failed to decode cooking book %s: %w", path, err)
	}
	return book, nil
}

func (b *FileBook) Add(ctx context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)

	b.mu.Lock()
	defer b.mu.Unlock()

	next := append(b.snapshot(), entry)
	content, err := json.Marshal(next)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode cooking book: %w", err)
	}
	if err := writeFileAtomic(b.path, content); err != nil {
		return Entry{}, err
	}
	b.entries = next
	return entry, nil
}

func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cooking-book-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cooking book: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cooking book: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cooking book: %w", err)
	}
	return nil
}
