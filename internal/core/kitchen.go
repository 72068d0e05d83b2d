package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/store"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

// ErrStore marks failures of the cooking book rather than of the extraction.
var ErrStore = errors.New("cooking book")

const DefaultParallelism = 4

type RecipeExtractor interface {
	FromURL(ctx context.Context, rawURL string) (recipe.Recipe, error)
}

// KitchenService imports recipe pages into a cooking book.
type KitchenService struct {
	extractor RecipeExtractor
	book      store.Book
}

func NewKitchenService(extractor RecipeExtractor, book store.Book) *KitchenService {
	return &KitchenService{extractor: extractor, book: book}
}

func (s *KitchenService) Book() store.Book {
	return s.book
}

// Import extracts the recipe published at rawURL and adds it to the book.
func (s *KitchenService) Import(ctx context.Context, rawURL string) (store.Entry, error) {
	start := time.Now()

	normalized, host, err := urlutil.Normalize(rawURL)
	if err != nil {
		observability.IncError(ClassifyError(err), "kitchen")
		return store.Entry{}, err
	}

	r, err := s.extractor.FromURL(ctx, normalized)
	observability.ObserveExtractDuration(time.Since(start).Seconds())
	if err != nil {
		kind := ClassifyError(err)
		observability.IncError(kind, "extractor")
		slog.Warn("recipe import failed", "url", normalized, "host", host, "kind", kind, "error", err)
		return store.Entry{}, err
	}
	observability.IncRecipesExtracted()

	entry, err := s.book.Add(ctx, store.Entry{SourceURL: normalized, Recipe: r})
	if err != nil {
		observability.IncError(observability.ErrorStore, "store")
		return store.Entry{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	slog.Info("recipe imported", "id", entry.ID, "name", r.Name, "url", normalized)
	return entry, nil
}

type ImportResult struct {
	URL   string
	Entry store.Entry
	Err   error
}

// ImportMany imports every URL with at most limit imports running at once.
// Results are in input order; a failed URL does not stop the others.
func (s *KitchenService) ImportMany(ctx context.Context, urls []string, limit int) []ImportResult {
	if limit <= 0 {
		limit = DefaultParallelism
	}

	results := make([]ImportResult, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, u := range urls {
		g.Go(func() error {
			entry, err := s.Import(ctx, u)
			results[i] = ImportResult{URL: u, Entry: entry, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ClassifyError maps an import failure to an observability error type.
func ClassifyError(err error) string {
	if err == nil {
		return observability.ErrorUnknown
	}

	var encErr *content.EncodingError
	var decErr *recipe.DecodeError
	switch {
	case errors.Is(err, urlutil.ErrUnsupportedURL):
		return observability.ErrorInvalidURL
	case errors.Is(err, ErrStore), errors.Is(err, store.ErrNotFound):
		return observability.ErrorStore
	case errors.Is(err, content.ErrNoRecipe):
		return observability.ErrorNoRecipe
	case errors.As(err, &encErr):
		return observability.ErrorEncoding
	case errors.As(err, &decErr):
		return observability.ErrorDecode
	}
	return observability.ClassifyFetchError(err)
}
