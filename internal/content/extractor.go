// Package content extracts a schema.org Recipe from a fetched HTML page.
//
// The page is checked for UTF-8, HTML entities are decoded, and every
// `script[type="application/ld+json"]` block is decoded in document order until
// one yields a Recipe. Rejected blocks are logged at warning level with the field
// path that failed. A page without any decodable block reports ErrNoRecipe.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

// ErrNoRecipe means the page was read but no structured-data block decoded as a Recipe.
var ErrNoRecipe = errors.New("no recipe found")

// blockSelector is a constant; MustCompile panics at init if it is ever broken.
var blockSelector = cascadia.MustCompile(`script[type="application/ld+json"]`)

// EncodingError reports a response body that is not valid UTF-8.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("page is not valid UTF-8 (first invalid byte at offset %d)", e.Offset)
}

// Extractor turns pages into recipes. It holds no per-call state and is safe for
// concurrent use.
type Extractor struct {
	fetcher httpx.Fetcher
	logger  *slog.Logger
}

type Option func(*Extractor)

// WithLogger sets the logger used for fetch and candidate diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewExtractor(fetcher httpx.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromURL fetches rawURL and extracts its recipe. Transport failures are returned
// as *httpx.FetchError; the body is parsed whatever the status code.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (recipe.Recipe, error) {
	if e.fetcher == nil {
		return recipe.Recipe{}, errors.New("extractor has no fetcher")
	}

	e.logger.Info("receiving recipe page", "url", rawURL)
	page, err := e.fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		return recipe.Recipe{}, err
	}
	observability.IncPagesFetched()
	e.logger.Info("received recipe page", "url", page.URL, "status", page.Status, "bytes", len(page.Body))

	return e.Extract(page.Body)
}

// Extract returns the first Recipe decoded from the page's JSON-LD blocks.
func (e *Extractor) Extract(body []byte) (recipe.Recipe, error) {
	if !utf8.Valid(body) {
		return recipe.Recipe{}, &EncodingError{Offset: firstInvalidUTF8(body)}
	}

	decoded := html.UnescapeString(string(body))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded))
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("parse html: %w", err)
	}

	blocks := doc.FindMatcher(blockSelector)
	for i := range blocks.Nodes {
		text := blocks.Eq(i).Text()

		r, err := recipe.Decode(text)
		if err == nil {
			return r, nil
		}
		e.warnCandidate(i, -1, err)

		for j, node := range graphRecipes(text) {
			r, err := recipe.DecodeBytes(node)
			if err == nil {
				return r, nil
			}
			e.warnCandidate(i, j, err)
		}
	}

	return recipe.Recipe{}, ErrNoRecipe
}

func (e *Extractor) warnCandidate(block, node int, err error) {
	attrs := []any{"block", block, "error", err}
	kind := "unknown"
	var de *recipe.DecodeError
	if errors.As(err, &de) {
		kind = string(de.Kind)
		attrs = append(attrs, "path", de.Path, "kind", kind)
	}
	if node >= 0 {
		attrs = append(attrs, "graphNode", node)
	}
	observability.IncCandidateFailure(kind)
	e.logger.Warn("failed to decode recipe candidate", attrs...)
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
