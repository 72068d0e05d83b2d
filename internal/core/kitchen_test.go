package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/store"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

type fakeExtractor struct {
	mu      sync.Mutex
	calls   []string
	errs    map[string]error
	delay   time.Duration
	running atomic.Int32
	peak    atomic.Int32
}

func (f *fakeExtractor) FromURL(ctx context.Context, rawURL string) (recipe.Recipe, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	err := f.errs[rawURL]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return recipe.Recipe{}, err
	}
	return recipe.Decode(`{"name":"Recipe from ` + rawURL + `","image":[]}`)
}

type failingBook struct {
	*store.MemoryBook
}

func (failingBook) Add(context.Context, store.Entry) (store.Entry, error) {
	return store.Entry{}, errors.New("disk full")
}

func TestImport(t *testing.T) {
	extractor := &fakeExtractor{}
	book := store.NewMemoryBook()
	svc := NewKitchenService(extractor, book)

	entry, err := svc.Import(context.Background(), "Example.com/goulash?utm_source=feed#top")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "https://example.com/goulash", entry.SourceURL)
	assert.Equal(t, []string{"https://example.com/goulash"}, extractor.calls)

	stored, err := book.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Recipe from https://example.com/goulash", stored.Recipe.Name)
}

func TestImportInvalidURL(t *testing.T) {
	extractor := &fakeExtractor{}
	svc := NewKitchenService(extractor, store.NewMemoryBook())

	_, err := svc.Import(context.Background(), "ftp://example.com/goulash")
	require.ErrorIs(t, err, urlutil.ErrUnsupportedURL)
	assert.Empty(t, extractor.calls)
}

func TestImportExtractionFailureIsNotStored(t *testing.T) {
	extractor := &fakeExtractor{errs: map[string]error{
		"https://example.com/": content.ErrNoRecipe,
	}}
	book := store.NewMemoryBook()
	svc := NewKitchenService(extractor, book)

	_, err := svc.Import(context.Background(), "https://example.com")
	require.ErrorIs(t, err, content.ErrNoRecipe)

	_, total, err := book.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportStoreFailure(t *testing.T) {
	svc := NewKitchenService(&fakeExtractor{}, failingBook{store.NewMemoryBook()})

	_, err := svc.Import(context.Background(), "https://example.com/goulash")
	require.ErrorIs(t, err, ErrStore)
	assert.Equal(t, observability.ErrorStore, ClassifyError(err))
}

func TestImportManyKeepsOrderAndIsolation(t *testing.T) {
	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
		"https://example.com/d",
		"https://example.com/e",
	}
	extractor := &fakeExtractor{
		delay: 10 * time.Millisecond,
		errs: map[string]error{
			"https://example.com/b": content.ErrNoRecipe,
			"https://example.com/d": &httpx.FetchError{URL: "https://example.com/d", Err: errors.New("connection reset")},
		},
	}
	svc := NewKitchenService(extractor, store.NewMemoryBook())

	results := svc.ImportMany(context.Background(), urls, 2)
	require.Len(t, results, len(urls))
	for i, res := range results {
		assert.Equal(t, urls[i], res.URL)
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, content.ErrNoRecipe)
	assert.NoError(t, results[2].Err)
	var fe *httpx.FetchError
	assert.ErrorAs(t, results[3].Err, &fe)
	assert.NoError(t, results[4].Err)
	assert.Equal(t, "Recipe from https://example.com/e", results[4].Entry.Recipe.Name)

	assert.LessOrEqual(t, extractor.peak.Load(), int32(2))
	assert.Len(t, extractor.calls, len(urls))
}

func TestImportManyEmpty(t *testing.T) {
	svc := NewKitchenService(&fakeExtractor{}, store.NewMemoryBook())
	assert.Empty(t, svc.ImportMany(context.Background(), nil, 0))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: observability.ErrorUnknown},
		{name: "invalid url", err: fmt.Errorf("%w: empty url", urlutil.ErrUnsupportedURL), want: observability.ErrorInvalidURL},
		{name: "no recipe", err: content.ErrNoRecipe, want: observability.ErrorNoRecipe},
		{name: "encoding", err: &content.EncodingError{Offset: 3}, want: observability.ErrorEncoding},
		{name: "decode", err: &recipe.DecodeError{Path: "name", Kind: recipe.KindMissing}, want: observability.ErrorDecode},
		{name: "transport", err: &httpx.FetchError{URL: "https://example.com", Err: errors.New("dial tcp")}, want: observability.ErrorTransport},
		{name: "rate limited", err: &httpx.FetchError{URL: "https://example.com", Status: http.StatusTooManyRequests, Err: errors.New("slow down")}, want: observability.ErrorRateLimit},
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: observability.ErrorTransport},
		{name: "not found", err: store.ErrNotFound, want: observability.ErrorStore},
		{name: "other", err: errors.New("boom"), want: observability.ErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
