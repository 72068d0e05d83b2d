package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

type stubExtractor struct {
	err error
}

func (s stubExtractor) FromURL(_ context.Context, rawURL string) (recipe.Recipe, error) {
	if s.err != nil {
		return recipe.Recipe{}, s.err
	}
	return recipe.Decode(`{"name":"Goulash","image":"https://example.com/g.jpg","recipeIngredient":["Beef"],"totalTime":"PT2H40M"}`)
}

type entryResponse struct {
	ID        string          `json:"id"`
	SourceURL string          `json:"source_url"`
	Recipe    json.RawMessage `json:"recipe"`
}

func newTestServer(t *testing.T, extractErr error, opts ...Option) (*httptest.Server, *store.MemoryBook) {
	t.Helper()
	book := store.NewMemoryBook()
	srv := NewServer(core.NewKitchenService(stubExtractor{err: extractErr}, book), opts...)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, book
}

func post(t *testing.T, ts *httptest.Server, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/kitchen/recipes", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAddRecipe(t *testing.T) {
	ts, book := newTestServer(t, nil)

	resp := post(t, ts, `{"url":"https://example.com/goulash"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got entryResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, "https://example.com/goulash", got.SourceURL)

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal(got.Recipe, &r))
	assert.Equal(t, "Goulash", r.Name)

	_, total, err := book.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestAddRecipeExtractionFailures(t *testing.T) {
	for name, extractErr := range map[string]error{
		"no recipe": content.ErrNoRecipe,
		"encoding":  &content.EncodingError{Offset: 10},
		"transport": &httpx.FetchError{URL: "https://example.com/goulash", Err: errors.New("refused")},
	} {
		t.Run(name, func(t *testing.T) {
			ts, book := newTestServer(t, extractErr)

			resp := post(t, ts, `{"url":"https://example.com/goulash"}`, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, "Failed to extract recipe", body["error"])

			_, total, err := book.List(context.Background(), 10, 0)
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func TestAddRecipeBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "not json", body: `url=https://example.com`, want: "Invalid request body"},
		{name: "missing url", body: `{}`, want: "URL is required"},
		{name: "bad scheme", body: `{"url":"ftp://example.com/goulash"}`, want: "Invalid recipe URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, nil)
			resp := post(t, ts, tt.body, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestAddRecipeRequiresToken(t *testing.T) {
	ts, _ := newTestServer(t, nil, WithAPIToken("secret"))

	assert.Equal(t, http.StatusUnauthorized, post(t, ts, `{"url":"https://example.com/goulash"}`, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, post(t, ts, `{"url":"https://example.com/goulash"}`, "wrong").StatusCode)
	assert.Equal(t, http.StatusCreated, post(t, ts, `{"url":"https://example.com/goulash"}`, "secret").StatusCode)

	resp, err := http.Get(ts.URL + "/kitchen/recipes")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListAndGetRecipes(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	for _, u := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"} {
		require.Equal(t, http.StatusCreated, post(t, ts, `{"url":"`+u+`"}`, "").StatusCode)
	}

	resp, err := http.Get(ts.URL + "/kitchen/recipes?limit=2&offset=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items  []entryResponse `json:"items"`
		Limit  int             `json:"limit"`
		Offset int             `json:"offset"`
		Total  int             `json:"total"`
	}
	decodeBody(t, resp, &page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "https://example.com/b", page.Items[0].SourceURL)

	one, err := http.Get(ts.URL + "/kitchen/recipes/" + page.Items[0].ID)
	require.NoError(t, err)
	defer one.Body.Close()
	require.Equal(t, http.StatusOK, one.StatusCode)
	var got entryResponse
	decodeBody(t, one, &got)
	assert.Equal(t, page.Items[0].ID, got.ID)
}

func TestGetRecipeErrors(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	missing, err := http.Get(ts.URL + "/kitchen/recipes/" + uuid.NewString())
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	invalid, err := http.Get(ts.URL + "/kitchen/recipes/not-a-uuid")
	require.NoError(t, err)
	defer invalid.Body.Close()
	assert.Equal(t, http.StatusBadRequest, invalid.StatusCode)
}

func TestServiceEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, nil, WithVersion("1.2.3"))

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	doc, err := http.Get(ts.URL + "/openapi.json")
	require.NoError(t, err)
	defer doc.Body.Close()
	require.Equal(t, http.StatusOK, doc.StatusCode)
	var spec struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	decodeBody(t, doc, &spec)
	assert.Equal(t, "3.0.0", spec.OpenAPI)
	assert.Equal(t, "1.2.3", spec.Info.Version)
	assert.Contains(t, spec.Paths["/kitchen/recipes"], "post")

	stats, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	assert.Equal(t, http.StatusOK, stats.StatusCode)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
