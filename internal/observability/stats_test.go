package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
)

func TestSnapshotCounts(t *testing.T) {
	before := Snapshot()

	IncPagesFetched()
	IncRecipesExtracted()
	IncCandidateFailure("type")
	IncCandidateFailure("")
	IncError(ErrorNoRecipe, "extractor")
	ObserveExtractDuration(0.5)
	ObserveExtractDuration(0)

	after := Snapshot()
	assert.Equal(t, before.PagesFetched+1, after.PagesFetched)
	assert.Equal(t, before.RecipesExtracted+1, after.RecipesExtracted)
	assert.Equal(t, before.ErrorsTotal+1, after.ErrorsTotal)
	assert.Equal(t, before.CandidateFailures["type"]+1, after.CandidateFailures["type"])
	assert.Equal(t, before.CandidateFailures[ErrorUnknown]+1, after.CandidateFailures[ErrorUnknown])
	assert.Equal(t, before.ErrorsByType[ErrorNoRecipe]+1, after.ErrorsByType[ErrorNoRecipe])
	assert.Equal(t, before.ErrorsByComponent["extractor"]+1, after.ErrorsByComponent["extractor"])
	assert.Greater(t, after.ExtractSecondsAvg, 0.0)
}

func TestSnapshotIsACopy(t *testing.T) {
	IncError(ErrorStore, "store")
	snap := Snapshot()
	snap.ErrorsByType[ErrorStore] = 0
	assert.NotZero(t, Snapshot().ErrorsByType[ErrorStore])
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ErrorUnknown},
		{name: "fetch", err: &httpx.FetchError{URL: "https://example.com", Err: errors.New("refused")}, want: ErrorTransport},
		{name: "wrapped fetch", err: fmt.Errorf("import: %w", &httpx.FetchError{URL: "https://example.com", Status: http.StatusTooManyRequests}), want: ErrorRateLimit},
		{name: "canceled", err: context.Canceled, want: ErrorTransport},
		{name: "other", err: errors.New("boom"), want: ErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFetchError(tt.err))
		})
	}
}
