package observability

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_hunter_pages_fetched_total",
		Help: "Total number of recipe pages fetched",
	})

	recipesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_hunter_recipes_extracted_total",
		Help: "Total number of recipes extracted from pages",
	})

	candidateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_hunter_candidate_failures_total",
		Help: "JSON-LD blocks that did not decode as a recipe, by failure kind",
	}, []string{"kind"})

	errorsTotalVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_hunter_errors_total",
		Help: "Failed operations by error type and component",
	}, []string{"type", "component"})

	extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipe_hunter_extract_duration_seconds",
		Help:    "Time spent fetching and extracting one recipe page",
		Buckets: prometheus.DefBuckets,
	})
)

type StatsSnapshot struct {
	PagesFetched      uint64            `json:"pages_fetched"`
	RecipesExtracted  uint64            `json:"recipes_extracted"`
	ErrorsTotal       uint64            `json:"errors_total"`
	ExtractSecondsAvg float64           `json:"extract_seconds_avg"`
	CandidateFailures map[string]uint64 `json:"candidate_failures,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pagesFetched     uint64
	recipesExtracted uint64
	errorsTotal      uint64

	extractCount uint64
	extractNanos uint64

	statsMu           sync.Mutex
	candidateFailures = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncPagesFetched() {
	atomic.AddUint64(&pagesFetched, 1)
	pagesFetchedTotal.Inc()
}

func IncRecipesExtracted() {
	atomic.AddUint64(&recipesExtracted, 1)
	recipesExtractedTotal.Inc()
}

func IncCandidateFailure(kind string) {
	if kind == "" {
		kind = ErrorUnknown
	}
	statsMu.Lock()
	candidateFailures[kind]++
	statsMu.Unlock()
	candidateFailuresTotal.WithLabelValues(kind).Inc()
}

func ObserveExtractDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&extractCount, 1)
	atomic.AddUint64(&extractNanos, uint64(seconds*1e9))
	extractDuration.Observe(seconds)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
	errorsTotalVec.WithLabelValues(errType, component).Inc()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	candidateCopy := copyMap(candidateFailures)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&extractCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&extractNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PagesFetched:      atomic.LoadUint64(&pagesFetched),
		RecipesExtracted:  atomic.LoadUint64(&recipesExtracted),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		ExtractSecondsAvg: avg,
		CandidateFailures: candidateCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
