package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeHit            = "hit"
	OutcomeCreated        = "created"
	OutcomeHealed         = "healed"
	OutcomeConflictReread = "conflict_reread"
)

// Metrics tracks product resolution, search index health, pantry writes and
// recipe matching latency.
type Metrics struct {
	Resolutions       *prometheus.CounterVec
	SearchIndexErrors *prometheus.CounterVec
	PantryWrites      *prometheus.CounterVec
	MatchDuration     prometheus.Histogram
	MatchResults      prometheus.Histogram
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_product_resolutions_total",
			Help: "Product resolutions by outcome",
		}, []string{"outcome"}),
		SearchIndexErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_search_index_errors_total",
			Help: "Failed search index calls by operation",
		}, []string{"op"}),
		PantryWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_writes_total",
			Help: "Pantry ledger writes by operation",
		}, []string{"op"}),
		MatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pantry_match_duration_seconds",
			Help:    "Duration of ranking recipes against a pantry snapshot",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		MatchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pantry_match_results",
			Help:    "Number of recipes returned per match request",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
	}
}

func (m *Metrics) IncResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSearchIndexError(op string) {
	if m == nil {
		return
	}
	m.SearchIndexErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) IncPantryWrite(op string) {
	if m == nil {
		return
	}
	m.PantryWrites.WithLabelValues(op).Inc()
}

// ObserveMatch records the duration of a ranking pass and its result size.
// Call with time.Now() taken before ranking.
func (m *Metrics) ObserveMatch(start time.Time, results int) {
	if m == nil {
		return
	}
	m.MatchDuration.Observe(time.Since(start).Seconds())
	m.MatchResults.Observe(float64(results))
}
