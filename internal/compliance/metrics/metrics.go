package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the compliance engine.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	Evaluations      *prometheus.CounterVec
	EvaluateDuration prometheus.Histogram
	ScoresByBand     *prometheus.CounterVec
	IssuesCreated    *prometheus.CounterVec
	IssuesResolved   prometheus.Counter
	ExpansionCache   *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	RefreshFailures  prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_evaluations_total",
			Help: "Total number of evaluations by mode (persisted or dry_run)",
		}, []string{"mode"}),
		EvaluateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxsafe_evaluate_duration_seconds",
			Help:    "Duration of resolve, expand and classify for one profile",
			Buckets: durationBuckets,
		}),
		ScoresByBand: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_scores_total",
			Help: "Total number of tax-safety scores computed by band",
		}, []string{"band"}),
		IssuesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_review_issues_created_total",
			Help: "Total number of review issues raised by type",
		}, []string{"type"}),
		IssuesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsafe_review_issues_resolved_total",
			Help: "Total number of review issues resolved by a rescan",
		}),
		ExpansionCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsafe_expansion_cache_total",
			Help: "Deadline expansion cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxsafe_refresh_duration_seconds",
			Help:    "Duration of a batch refresh across businesses",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsafe_refresh_failures_total",
			Help: "Total number of businesses whose refresh failed",
		}),
	}
}

func (m *Metrics) IncrementEvaluation(dryRun bool) {
	if m == nil {
		return
	}
	mode := "persisted"
	if dryRun {
		mode = "dry_run"
	}
	m.Evaluations.WithLabelValues(mode).Inc()
}

// ObserveEvaluate records evaluation latency. Call with time.Now() at the
// start of the operation.
func (m *Metrics) ObserveEvaluate(start time.Time) {
	if m == nil {
		return
	}
	m.EvaluateDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementScore(band string) {
	if m == nil {
		return
	}
	m.ScoresByBand.WithLabelValues(band).Inc()
}

func (m *Metrics) IncrementIssueCreated(issueType string) {
	if m == nil {
		return
	}
	m.IssuesCreated.WithLabelValues(issueType).Inc()
}

func (m *Metrics) AddIssuesResolved(n int) {
	if m == nil || n == 0 {
		return
	}
	m.IssuesResolved.Add(float64(n))
}

func (m *Metrics) IncrementExpansionCache(result string) {
	if m == nil {
		return
	}
	m.ExpansionCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRefresh(start time.Time, failures int) {
	if m == nil {
		return
	}
	m.RefreshDuration.Observe(time.Since(start).Seconds())
	if failures > 0 {
		m.RefreshFailures.Add(float64(failures))
	}
}
