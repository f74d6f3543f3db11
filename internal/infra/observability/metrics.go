package observability

import (
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the lead pool engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	runDuration    *prometheus.HistogramVec
	runsTotal      *prometheus.CounterVec
	leadsMoved     prometheus.Counter
	claimConflicts prometheus.Counter
	leadsRecalled  prometheus.Counter
	leadsCleaned   *prometheus.CounterVec
	leadsUnlocked  prometheus.Counter
	storeErrors    *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	poolAvailable  prometheus.Gauge
	poolDemand     prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadpool_run_duration_seconds",
				Help:    "Duration of engine operations by type.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpool_distribution_runs_total",
				Help: "Total distribution runs by outcome.",
			},
			[]string{"outcome"}, // completed, paused, error
		),
		leadsMoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadpool_leads_moved_total",
				Help: "Total leads distributed to companies.",
			},
		),
		claimConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadpool_claim_conflicts_total",
				Help: "Total optimistic claims lost to a concurrent run.",
			},
		),
		leadsRecalled: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadpool_leads_recalled_total",
				Help: "Total company lead copies deleted by recall.",
			},
		),
		leadsCleaned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpool_leads_cleaned_total",
				Help: "Total bad leads removed from the pool by reason.",
			},
			[]string{"reason"},
		),
		leadsUnlocked: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadpool_leads_unlocked_total",
				Help: "Total stuck locks cleared by force-unlock.",
			},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpool_store_errors_total",
				Help: "Total errors from the backend store by table.",
			},
			[]string{"table"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpool_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpool_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		poolAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadpool_available_leads",
				Help: "Unowned platform-pool leads at last snapshot.",
			},
		),
		poolDemand: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadpool_daily_demand",
				Help: "Sum of active companies' daily quotas at last snapshot.",
			},
		),
	}
}

// ObserveRunDuration records how long an engine operation took.
func (m *Metrics) ObserveRunDuration(operation string, d time.Duration) {
	m.runDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRun counts a distribution run by outcome (completed, paused, error).
func (m *Metrics) IncrRun(outcome string) {
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// AddLeadsMoved counts leads distributed in a run.
func (m *Metrics) AddLeadsMoved(n int) {
	m.leadsMoved.Add(float64(n))
}

// IncrClaimConflict counts a lead lost to a concurrent run.
func (m *Metrics) IncrClaimConflict() {
	m.claimConflicts.Inc()
}

// AddLeadsRecalled counts company copies deleted by recall.
func (m *Metrics) AddLeadsRecalled(n int) {
	m.leadsRecalled.Add(float64(n))
}

// IncrLeadCleaned counts a bad lead removed under a quality rule.
func (m *Metrics) IncrLeadCleaned(reason string) {
	m.leadsCleaned.WithLabelValues(reason).Inc()
}

// AddLeadsUnlocked counts stuck locks cleared.
func (m *Metrics) AddLeadsUnlocked(n int) {
	m.leadsUnlocked.Add(float64(n))
}

// IncrStoreError counts a backend store failure for a table.
func (m *Metrics) IncrStoreError(table string) {
	m.storeErrors.WithLabelValues(table).Inc()
}

// IncrCacheHit counts a cache hit.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss counts a cache miss.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// SetPoolGauges publishes the latest supply snapshot numbers.
func (m *Metrics) SetPoolGauges(available, demand int) {
	m.poolAvailable.Set(float64(available))
	m.poolDemand.Set(float64(demand))
}

// OpsSummary reads the counters back into an operator-facing summary.
func (m *Metrics) OpsSummary() *domain.OpsSummary {
	completed := getCounterValue(m.runsTotal, "completed")
	paused := getCounterValue(m.runsTotal, "paused")
	failed := getCounterValue(m.runsTotal, "error")
	moved := getRawCounterValue(m.leadsMoved)
	conflicts := getRawCounterValue(m.claimConflicts)
	recalled := getRawCounterValue(m.leadsRecalled)

	cleaned := float64(0)
	for _, reason := range []string{
		domain.ReasonMissingContact,
		domain.ReasonPlaceholderEmail,
		domain.ReasonTestData,
		domain.ReasonShortPhone,
		domain.ReasonDuplicatePhone,
	} {
		cleaned += getCounterValue(m.leadsCleaned, reason)
	}

	storeErrors := float64(0)
	for _, table := range []string{"pool_leads", "company_leads", "companies", "system_settings"} {
		storeErrors += getCounterValue(m.storeErrors, table)
	}

	runs := completed + paused + failed
	movedPerRun := float64(0)
	conflictRate := float64(0)
	if completed > 0 {
		movedPerRun = moved / completed
	}
	if moved+conflicts > 0 {
		conflictRate = conflicts / (moved + conflicts)
	}

	return &domain.OpsSummary{
		DistributionRuns: int64(runs),
		PausedRuns:       int64(paused),
		LeadsMoved:       int64(moved),
		ClaimConflicts:   int64(conflicts),
		LeadsRecalled:    int64(recalled),
		LeadsCleaned:     int64(cleaned),
		StoreErrors:      int64(storeErrors),
		MovedPerRun:      movedPerRun,
		ConflictRate:     conflictRate,
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// getRawCounterValue extracts the current float64 value from a plain Counter.
func getRawCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
