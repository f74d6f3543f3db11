package domain

// ============================================================
// Health & operational API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// OpsSummary is returned by GET /v1/admin/ops/summary, a counter
// readback so operators can see engine activity without a Prometheus
// deployment in front of them.
type OpsSummary struct {
	DistributionRuns int64   `json:"distributionRuns"`
	PausedRuns       int64   `json:"pausedRuns"`
	LeadsMoved       int64   `json:"leadsMoved"`
	ClaimConflicts   int64   `json:"claimConflicts"`
	LeadsRecalled    int64   `json:"leadsRecalled"`
	LeadsCleaned     int64   `json:"leadsCleaned"`
	StoreErrors      int64   `json:"storeErrors"`
	MovedPerRun      float64 `json:"movedPerRun"`
	ConflictRate     float64 `json:"conflictRate"`
	Period           string  `json:"period"`
}

// SuccessResponse wraps a successful fire-and-forget mutation.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
