package handler

import (
	"net/http"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates the HTTP router with all routes and middleware.
// Admin routes require an operator bearer token; mutating routes
// additionally require the admin role. The internal trigger route is
// keyed for the external scheduler instead.
func NewRouter(
	admin *AdminHandler,
	pool *PoolHandler,
	auth *service.AuthService,
	control *service.ControlService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(control))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		r.Route("/admin", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(auth, logger))

			// =============================================
			// Dashboard reads (operator or admin)
			// =============================================
			r.Get("/supply", admin.Supply)
			r.Get("/leads/bad", admin.BadLeads)
			r.Get("/companies/status", admin.CompaniesStatus)
			r.Get("/ops/summary", admin.OpsSummary)
			r.Get("/maintenance", admin.GetMaintenance)

			// =============================================
			// Mutations (admin role only)
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(logger))

				r.Post("/distribute", pool.Distribute)
				r.Post("/leads/cleanup", pool.Cleanup)
				r.Post("/leads/recall", pool.RecallAll)
				r.Post("/pool/unlock", pool.UnlockPool)
				r.Put("/maintenance", admin.SetMaintenance)
				r.Put("/companies/{companyID}/active", admin.SetCompanyActive)
			})
		})

		// =============================================
		// Scheduler trigger (static key, no JWT)
		// =============================================
		r.Route("/internal", func(r chi.Router) {
			r.Use(SchedulerKeyMiddleware(auth, logger))

			r.Post("/distribute", pool.Distribute)
		})
	})

	return r
}

// healthzHandler probes the settings table as a cheap liveness check on
// the backing store.
func healthzHandler(control *service.ControlService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "leadpool-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if control != nil {
			start := time.Now()
			_, err := control.IsPaused(r.Context())
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
