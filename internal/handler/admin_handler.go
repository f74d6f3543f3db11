package handler

import (
	"encoding/json"
	"net/http"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Admin reporting and control endpoints
// ============================================================

// AdminHandler serves the read-heavy dashboard endpoints plus the
// maintenance and company toggles.
type AdminHandler struct {
	supply    *service.SupplyService
	reporting *service.ReportingService
	control   *service.ControlService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAdminHandler creates the admin reporting handler.
func NewAdminHandler(
	supply *service.SupplyService,
	reporting *service.ReportingService,
	control *service.ControlService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		supply:    supply,
		reporting: reporting,
		control:   control,
		metrics:   metrics,
		logger:    logger,
	}
}

// Supply handles GET /v1/admin/supply. Always computed fresh; the
// snapshot flags tell the caller which side of the ledger is partial.
func (h *AdminHandler) Supply(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.supply.ComputeSupply(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// BadLeads handles GET /v1/admin/leads/bad.
func (h *AdminHandler) BadLeads(w http.ResponseWriter, r *http.Request) {
	report, err := h.supply.BadLeadsAnalytics(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// CompaniesStatus handles GET /v1/admin/companies/status.
func (h *AdminHandler) CompaniesStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reporting.CompanyDistributionStatus(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// OpsSummary handles GET /v1/admin/ops/summary.
func (h *AdminHandler) OpsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.OpsSummary())
}

type maintenanceRequest struct {
	Paused *bool `json:"paused"`
}

type maintenanceResponse struct {
	Paused bool `json:"paused"`
}

// GetMaintenance handles GET /v1/admin/maintenance.
func (h *AdminHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	paused, err := h.control.IsPaused(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, maintenanceResponse{Paused: paused})
}

// SetMaintenance handles PUT /v1/admin/maintenance.
func (h *AdminHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Paused == nil {
		writeError(w, http.StatusBadRequest, "paused is required")
		return
	}

	if err := h.control.SetPaused(r.Context(), *req.Paused); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, maintenanceResponse{Paused: *req.Paused})
}

type companyActiveRequest struct {
	Active *bool `json:"active"`
}

// SetCompanyActive handles PUT /v1/admin/companies/{companyID}/active.
func (h *AdminHandler) SetCompanyActive(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req companyActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "active is required")
		return
	}

	if err := h.reporting.SetCompanyActive(r.Context(), companyID, *req.Active); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, domain.SuccessResponse{
		Message: "company updated",
		ID:      companyID,
	})
}
