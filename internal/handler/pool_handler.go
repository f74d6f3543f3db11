package handler

import (
	"encoding/json"
	"net/http"

	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Pool operations: distribution, recall, cleanup, unlock
// ============================================================

// PoolHandler serves the lead movement endpoints.
type PoolHandler struct {
	distributor *service.DistributorService
	recall      *service.RecallService
	cleanup     *service.CleanupService
	logger      *zap.Logger
}

// NewPoolHandler creates the pool operations handler.
func NewPoolHandler(
	distributor *service.DistributorService,
	recall *service.RecallService,
	cleanup *service.CleanupService,
	logger *zap.Logger,
) *PoolHandler {
	return &PoolHandler{
		distributor: distributor,
		recall:      recall,
		cleanup:     cleanup,
		logger:      logger,
	}
}

// Distribute handles POST /v1/admin/distribute and
// POST /v1/internal/distribute. Synchronous: the response carries the
// full run summary.
func (h *PoolHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	result, err := h.distributor.Distribute(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type recallRequest struct {
	Confirm bool `json:"confirm"`
}

// RecallAll handles POST /v1/admin/leads/recall. Destructive, so the
// body must carry an explicit confirmation flag.
func (h *PoolHandler) RecallAll(w http.ResponseWriter, r *http.Request) {
	var req recallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "recall requires confirm: true")
		return
	}

	result, err := h.recall.RecallAll(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Cleanup handles POST /v1/admin/leads/cleanup.
func (h *PoolHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.cleanup.CleanupBadLeads(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UnlockPool handles POST /v1/admin/pool/unlock, the crash-recovery
// path for leads stuck in the locked state.
func (h *PoolHandler) UnlockPool(w http.ResponseWriter, r *http.Request) {
	result, err := h.recall.ForceUnlockPool(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
