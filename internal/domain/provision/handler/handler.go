// Package handler exposes job provisioning over HTTP for tracker
// automations.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/filmbudget/budget-sync/internal/domain/provision/service"
)

// ProvisionHandler serves the setup-budget webhook
type ProvisionHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewProvisionHandler creates a new provision handler
func NewProvisionHandler(svc *service.Service, logger *slog.Logger) *ProvisionHandler {
	return &ProvisionHandler{svc: svc, logger: logger}
}

// Register mounts the handler's routes on the mux.
func (h *ProvisionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/setup-budget", h.SetupBudget)
}

type setupBudgetRequest struct {
	TaskID string `json:"task_id"`
}

// SetupBudget handles the tracker automation payload for a new job.
func (h *ProvisionHandler) SetupBudget(w http.ResponseWriter, r *http.Request) {
	var req setupBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "missing task_id in payload")
		return
	}

	result, err := h.svc.SetupBudget(r.Context(), req.TaskID)
	if err != nil {
		h.logger.Error("job provisioning failed",
			slog.String("task_id", req.TaskID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"task_id":    result.TaskID,
		"budget_url": result.BudgetURL,
		"list_id":    result.ListID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
