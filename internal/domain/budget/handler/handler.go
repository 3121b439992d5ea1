// Package handler exposes budget processing over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/filmbudget/budget-sync/internal/domain/budget/service"
)

var (
	sheetURLPattern = regexp.MustCompile(`^https://docs\.google\.com/spreadsheets/d/[A-Za-z0-9_-]+`)
	spreadsheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
	sheetGIDRe      = regexp.MustCompile(`[?&#]gid=([0-9]+)`)
)

// ErrInvalidBudgetURL reports a URL that is not a Google Sheets link.
var ErrInvalidBudgetURL = errors.New("budget_url is not a Google Sheets URL")

// ParseBudgetURL validates a budget link and extracts the spreadsheet ID
// and optional tab gid. Only https links on the Google Sheets host are
// accepted.
func ParseBudgetURL(url string) (spreadsheetID, sheetGID string, err error) {
	if !sheetURLPattern.MatchString(url) {
		return "", "", ErrInvalidBudgetURL
	}
	m := spreadsheetIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", ErrInvalidBudgetURL
	}
	spreadsheetID = m[1]
	if g := sheetGIDRe.FindStringSubmatch(url); g != nil {
		sheetGID = g[1]
	}
	return spreadsheetID, sheetGID, nil
}

// BudgetHandler serves the process-budget endpoint
type BudgetHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(svc *service.Service, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{svc: svc, logger: logger}
}

// Register mounts the handler's routes on the mux.
func (h *BudgetHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/process-budget", h.ProcessBudget)
}

type processBudgetRequest struct {
	BudgetURL string `json:"budget_url"`
}

// ProcessBudget extracts, validates, and stores the budget behind the
// posted sheet URL.
func (h *BudgetHandler) ProcessBudget(w http.ResponseWriter, r *http.Request) {
	var req processBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.BudgetURL == "" {
		writeError(w, http.StatusBadRequest, "missing budget_url in payload")
		return
	}

	spreadsheetID, sheetGID, err := ParseBudgetURL(req.BudgetURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.svc.ProcessBudget(r.Context(), spreadsheetID, sheetGID)
	if err != nil {
		h.logger.Error("budget processing failed",
			slog.String("spreadsheet_id", spreadsheetID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "success",
		"upload_id":         b.UploadID,
		"version":           b.Version,
		"validation_status": b.Validation.Status,
		"classes":           b.ClassOrder,
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
