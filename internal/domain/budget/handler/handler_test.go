package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/internal/domain/budget/handler"
)

func TestParseBudgetURL(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		spreadsheetID string
		sheetGID      string
	}{
		{
			name:          "plain sheet link",
			url:           "https://docs.google.com/spreadsheets/d/1AbC-dEf_123",
			spreadsheetID: "1AbC-dEf_123",
		},
		{
			name:          "link with gid query",
			url:           "https://docs.google.com/spreadsheets/d/abc123/edit?gid=456",
			spreadsheetID: "abc123",
			sheetGID:      "456",
		},
		{
			name:          "link with gid fragment",
			url:           "https://docs.google.com/spreadsheets/d/abc123/edit#gid=789",
			spreadsheetID: "abc123",
			sheetGID:      "789",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, gid, err := handler.ParseBudgetURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.spreadsheetID, id)
			assert.Equal(t, tt.sheetGID, gid)
		})
	}
}

func TestParseBudgetURLRejectsOtherHosts(t *testing.T) {
	for _, url := range []string{
		"",
		"http://docs.google.com/spreadsheets/d/abc123",
		"https://evil.example.com/spreadsheets/d/abc123",
		"https://docs.google.com/document/d/abc123",
	} {
		_, _, err := handler.ParseBudgetURL(url)
		assert.ErrorIs(t, err, handler.ErrInvalidBudgetURL, "url %q", url)
	}
}

func TestProcessBudgetRejectsBadRequests(t *testing.T) {
	// Requests below are rejected before the service is touched, so a
	// handler without one is safe here.
	h := handler.NewBudgetHandler(nil, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	h.Register(mux)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/process-budget", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	errBody := func(rec *httptest.ResponseRecorder) string {
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body["error"]
	}

	t.Run("invalid json", func(t *testing.T) {
		rec := post("{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid JSON payload", errBody(rec))
	})

	t.Run("missing budget url", func(t *testing.T) {
		rec := post(`{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing budget_url in payload", errBody(rec))
	})

	t.Run("not a sheets link", func(t *testing.T) {
		rec := post(`{"budget_url": "https://example.com/budget.xlsx"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handler.ErrInvalidBudgetURL.Error(), errBody(rec))
	})
}
