package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
	"github.com/filmbudget/budget-sync/internal/domain/warehouse/repository"
)

// anyArgs returns n pgxmock.AnyArg() matchers; pgxmock treats a missing
// WithArgs as "expects zero arguments", so arg-agnostic expectations need
// an explicit matcher per argument.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func float64Ptr(v float64) *float64 { return &v }

func newMockWarehouse(t *testing.T) (*repository.PostgresWarehouse, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return repository.NewPostgresWarehouse(mock), mock
}

func TestUpsertProject(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	mock.ExpectExec("INSERT INTO projects").
		WithArgs("summer_campaign", "Summer Campaign").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := wh.UpsertProject(context.Background(), "summer_campaign", "Summer Campaign")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProjectError(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	mock.ExpectExec("INSERT INTO projects").
		WithArgs("summer_campaign", "Summer Campaign").
		WillReturnError(errors.New("connection reset"))

	err := wh.UpsertProject(context.Background(), "summer_campaign", "Summer Campaign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert project")
}

func TestSaveBudget(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	cover := budget.CoverRow{
		BudgetID:    "summer_campaign-main-08-31-26_1.0.1",
		BudgetName:  "summer_campaign-main",
		Version:     "1.0.1",
		ProcessedAt: time.Now(),
	}
	details := []budget.DetailRow{
		{BudgetID: cover.BudgetID, ClassCode: "A", LineItemNumber: "1"},
		{BudgetID: cover.BudgetID, ClassCode: "A", LineItemNumber: "2"},
	}
	findings := []budget.ValidationRow{
		{BudgetID: cover.BudgetID, ClassCode: "A", Status: "warning", Message: "Has estimate rate but missing days"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO budgets").
		WithArgs(anyArgs(26)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO budget_details").
		WithArgs(anyArgs(25)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO budget_details").
		WithArgs(anyArgs(25)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO budget_validations").
		WithArgs(cover.BudgetID, "A", "warning", "Has estimate rate but missing days").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := wh.SaveBudget(context.Background(), cover, details, findings)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBudgetRollsBackOnDetailError(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	cover := budget.CoverRow{BudgetID: "b1", ProcessedAt: time.Now()}
	details := []budget.DetailRow{{BudgetID: "b1", ClassCode: "A", LineItemNumber: "1"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO budgets").
		WithArgs(anyArgs(26)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO budget_details").
		WithArgs(anyArgs(25)...).
		WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := wh.SaveBudget(context.Background(), cover, details, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert line item A/1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestBudget(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	processedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "budget_name", "version", "version_status", "spreadsheet_id", "sheet_gid", "sheet_title",
		"project_title", "production_company", "contact_phone", "budget_date",
		"director", "producer", "writer",
		"pre_prod_days", "build_days", "pre_light_days", "studio_days", "location_days", "wrap_days",
		"firm_bid_estimated", "firm_bid_actual", "grand_total_estimated", "grand_total_actual",
		"validation_status", "processed_at",
	}).AddRow(
		"summer_campaign-main-08-31-26_1.0.1", "summer_campaign-main", "1.0.1", "draft", "sheet-id", "0", "Main",
		"Summer Campaign", "Redwood Pictures", "555-0100", "2026-08-01",
		"J. Moreau", "K. Osei", "",
		3, 0, 0, 2, 0, 1,
		float64Ptr(265000.0), nil, float64Ptr(301000.0), nil,
		"valid", processedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM budgets").
		WithArgs("summer_campaign-main").
		WillReturnRows(rows)

	cover, err := wh.LatestBudget(context.Background(), "summer_campaign-main")
	require.NoError(t, err)
	require.NotNil(t, cover)

	assert.Equal(t, "1.0.1", cover.Version)
	assert.Equal(t, "Summer Campaign", cover.ProjectTitle)
	assert.Equal(t, 3, cover.PreProdDays)
	require.NotNil(t, cover.FirmBidEstimated)
	assert.InDelta(t, 265000, *cover.FirmBidEstimated, 0.001)
	assert.Nil(t, cover.FirmBidActual)
	assert.True(t, cover.ProcessedAt.Equal(processedAt))
}

func TestLatestBudgetNotFound(t *testing.T) {
	wh, mock := newMockWarehouse(t)

	mock.ExpectQuery("SELECT (.+) FROM budgets").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	cover, err := wh.LatestBudget(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, cover)
}
