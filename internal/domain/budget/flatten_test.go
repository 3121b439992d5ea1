package budget_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
)

func flattenFixture() *budget.Budget {
	f := func(v float64) *float64 { return &v }
	classA := validClassA()
	classA.EstimateSubtotal = 13000
	classA.EstimateTotal = 13000
	classA.LineItems[0].ValidationStatus = budget.StatusWarning
	classA.LineItems[0].ValidationMessages = []string{
		"Has estimate rate but missing days",
		"Has OT rate but missing hours",
	}
	classA.LineItems[1].EstimateDays = str("#N/A")

	return &budget.Budget{
		UploadID:      "summer_campaign-budget_tab-08-31-26_1.0.1",
		BudgetName:    "summer_campaign-budget_tab",
		Version:       "1.0.1",
		VersionStatus: "draft",
		SpreadsheetID: "sheet-id",
		SheetGID:      "0",
		SheetTitle:    "Budget Tab",
		ProcessedAt:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Project: budget.ProjectSummary{
			ProjectTitle:      "Summer Campaign",
			ProductionCompany: "Redwood Pictures",
			Timeline: budget.Timeline{
				PreProdDays: str("3 days"),
				StudioDays:  str("2"),
			},
		},
		Financials: budget.Financials{
			FirmBid: []budget.FinancialLine{
				{Label: "Pre-production and wrap costs (Total A,C)", Estimated: f(13000)},
				{Label: "FIRM BID", Estimated: f(13000), Actual: f(12500)},
			},
			GrandTotal: &budget.FinancialLine{Label: "GRAND BID TOTAL", Estimated: f(14560)},
		},
		Classes:    map[string]*budget.BudgetClass{"A": classA},
		ClassOrder: []string{"A"},
		Validation: budget.ValidationResult{
			Status: budget.StatusWarning,
			Classes: []budget.ClassValidationSummary{
				{
					ClassCode: "A",
					Status:    budget.StatusWarning,
					Messages:  []string{"Has estimate rate but missing days", "Has OT rate but missing hours"},
				},
			},
		},
	}
}

func TestFlattenCover(t *testing.T) {
	row := budget.FlattenCover(flattenFixture())

	assert.Equal(t, "summer_campaign-budget_tab-08-31-26_1.0.1", row.BudgetID)
	assert.Equal(t, "1.0.1", row.Version)
	assert.Equal(t, "Summer Campaign", row.ProjectTitle)

	// Timeline strings coerce to integer day counts.
	assert.Equal(t, 3, row.PreProdDays)
	assert.Equal(t, 2, row.StudioDays)
	assert.Equal(t, 0, row.WrapDays)

	// Firm bid figures come off the stated FIRM BID row, not the categories.
	require.NotNil(t, row.FirmBidEstimated)
	assert.InDelta(t, 13000, *row.FirmBidEstimated, 0.001)
	require.NotNil(t, row.FirmBidActual)
	assert.InDelta(t, 12500, *row.FirmBidActual, 0.001)
	require.NotNil(t, row.GrandTotalEstimated)
	assert.InDelta(t, 14560, *row.GrandTotalEstimated, 0.001)
	assert.Nil(t, row.GrandTotalActual)

	assert.Equal(t, budget.StatusWarning, row.ValidationStatus)
}

func TestFlattenDetails(t *testing.T) {
	rows := budget.FlattenDetails(flattenFixture())
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "A", first.ClassCode)
	assert.Equal(t, "Director", first.LineItemDescription)
	require.NotNil(t, first.EstimateDays)
	assert.InDelta(t, 5, *first.EstimateDays, 0.001)
	require.NotNil(t, first.EstimateRate)
	assert.InDelta(t, 1400, *first.EstimateRate, 0.001)
	require.NotNil(t, first.EstimateTotal)
	assert.InDelta(t, 7000, *first.EstimateTotal, 0.001)
	assert.Nil(t, first.ActualTotal)
	assert.InDelta(t, 13000, first.ClassEstimateSubtotal, 0.001)
	assert.Equal(t,
		"Has estimate rate but missing days; Has OT rate but missing hours",
		first.ValidationMessages)

	// Not-available markers become NULL, not zero.
	assert.Nil(t, rows[1].EstimateDays)
	assert.Empty(t, rows[1].ValidationMessages)
}

func TestFlattenValidations(t *testing.T) {
	rows := budget.FlattenValidations(flattenFixture())
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].ClassCode)
	assert.Equal(t, budget.StatusWarning, rows[0].Status)
	assert.Equal(t, "Has estimate rate but missing days", rows[0].Message)
	assert.Equal(t, "Has OT rate but missing hours", rows[1].Message)
}
