package budget_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
)

func str(s string) *string { return &s }

func validClassA() *budget.BudgetClass {
	return &budget.BudgetClass{
		Code: "A",
		Name: "PRE-PRODUCTION & WRAP",
		Totals: budget.ClassTotals{
			EstimateSubtotal: "$13,000.00",
			EstimateTotal:    "$13,000.00",
			ActualSubtotal:   "$0.00",
			ActualTotal:      "$0.00",
		},
		LineItems: []budget.LineItem{
			{
				LineItemNumber:      "1",
				LineItemDescription: "Director",
				EstimateDays:        str("5"),
				EstimateRate:        str("$1,400.00"),
				EstimateTotal:       str("$7,000.00"),
			},
			{
				LineItemNumber:      "2",
				LineItemDescription: "Assistant Director",
				EstimateDays:        str("5"),
				EstimateRate:        str("$1,200.00"),
				EstimateTotal:       str("$6,000.00"),
			},
		},
	}
}

func TestLineItemFindings(t *testing.T) {
	v := budget.NewValidator(0, slog.New(slog.DiscardHandler))

	t.Run("clean item", func(t *testing.T) {
		item := &budget.LineItem{
			LineItemNumber:      "1",
			LineItemDescription: "Director",
			EstimateDays:        str("5"),
			EstimateRate:        str("$1,400.00"),
		}
		assert.Empty(t, v.LineItemFindings(item, false))
	})

	t.Run("missing required fields", func(t *testing.T) {
		findings := v.LineItemFindings(&budget.LineItem{}, false)
		assert.Contains(t, findings, "Missing required field: line_number")
		assert.Contains(t, findings, "Missing required field: description")
	})

	t.Run("rate without days", func(t *testing.T) {
		item := &budget.LineItem{
			LineItemNumber:      "1",
			LineItemDescription: "Director",
			EstimateRate:        str("$1,400.00"),
			ActualRate:          str("$1,200.00"),
		}
		findings := v.LineItemFindings(item, false)
		assert.Contains(t, findings, "Has estimate rate but missing days")
		assert.Contains(t, findings, "Has actual rate but missing days")
	})

	t.Run("percent rate tolerated", func(t *testing.T) {
		item := &budget.LineItem{
			LineItemNumber:      "1",
			LineItemDescription: "Payroll markup",
			EstimateRate:        str("20%"),
		}
		assert.Empty(t, v.LineItemFindings(item, true))
		assert.Contains(t, v.LineItemFindings(item, false), "Has estimate rate but missing days")
	})

	t.Run("orphaned overtime cells", func(t *testing.T) {
		item := &budget.LineItem{
			LineItemNumber:      "1",
			LineItemDescription: "Gaffer",
			EstimateOTRate:      str("$127.50"),
		}
		assert.Contains(t, v.LineItemFindings(item, false), "Has OT rate but missing hours")

		item = &budget.LineItem{
			LineItemNumber:      "1",
			LineItemDescription: "Gaffer",
			EstimateOTHours:     str("2"),
		}
		assert.Contains(t, v.LineItemFindings(item, false), "Has OT hours but missing rate")
	})
}

func TestValidateClass(t *testing.T) {
	v := budget.NewValidator(0, slog.New(slog.DiscardHandler))

	t.Run("clean class reconciles", func(t *testing.T) {
		c := validClassA()
		summary := v.ValidateClass(c, false)

		assert.Equal(t, budget.StatusValid, summary.Status)
		assert.Empty(t, summary.Messages)
		assert.Equal(t, 2, summary.LineCount)
		assert.Equal(t, 0, summary.WarningCount)
		assert.Equal(t, budget.StatusValid, c.LineItems[0].ValidationStatus)
	})

	t.Run("subtotal mismatch", func(t *testing.T) {
		c := validClassA()
		c.Totals.EstimateSubtotal = "$14,000.00"
		summary := v.ValidateClass(c, false)

		assert.Equal(t, budget.StatusWarning, summary.Status)
		assert.Contains(t, summary.Messages,
			"Line items sum to $13,000.00 but subtotal is $14,000.00")
	})

	t.Run("line findings stamp items", func(t *testing.T) {
		c := validClassA()
		c.LineItems[1].EstimateDays = nil
		summary := v.ValidateClass(c, false)

		assert.Equal(t, 1, summary.WarningCount)
		assert.Equal(t, budget.StatusWarning, c.LineItems[1].ValidationStatus)
		assert.Contains(t, c.LineItems[1].ValidationMessages, "Has estimate rate but missing days")
		// Dropping the second line's quantity also breaks reconciliation.
		assert.Contains(t, summary.Messages,
			"Line items sum to $7,000.00 but subtotal is $13,000.00")
	})

	t.Run("summary counts and totals", func(t *testing.T) {
		c := validClassA()
		c.EstimateSubtotal = 13000
		c.EstimatePW = 3120
		c.EstimateTotal = 16120
		c.ActualTotal = 6000
		c.LineItems[1].EstimateDays = nil
		c.LineItems[1].EstimateTotal = nil
		c.LineItems[0].ActualDays = str("5")

		summary := v.ValidateClass(c, false)

		assert.Equal(t, 2, summary.LineCount)
		assert.Equal(t, 2, summary.ItemsWithRates)
		assert.Equal(t, 1, summary.ItemsWithDays)
		assert.Equal(t, 1, summary.ItemsComplete)
		assert.True(t, summary.HasActuals)

		assert.InDelta(t, 13000, summary.EstimateSubtotal, 0.001)
		assert.InDelta(t, 3120, summary.EstimatePW, 0.001)
		assert.InDelta(t, 16120, summary.EstimateTotal, 0.001)
		assert.InDelta(t, 0, summary.ActualSubtotal, 0.001)
		assert.InDelta(t, 6000, summary.ActualTotal, 0.001)
	})

	t.Run("no actuals", func(t *testing.T) {
		summary := v.ValidateClass(validClassA(), false)
		assert.False(t, summary.HasActuals)
	})

	t.Run("missing code or name", func(t *testing.T) {
		c := validClassA()
		c.Name = ""
		summary := v.ValidateClass(c, false)
		assert.Contains(t, summary.Messages, "Missing code or name")
	})

	t.Run("no line items", func(t *testing.T) {
		c := &budget.BudgetClass{Code: "J", Name: "EQUIPMENT"}
		summary := v.ValidateClass(c, false)
		assert.Equal(t, budget.StatusWarning, summary.Status)
		assert.Contains(t, summary.Messages, "No line items found")
	})
}

func TestValidateClassWarnsOnUnparsableSubtotal(t *testing.T) {
	var logs bytes.Buffer
	v := budget.NewValidator(0, slog.New(slog.NewTextHandler(&logs, nil)))

	c := validClassA()
	c.Totals.EstimateSubtotal = "see note"
	summary := v.ValidateClass(c, false)

	// The garbage cell coerces to zero, so reconciliation reports the drift
	// and the fallback itself is logged.
	assert.Equal(t, budget.StatusWarning, summary.Status)
	assert.Contains(t, logs.String(), "unparsable money value")
	assert.Contains(t, logs.String(), "see note")
}

func TestValidateBudget(t *testing.T) {
	v := budget.NewValidator(0, slog.New(slog.DiscardHandler))

	t.Run("empty budget", func(t *testing.T) {
		result := v.ValidateBudget(&budget.Budget{}, nil)
		assert.Equal(t, budget.StatusWarning, result.Status)
		assert.Contains(t, result.Messages, "No budget classes found")
	})

	t.Run("class messages carry prefixes", func(t *testing.T) {
		c := validClassA()
		c.Totals.EstimateSubtotal = "$14,000.00"
		b := &budget.Budget{
			Classes:    map[string]*budget.BudgetClass{"A": c},
			ClassOrder: []string{"A"},
		}
		result := v.ValidateBudget(b, nil)

		assert.Equal(t, budget.StatusWarning, result.Status)
		require.Len(t, result.Classes, 1)
		assert.Contains(t, result.Messages,
			"Class A: Line items sum to $13,000.00 but subtotal is $14,000.00")
	})

	t.Run("clean budget is valid", func(t *testing.T) {
		b := &budget.Budget{
			Classes:    map[string]*budget.BudgetClass{"A": validClassA()},
			ClassOrder: []string{"A"},
		}
		result := v.ValidateBudget(b, nil)
		assert.Equal(t, budget.StatusValid, result.Status)
		assert.Empty(t, result.Messages)
	})

	t.Run("firm bid mismatch", func(t *testing.T) {
		f := func(v float64) *float64 { return &v }
		b := &budget.Budget{
			Classes:    map[string]*budget.BudgetClass{"A": validClassA()},
			ClassOrder: []string{"A"},
			Financials: budget.Financials{
				FirmBid: []budget.FinancialLine{
					{Label: "Pre-production and wrap costs (Total A,C)", Estimated: f(50000)},
					{Label: "Shooting crew labor (Total B)", Estimated: f(30000)},
					{Label: "FIRM BID", Estimated: f(90000)},
				},
			},
		}
		result := v.ValidateBudget(b, nil)
		assert.Contains(t, result.Messages,
			"Firm bid total mismatch: categories sum to $80,000.00 but subtotal is $90,000.00")
	})
}
