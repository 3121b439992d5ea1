package budget

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/filmbudget/budget-sync/pkg/money"
)

// Validation statuses. Findings never block processing; a budget with
// findings is delivered as "warning" so producers can fix the sheet.
const (
	StatusValid   = "valid"
	StatusWarning = "warning"
)

// DefaultTolerance is the allowed drift between summed line items and the
// stated subtotal before a mismatch is reported.
const DefaultTolerance = 0.01

// Validator applies the line item and roll-up consistency checks.
type Validator struct {
	// Tolerance for subtotal reconciliation, in dollars.
	Tolerance float64

	logger *slog.Logger
}

func NewValidator(tolerance float64, logger *slog.Logger) *Validator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{Tolerance: tolerance, logger: logger}
}

// moneyOrZero coerces a stated cell to a float, warning when a non-blank
// value fails to parse and falls back to zero.
func (v *Validator) moneyOrZero(classCode, raw string) float64 {
	f, err := money.Parse(raw)
	if err != nil {
		v.logger.Warn("unparsable money value, using zero",
			slog.String("class", classCode), slog.String("value", raw))
		return 0
	}
	return f
}

// LineItemFindings lists everything wrong with one line item.
// percentRateOK suppresses the missing-days finding when the rate is a
// percentage, which talent expense classes use for markups.
func (v *Validator) LineItemFindings(item *LineItem, percentRateOK bool) []string {
	var findings []string

	if strings.TrimSpace(item.LineItemNumber) == "" {
		findings = append(findings, "Missing required field: line_number")
	}
	if strings.TrimSpace(item.LineItemDescription) == "" {
		findings = append(findings, "Missing required field: description")
	}

	if has(item.EstimateRate) && !has(item.EstimateDays) {
		if !(percentRateOK && strings.HasSuffix(strings.TrimSpace(*item.EstimateRate), "%")) {
			findings = append(findings, "Has estimate rate but missing days")
		}
	}
	if has(item.ActualRate) && !has(item.ActualDays) {
		findings = append(findings, "Has actual rate but missing days")
	}
	if has(item.EstimateOTRate) && !has(item.EstimateOTHours) {
		findings = append(findings, "Has OT rate but missing hours")
	}
	if has(item.EstimateOTHours) && !has(item.EstimateOTRate) {
		findings = append(findings, "Has OT hours but missing rate")
	}

	return findings
}

// ValidateClass checks one class and stamps each line item with its status
// and findings.
func (v *Validator) ValidateClass(c *BudgetClass, percentRateOK bool) ClassValidationSummary {
	summary := ClassValidationSummary{
		ClassCode: c.Code,
		Status:    StatusValid,

		EstimateSubtotal: c.EstimateSubtotal,
		EstimatePW:       c.EstimatePW,
		EstimateTotal:    c.EstimateTotal,
		ActualSubtotal:   c.ActualSubtotal,
		ActualPW:         c.ActualPW,
		ActualTotal:      c.ActualTotal,
	}

	if strings.TrimSpace(c.Code) == "" || strings.TrimSpace(c.Name) == "" {
		summary.Messages = append(summary.Messages, "Missing code or name")
	}
	if len(c.LineItems) == 0 {
		summary.Messages = append(summary.Messages, "No line items found")
	}

	for i := range c.LineItems {
		item := &c.LineItems[i]
		if has(item.EstimateRate) {
			summary.ItemsWithRates++
		}
		if has(item.EstimateDays) {
			summary.ItemsWithDays++
		}
		if v.moneyOrZero(c.Code, deref(item.EstimateTotal)) > 0 {
			summary.ItemsComplete++
		}
		if has(item.ActualDays) || has(item.ActualRate) {
			summary.HasActuals = true
		}

		findings := v.LineItemFindings(item, percentRateOK)
		item.ValidationMessages = findings
		if len(findings) == 0 {
			item.ValidationStatus = StatusValid
			continue
		}
		item.ValidationStatus = StatusWarning
		summary.WarningCount++
		summary.Messages = append(summary.Messages, findings...)
	}
	summary.LineCount = len(c.LineItems)

	if msg := v.reconcileEstimates(c); msg != "" {
		summary.Messages = append(summary.Messages, msg)
	}

	if len(summary.Messages) > 0 {
		summary.Status = StatusWarning
	}
	return summary
}

// reconcileEstimates recomputes the estimate subtotal from quantity times
// rate and compares it to the stated subtotal cell. Classes where no line
// carries a computable pair are skipped; actuals are filled in over the
// production's life and are never reconciled.
func (v *Validator) reconcileEstimates(c *BudgetClass) string {
	var sum float64
	computable := false
	for i := range c.LineItems {
		item := &c.LineItems[i]
		qty := money.FloatOrNull(deref(item.EstimateDays))
		if qty == nil {
			qty = money.FloatOrNull(deref(item.EstimateHours))
		}
		rate := money.FloatOrNull(deref(item.EstimateRate))
		if qty != nil && rate != nil {
			computable = true
			sum += *qty * *rate
		}
		otRate := money.FloatOrNull(deref(item.EstimateOTRate))
		otHours := money.FloatOrNull(deref(item.EstimateOTHours))
		if otRate != nil && otHours != nil {
			computable = true
			sum += *otRate * *otHours
		}
	}
	if !computable {
		return ""
	}

	stated := v.moneyOrZero(c.Code, c.Totals.EstimateSubtotal)
	if math.Abs(sum-stated) <= v.Tolerance {
		return ""
	}
	return fmt.Sprintf("Line items sum to %s but subtotal is %s",
		money.Format(sum), money.Format(stated))
}

// ValidateBudget runs every class check and the firm bid reconciliation,
// rolling findings up with a "Class X: " prefix so a producer can locate
// them on the sheet.
func (v *Validator) ValidateBudget(b *Budget, percentRateOK func(classCode string) bool) ValidationResult {
	result := ValidationResult{Status: StatusValid}

	if len(b.Classes) == 0 {
		result.Messages = append(result.Messages, "No budget classes found")
	}

	for _, c := range b.OrderedClasses() {
		summary := v.ValidateClass(c, percentRateOK != nil && percentRateOK(c.Code))
		result.Classes = append(result.Classes, summary)
		for _, msg := range summary.Messages {
			result.Messages = append(result.Messages, fmt.Sprintf("Class %s: %s", c.Code, msg))
		}
	}

	if msg := v.reconcileFirmBid(b.Financials); msg != "" {
		result.Messages = append(result.Messages, msg)
	}

	if len(result.Messages) > 0 {
		result.Status = StatusWarning
	}
	return result
}

// reconcileFirmBid compares the cover sheet's firm bid category rows
// against its stated FIRM BID subtotal row.
func (v *Validator) reconcileFirmBid(fin Financials) string {
	var sum, stated float64
	seen := false
	for _, line := range fin.FirmBid {
		if strings.HasPrefix(line.Label, "FIRM BID") {
			if line.Estimated != nil {
				stated = *line.Estimated
			}
			continue
		}
		if line.Estimated != nil {
			seen = true
			sum += *line.Estimated
		}
	}
	if !seen || math.Abs(sum-stated) <= v.Tolerance {
		return ""
	}
	return fmt.Sprintf("Firm bid total mismatch: categories sum to %s but subtotal is %s",
		money.Format(sum), money.Format(stated))
}

func has(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
