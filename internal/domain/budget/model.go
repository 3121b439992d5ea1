// Package budget defines the structured model extracted from an AICP film
// budget spreadsheet, along with its validation rules.
package budget

import "time"

// LineItem is one numbered row inside a budget class. Cell values stay as
// the sheet displayed them (strings, nil when the cell was empty) so the
// audit trail matches the source exactly; numeric coercion happens when the
// budget is flattened for the warehouse.
type LineItem struct {
	LineItemNumber      string  `json:"line_item_number"`
	LineItemDescription string  `json:"line_item_description"`
	EstimateNumber      *string `json:"estimate_number,omitempty"`
	EstimateDays        *string `json:"estimate_days,omitempty"`
	EstimateHours       *string `json:"estimate_hours,omitempty"`
	EstimateRate        *string `json:"estimate_rate,omitempty"`
	EstimateOTRate      *string `json:"estimate_ot_rate,omitempty"`
	EstimateOTHours     *string `json:"estimate_ot_hours,omitempty"`
	EstimateTotal       *string `json:"estimate_total,omitempty"`
	ActualDays          *string `json:"actual_days,omitempty"`
	ActualHours         *string `json:"actual_hours,omitempty"`
	ActualRate          *string `json:"actual_rate,omitempty"`
	ActualTotal         *string `json:"actual_total,omitempty"`

	// Class rollups are denormalized onto every line so each warehouse row
	// carries its class context.
	ClassTotalSubtotal  string  `json:"class_total_subtotal"`
	ClassTotalPW        *string `json:"class_total_pnw,omitempty"`
	ClassTotalTotal     string  `json:"class_total_total"`
	ClassActualSubtotal string  `json:"class_actual_subtotal"`
	ClassActualPW       *string `json:"class_actual_pnw,omitempty"`
	ClassActualTotal    string  `json:"class_actual_total"`
	ClassClientTotal    *string `json:"class_client_total,omitempty"`

	ValidationStatus   string   `json:"validation_status"`
	ValidationMessages []string `json:"validation_messages,omitempty"`
}

// ClassTotals carries the stated summary cells of one class, as displayed.
type ClassTotals struct {
	EstimateSubtotal string  `json:"estimate_subtotal"`
	EstimatePW       *string `json:"estimate_pnw,omitempty"`
	EstimateTotal    string  `json:"estimate_total"`
	ActualSubtotal   string  `json:"actual_subtotal"`
	ActualPW         *string `json:"actual_pnw,omitempty"`
	ActualTotal      string  `json:"actual_total"`
	ClientTotal      *string `json:"client_total,omitempty"`
}

// BudgetClass is one lettered section of the budget (A through P).
type BudgetClass struct {
	Code string `json:"class_code"`
	Name string `json:"class_name"`

	EstimateSubtotal float64 `json:"estimate_subtotal"`
	EstimatePW       float64 `json:"estimate_pnw"`
	EstimateTotal    float64 `json:"estimate_total"`
	ActualSubtotal   float64 `json:"actual_subtotal"`
	ActualPW         float64 `json:"actual_pnw"`
	ActualTotal      float64 `json:"actual_total"`

	Totals    ClassTotals `json:"totals"`
	LineItems []LineItem  `json:"line_items"`
}

// FinancialLine is one summary row from the cover sheet's firm bid or
// cost-plus section.
type FinancialLine struct {
	Label          string   `json:"label"`
	Estimated      *float64 `json:"estimated,omitempty"`
	Actual         *float64 `json:"actual,omitempty"`
	Variance       *float64 `json:"variance,omitempty"`
	ClientActual   *float64 `json:"client_actual,omitempty"`
	ClientVariance *float64 `json:"client_variance,omitempty"`
}

// Financials holds the cover sheet's firm bid, cost plus, and grand total
// rollups in sheet order.
type Financials struct {
	FirmBid    []FinancialLine `json:"firm_bid"`
	CostPlus   []FinancialLine `json:"cost_plus"`
	GrandTotal *FinancialLine  `json:"grand_total,omitempty"`
}

// Timeline captures the production schedule cells on the cover sheet.
type Timeline struct {
	PreProdDays  *string `json:"pre_prod_days,omitempty"`
	BuildDays    *string `json:"build_days,omitempty"`
	PreLightDays *string `json:"pre_light_days,omitempty"`
	StudioDays   *string `json:"studio_shoot_days,omitempty"`
	LocationDays *string `json:"location_days,omitempty"`
	WrapDays     *string `json:"wrap_days,omitempty"`
}

// ProjectSummary is the cover sheet header: who, what, and when.
type ProjectSummary struct {
	ProjectTitle      string   `json:"project_title"`
	ProductionCompany string   `json:"production_company"`
	ContactPhone      string   `json:"contact_phone"`
	Date              string   `json:"date"`
	Director          string   `json:"director"`
	Producer          string   `json:"producer"`
	Writer            string   `json:"writer"`
	Timeline          Timeline `json:"timeline"`
}

// ClassValidationSummary aggregates validation findings for one class,
// with the completeness counts and totals an auditor reads first.
type ClassValidationSummary struct {
	ClassCode    string `json:"class_code"`
	Status       string `json:"status"`
	LineCount    int    `json:"line_count"`
	WarningCount int    `json:"warning_count"`

	ItemsWithRates int  `json:"items_with_rates"`
	ItemsWithDays  int  `json:"items_with_days"`
	ItemsComplete  int  `json:"items_complete"`
	HasActuals     bool `json:"has_actuals"`

	EstimateSubtotal float64 `json:"estimate_subtotal"`
	EstimatePW       float64 `json:"estimate_pnw"`
	EstimateTotal    float64 `json:"estimate_total"`
	ActualSubtotal   float64 `json:"actual_subtotal"`
	ActualPW         float64 `json:"actual_pnw"`
	ActualTotal      float64 `json:"actual_total"`

	Messages []string `json:"messages,omitempty"`
}

// ValidationResult is the budget-wide roll-up of all findings.
type ValidationResult struct {
	Status   string                   `json:"status"`
	Messages []string                 `json:"messages,omitempty"`
	Classes  []ClassValidationSummary `json:"classes,omitempty"`
}

// Budget is the fully assembled output of one processing run.
type Budget struct {
	UploadID      string    `json:"upload_id"`
	BudgetName    string    `json:"budget_name"`
	Version       string    `json:"version"`
	VersionStatus string    `json:"version_status"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	SheetGID      string    `json:"sheet_gid"`
	SheetTitle    string    `json:"sheet_title"`
	ProcessedAt   time.Time `json:"processed_at"`

	Project    ProjectSummary `json:"project"`
	Financials Financials     `json:"financials"`

	// Classes is keyed by class code; ClassOrder preserves the AICP sheet
	// ordering for iteration.
	Classes    map[string]*BudgetClass `json:"classes"`
	ClassOrder []string                `json:"class_order"`

	Validation ValidationResult `json:"validation"`
}

// OrderedClasses returns the extracted classes in sheet order.
func (b *Budget) OrderedClasses() []*BudgetClass {
	out := make([]*BudgetClass, 0, len(b.ClassOrder))
	for _, code := range b.ClassOrder {
		if c, ok := b.Classes[code]; ok {
			out = append(out, c)
		}
	}
	return out
}
