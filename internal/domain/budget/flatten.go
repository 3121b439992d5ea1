package budget

import (
	"strings"
	"time"

	"github.com/filmbudget/budget-sync/pkg/money"
)

// CoverRow is the warehouse and audit representation of one processed
// budget's cover sheet. Tags serve both the CSV audit export and the JSON
// audit file.
type CoverRow struct {
	BudgetID          string `csv:"budget_id" json:"budget_id"`
	BudgetName        string `csv:"budget_name" json:"budget_name"`
	Version           string `csv:"version" json:"version"`
	VersionStatus     string `csv:"version_status" json:"version_status"`
	SpreadsheetID     string `csv:"spreadsheet_id" json:"spreadsheet_id"`
	SheetGID          string `csv:"sheet_gid" json:"sheet_gid"`
	SheetTitle        string `csv:"sheet_title" json:"sheet_title"`
	ProjectTitle      string `csv:"project_title" json:"project_title"`
	ProductionCompany string `csv:"production_company" json:"production_company"`
	ContactPhone      string `csv:"contact_phone" json:"contact_phone"`
	Date              string `csv:"date" json:"date"`
	Director          string `csv:"director" json:"director"`
	Producer          string `csv:"producer" json:"producer"`
	Writer            string `csv:"writer" json:"writer"`

	PreProdDays  int `csv:"pre_prod_days" json:"pre_prod_days"`
	BuildDays    int `csv:"build_days" json:"build_days"`
	PreLightDays int `csv:"pre_light_days" json:"pre_light_days"`
	StudioDays   int `csv:"studio_days" json:"studio_days"`
	LocationDays int `csv:"location_days" json:"location_days"`
	WrapDays     int `csv:"wrap_days" json:"wrap_days"`

	FirmBidEstimated    *float64 `csv:"firm_bid_estimated" json:"firm_bid_estimated,omitempty"`
	FirmBidActual       *float64 `csv:"firm_bid_actual" json:"firm_bid_actual,omitempty"`
	GrandTotalEstimated *float64 `csv:"grand_total_estimated" json:"grand_total_estimated,omitempty"`
	GrandTotalActual    *float64 `csv:"grand_total_actual" json:"grand_total_actual,omitempty"`

	ValidationStatus string    `csv:"validation_status" json:"validation_status"`
	ProcessedAt      time.Time `csv:"processed_at" json:"processed_at"`
}

// DetailRow is one flattened line item. Display strings are coerced to
// nullable numerics here, exactly once, so warehouse queries never parse
// currency text.
type DetailRow struct {
	BudgetID            string `csv:"budget_id" json:"budget_id"`
	ClassCode           string `csv:"class_code" json:"class_code"`
	ClassName           string `csv:"class_name" json:"class_name"`
	LineItemNumber      string `csv:"line_item_number" json:"line_item_number"`
	LineItemDescription string `csv:"line_item_description" json:"line_item_description"`

	EstimateNumber  *string  `csv:"estimate_number" json:"estimate_number,omitempty"`
	EstimateDays    *float64 `csv:"estimate_days" json:"estimate_days,omitempty"`
	EstimateHours   *float64 `csv:"estimate_hours" json:"estimate_hours,omitempty"`
	EstimateRate    *float64 `csv:"estimate_rate" json:"estimate_rate,omitempty"`
	EstimateOTRate  *float64 `csv:"estimate_ot_rate" json:"estimate_ot_rate,omitempty"`
	EstimateOTHours *float64 `csv:"estimate_ot_hours" json:"estimate_ot_hours,omitempty"`
	EstimateTotal   *float64 `csv:"estimate_total" json:"estimate_total,omitempty"`
	ActualDays      *float64 `csv:"actual_days" json:"actual_days,omitempty"`
	ActualHours     *float64 `csv:"actual_hours" json:"actual_hours,omitempty"`
	ActualRate      *float64 `csv:"actual_rate" json:"actual_rate,omitempty"`
	ActualTotal     *float64 `csv:"actual_total" json:"actual_total,omitempty"`

	ClassEstimateSubtotal float64  `csv:"class_estimate_subtotal" json:"class_estimate_subtotal"`
	ClassEstimatePW       *float64 `csv:"class_estimate_pnw" json:"class_estimate_pnw,omitempty"`
	ClassEstimateTotal    float64  `csv:"class_estimate_total" json:"class_estimate_total"`
	ClassActualSubtotal   float64  `csv:"class_actual_subtotal" json:"class_actual_subtotal"`
	ClassActualPW         *float64 `csv:"class_actual_pnw" json:"class_actual_pnw,omitempty"`
	ClassActualTotal      float64  `csv:"class_actual_total" json:"class_actual_total"`
	ClassClientTotal      *float64 `csv:"class_client_total" json:"class_client_total,omitempty"`

	ValidationStatus   string `csv:"validation_status" json:"validation_status"`
	ValidationMessages string `csv:"validation_messages" json:"validation_messages"`
}

// ValidationRow is one finding, warehoused for trend reporting.
type ValidationRow struct {
	BudgetID  string `csv:"budget_id" json:"budget_id"`
	ClassCode string `csv:"class_code" json:"class_code"`
	Status    string `csv:"status" json:"status"`
	Message   string `csv:"message" json:"message"`
}

// FlattenCover builds the budgets-table row for this run.
func FlattenCover(b *Budget) CoverRow {
	row := CoverRow{
		BudgetID:          b.UploadID,
		BudgetName:        b.BudgetName,
		Version:           b.Version,
		VersionStatus:     b.VersionStatus,
		SpreadsheetID:     b.SpreadsheetID,
		SheetGID:          b.SheetGID,
		SheetTitle:        b.SheetTitle,
		ProjectTitle:      b.Project.ProjectTitle,
		ProductionCompany: b.Project.ProductionCompany,
		ContactPhone:      b.Project.ContactPhone,
		Date:              b.Project.Date,
		Director:          b.Project.Director,
		Producer:          b.Project.Producer,
		Writer:            b.Project.Writer,
		PreProdDays:       money.IntOrDefault(deref(b.Project.Timeline.PreProdDays), 0),
		BuildDays:         money.IntOrDefault(deref(b.Project.Timeline.BuildDays), 0),
		PreLightDays:      money.IntOrDefault(deref(b.Project.Timeline.PreLightDays), 0),
		StudioDays:        money.IntOrDefault(deref(b.Project.Timeline.StudioDays), 0),
		LocationDays:      money.IntOrDefault(deref(b.Project.Timeline.LocationDays), 0),
		WrapDays:          money.IntOrDefault(deref(b.Project.Timeline.WrapDays), 0),
		ValidationStatus:  b.Validation.Status,
		ProcessedAt:       b.ProcessedAt,
	}

	for _, line := range b.Financials.FirmBid {
		if strings.HasPrefix(line.Label, "FIRM BID") {
			row.FirmBidEstimated = line.Estimated
			row.FirmBidActual = line.Actual
		}
	}
	if b.Financials.GrandTotal != nil {
		row.GrandTotalEstimated = b.Financials.GrandTotal.Estimated
		row.GrandTotalActual = b.Financials.GrandTotal.Actual
	}
	return row
}

// FlattenDetails builds one row per line item, in class order.
func FlattenDetails(b *Budget) []DetailRow {
	var rows []DetailRow
	for _, c := range b.OrderedClasses() {
		for i := range c.LineItems {
			item := &c.LineItems[i]
			rows = append(rows, DetailRow{
				BudgetID:            b.UploadID,
				ClassCode:           c.Code,
				ClassName:           c.Name,
				LineItemNumber:      item.LineItemNumber,
				LineItemDescription: item.LineItemDescription,

				EstimateNumber:  item.EstimateNumber,
				EstimateDays:    coerce(item.EstimateDays),
				EstimateHours:   coerce(item.EstimateHours),
				EstimateRate:    coerce(item.EstimateRate),
				EstimateOTRate:  coerce(item.EstimateOTRate),
				EstimateOTHours: coerce(item.EstimateOTHours),
				EstimateTotal:   coerce(item.EstimateTotal),
				ActualDays:      coerce(item.ActualDays),
				ActualHours:     coerce(item.ActualHours),
				ActualRate:      coerce(item.ActualRate),
				ActualTotal:     coerce(item.ActualTotal),

				ClassEstimateSubtotal: c.EstimateSubtotal,
				ClassEstimatePW:       coerce(c.Totals.EstimatePW),
				ClassEstimateTotal:    c.EstimateTotal,
				ClassActualSubtotal:   c.ActualSubtotal,
				ClassActualPW:         coerce(c.Totals.ActualPW),
				ClassActualTotal:      c.ActualTotal,
				ClassClientTotal:      coerce(c.Totals.ClientTotal),

				ValidationStatus:   item.ValidationStatus,
				ValidationMessages: strings.Join(item.ValidationMessages, "; "),
			})
		}
	}
	return rows
}

// FlattenValidations builds the findings rows, one per message.
func FlattenValidations(b *Budget) []ValidationRow {
	var rows []ValidationRow
	for _, summary := range b.Validation.Classes {
		for _, msg := range summary.Messages {
			rows = append(rows, ValidationRow{
				BudgetID:  b.UploadID,
				ClassCode: summary.ClassCode,
				Status:    summary.Status,
				Message:   msg,
			})
		}
	}
	return rows
}

func coerce(s *string) *float64 {
	if s == nil {
		return nil
	}
	return money.FloatOrNull(*s)
}
