package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
	"github.com/filmbudget/budget-sync/pkg/money"
	"github.com/filmbudget/budget-sync/pkg/sheets"
)

// coverGrid covers every cover sheet cell the schema references.
var coverGrid = sheets.MustRange("A1", "K47")

// Fetcher is the read surface the extractor needs; the sheets Coordinator
// satisfies it.
type Fetcher interface {
	FetchRanges(ctx context.Context, spreadsheetID string, ranges []string) (map[string][][]sheets.Value, error)
}

// Extractor pulls structured budget data out of one sheet tab using the
// fixed layout tables.
type Extractor struct {
	fetch  Fetcher
	logger *slog.Logger
}

func NewExtractor(fetch Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{fetch: fetch, logger: logger}
}

// ExtractClass reads one class section. A class whose header cells are
// blank, or that has no populated line items, is absent from this budget
// and extracts to nil without error.
func (e *Extractor) ExtractClass(ctx context.Context, spreadsheetID, sheetTitle string, schema ClassSchema) (*budget.BudgetClass, error) {
	ranges := classRanges(sheetTitle, schema)
	values, err := e.fetch.FetchRanges(ctx, spreadsheetID, ranges)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class %s: %w", schema.Code, err)
	}

	codeText := singleCell(values[schema.CodeCell.Ref(sheetTitle)])
	nameText := singleCell(values[schema.NameCell.Ref(sheetTitle)])
	if codeText == "" && nameText == "" {
		e.logger.Debug("class header blank, skipping", slog.String("class", schema.Code))
		return nil, nil
	}

	name := resolveClassName(schema, codeText, nameText)
	if name == "" {
		e.logger.Warn("no class name found", slog.String("class", schema.Code))
		return nil, nil
	}

	totals := extractTotals(sheetTitle, schema, values)

	var items []budget.LineItem
	for _, row := range values[schema.Items.Ref(sheetTitle)] {
		if len(row) < 2 {
			continue
		}
		item := MapRow(schema, row)
		if item == nil {
			continue
		}
		denormalizeTotals(item, totals)
		items = append(items, *item)
	}
	if len(items) == 0 {
		e.logger.Debug("class has no line items", slog.String("class", schema.Code))
		return nil, nil
	}

	rollup := func(raw string) float64 {
		f, err := money.Parse(raw)
		if err != nil {
			e.logger.Warn("unparsable money value, using zero",
				slog.String("class", schema.Code), slog.String("value", raw))
			return 0
		}
		return f
	}

	return &budget.BudgetClass{
		Code:             schema.Code,
		Name:             name,
		EstimateSubtotal: rollup(totals.EstimateSubtotal),
		EstimatePW:       rollup(deref(totals.EstimatePW)),
		EstimateTotal:    rollup(totals.EstimateTotal),
		ActualSubtotal:   rollup(totals.ActualSubtotal),
		ActualPW:         rollup(deref(totals.ActualPW)),
		ActualTotal:      rollup(totals.ActualTotal),
		Totals:           totals,
		LineItems:        items,
	}, nil
}

// classRanges lists every cell range one class needs, so the whole section
// comes back in a single batched read.
func classRanges(sheetTitle string, schema ClassSchema) []string {
	ranges := []string{
		schema.CodeCell.Ref(sheetTitle),
		schema.NameCell.Ref(sheetTitle),
		schema.Items.Ref(sheetTitle),
		schema.EstimateSubtotal.Ref(sheetTitle),
		schema.ActualSubtotal.Ref(sheetTitle),
		schema.EstimateTotal.Ref(sheetTitle),
		schema.ActualTotal.Ref(sheetTitle),
	}
	if schema.HasPW() {
		ranges = append(ranges, schema.EstimatePW.Ref(sheetTitle), schema.ActualPW.Ref(sheetTitle))
	}
	if schema.ClientTotal != nil {
		ranges = append(ranges, schema.ClientTotal.Ref(sheetTitle))
	}
	return ranges
}

// resolveClassName prefers the dedicated name cell, then a combined
// "X: NAME" header, then whatever the code cell holds.
func resolveClassName(schema ClassSchema, codeText, nameText string) string {
	combined := codeText
	if schema.NameCell != schema.CodeCell && nameText != "" {
		combined = nameText
	}
	if after, ok := strings.CutPrefix(combined, schema.Code+":"); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(combined)
}

func extractTotals(sheetTitle string, schema ClassSchema, values map[string][][]sheets.Value) budget.ClassTotals {
	cell := func(a sheets.CellAddress) string {
		v := money.EnsureDollar(singleCell(values[a.Ref(sheetTitle)]))
		if v == "" {
			return "$0.00"
		}
		return v
	}

	totals := budget.ClassTotals{
		EstimateSubtotal: cell(schema.EstimateSubtotal),
		ActualSubtotal:   cell(schema.ActualSubtotal),
		EstimateTotal:    cell(schema.EstimateTotal),
		ActualTotal:      cell(schema.ActualTotal),
	}
	if schema.HasPW() {
		est, act := cell(*schema.EstimatePW), cell(*schema.ActualPW)
		totals.EstimatePW, totals.ActualPW = &est, &act
	}
	if schema.ClientTotal != nil {
		if v := money.EnsureDollar(singleCell(values[schema.ClientTotal.Ref(sheetTitle)])); v != "" {
			totals.ClientTotal = &v
		}
	}
	return totals
}

func denormalizeTotals(item *budget.LineItem, totals budget.ClassTotals) {
	item.ClassTotalSubtotal = totals.EstimateSubtotal
	item.ClassTotalPW = totals.EstimatePW
	item.ClassTotalTotal = totals.EstimateTotal
	item.ClassActualSubtotal = totals.ActualSubtotal
	item.ClassActualPW = totals.ActualPW
	item.ClassActualTotal = totals.ActualTotal
	item.ClassClientTotal = totals.ClientTotal
}

// ExtractCoverSheet reads the project header and the financial summary from
// the cover sheet in one grid fetch.
func (e *Extractor) ExtractCoverSheet(ctx context.Context, spreadsheetID, sheetTitle string) (budget.ProjectSummary, budget.Financials, error) {
	ref := coverGrid.Ref(sheetTitle)
	values, err := e.fetch.FetchRanges(ctx, spreadsheetID, []string{ref})
	if err != nil {
		return budget.ProjectSummary{}, budget.Financials{}, fmt.Errorf("failed to fetch cover sheet: %w", err)
	}
	grid := values[ref]

	cell := func(a sheets.CellAddress) string {
		if a.Row >= len(grid) || a.Col >= len(grid[a.Row]) {
			return ""
		}
		return strings.TrimSpace(grid[a.Row][a.Col].String())
	}
	timelineCell := func(a sheets.CellAddress) *string {
		v := cell(a)
		if v == "" {
			v = "0"
		}
		return &v
	}

	project := budget.ProjectSummary{
		ProjectTitle:      cell(Cover.ProjectTitle),
		ProductionCompany: cell(Cover.ProductionCompany),
		ContactPhone:      cell(Cover.ContactPhone),
		Date:              cell(Cover.Date),
		Director:          cell(Cover.Director),
		Producer:          cell(Cover.Producer),
		Writer:            cell(Cover.Writer),
		Timeline: budget.Timeline{
			PreProdDays:  timelineCell(Cover.TimelinePreProd),
			BuildDays:    timelineCell(Cover.TimelineBuild),
			PreLightDays: timelineCell(Cover.TimelinePreLight),
			StudioDays:   timelineCell(Cover.TimelineStudio),
			LocationDays: timelineCell(Cover.TimelineLocation),
			WrapDays:     timelineCell(Cover.TimelineWrap),
		},
	}

	summaryLine := func(row SummaryRow) budget.FinancialLine {
		at := func(col int) *float64 {
			return money.FloatOrNull(cell(sheets.CellAddress{Col: col, Row: row.Row - 1}))
		}
		label := row.Label
		if row.Categories != "" {
			label = fmt.Sprintf("%s (%s)", row.Label, row.Categories)
		}
		return budget.FinancialLine{
			Label:          label,
			Estimated:      at(colEstimated),
			Actual:         at(colActual),
			Variance:       at(colVariance),
			ClientActual:   at(colClientActual),
			ClientVariance: at(colClientVariance),
		}
	}

	fin := budget.Financials{}
	for _, row := range Cover.FirmBid {
		fin.FirmBid = append(fin.FirmBid, summaryLine(row))
	}
	for _, row := range Cover.CostPlus {
		fin.CostPlus = append(fin.CostPlus, summaryLine(row))
	}
	grand := summaryLine(Cover.GrandTotal)
	fin.GrandTotal = &grand

	return project, fin, nil
}

func singleCell(rows [][]sheets.Value) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	return strings.TrimSpace(rows[0][0].String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
