package sheet

import (
	"strings"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
	"github.com/filmbudget/budget-sync/pkg/money"
	"github.com/filmbudget/budget-sync/pkg/sheets"
)

// MapRow turns one raw sheet row into a line item using the class's ordered
// field layout. Position 0 is the line number and position 1 the
// description; value columns follow in schema order. Rows missing either
// identifier map to nil and are skipped by the caller.
func MapRow(schema ClassSchema, row []sheets.Value) *budget.LineItem {
	number := strings.TrimSpace(cellAt(row, 0).String())
	description := strings.TrimSpace(cellAt(row, 1).String())
	if number == "" || description == "" {
		return nil
	}

	item := &budget.LineItem{
		LineItemNumber:      number,
		LineItemDescription: description,
	}

	pos := 2
	for _, f := range schema.EstimateFields {
		assignEstimate(item, f, cellAt(row, pos))
		pos++
	}
	for _, f := range schema.ActualFields {
		assignActual(item, f, cellAt(row, pos))
		pos++
	}
	return item
}

func cellAt(row []sheets.Value, i int) sheets.Value {
	if i < len(row) {
		return row[i]
	}
	return sheets.Value{}
}

func cellPtr(v sheets.Value) *string {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return nil
	}
	return &s
}

// totalPtr normalizes total columns to the "$..." display convention so
// downstream consumers see a consistent money format.
func totalPtr(v sheets.Value) *string {
	s := money.EnsureDollar(v.String())
	if s == "" {
		return nil
	}
	return &s
}

func assignEstimate(item *budget.LineItem, f Field, v sheets.Value) {
	switch f {
	case FieldNumber:
		item.EstimateNumber = cellPtr(v)
	case FieldDays:
		item.EstimateDays = cellPtr(v)
	case FieldHours:
		item.EstimateHours = cellPtr(v)
	case FieldRate:
		item.EstimateRate = cellPtr(v)
	case FieldOTRate:
		item.EstimateOTRate = cellPtr(v)
	case FieldOTHours:
		item.EstimateOTHours = cellPtr(v)
	case FieldTotal:
		item.EstimateTotal = totalPtr(v)
	}
}

func assignActual(item *budget.LineItem, f Field, v sheets.Value) {
	switch f {
	case FieldDays:
		item.ActualDays = cellPtr(v)
	case FieldHours:
		item.ActualHours = cellPtr(v)
	case FieldRate:
		item.ActualRate = cellPtr(v)
	case FieldTotal:
		item.ActualTotal = totalPtr(v)
	}
}
