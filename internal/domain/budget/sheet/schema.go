// Package sheet maps the fixed AICP budget layout onto cell addresses and
// extracts the structured budget model from raw sheet values.
package sheet

import "github.com/filmbudget/budget-sync/pkg/sheets"

// Field names one value column of a line item. Each class lists its fields
// in left-to-right sheet order; positions 0 and 1 of every row are always
// the line number and description.
type Field string

const (
	FieldNumber  Field = "number"
	FieldDays    Field = "days"
	FieldHours   Field = "hours"
	FieldRate    Field = "rate"
	FieldOTRate  Field = "ot_rate"
	FieldOTHours Field = "ot_hours"
	FieldTotal   Field = "total"
)

// ClassSchema fixes where one budget class lives on the sheet and what its
// value columns mean. Classes without a P&W row leave the PW cells nil and
// reuse the subtotal cell as the total.
type ClassSchema struct {
	Code     string
	CodeCell sheets.CellAddress
	NameCell sheets.CellAddress
	Items    sheets.Range

	// Ordered value columns following the line number and description.
	EstimateFields []Field
	ActualFields   []Field

	EstimateSubtotal sheets.CellAddress
	ActualSubtotal   sheets.CellAddress
	EstimatePW       *sheets.CellAddress
	ActualPW         *sheets.CellAddress
	EstimateTotal    sheets.CellAddress
	ActualTotal      sheets.CellAddress
	ClientTotal      *sheets.CellAddress

	// Talent expense rates may be percentages, in which case a missing
	// days value is not a finding.
	PercentRateTolerated bool
}

// HasPW reports whether the class carries a payroll and wrap row.
func (s ClassSchema) HasPW() bool {
	return s.EstimatePW != nil
}

// ClassOrder is the left-to-right order of classes on the AICP sheet.
var ClassOrder = []string{
	"A", "B", "C", "D", "E", "F", "G", "H",
	"I", "J", "K", "L", "M", "M2", "N", "O", "P",
}

func addrPtr(label string) *sheets.CellAddress {
	a := sheets.MustAddr(label)
	return &a
}

// ClassSchemas is the authoritative layout table for the 2024 AICP budget
// template. Ranges and summary cells were lifted from the template grid and
// must change together with it.
var ClassSchemas = map[string]ClassSchema{
	"A": {
		Code:             "A",
		CodeCell:         sheets.MustAddr("L1"),
		NameCell:         sheets.MustAddr("M1"),
		Items:            sheets.MustRange("L4", "S52"),
		EstimateFields:   []Field{FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldDays, FieldRate, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("P53"),
		ActualSubtotal:   sheets.MustAddr("S53"),
		EstimatePW:       addrPtr("P54"),
		ActualPW:         addrPtr("S54"),
		EstimateTotal:    sheets.MustAddr("P55"),
		ActualTotal:      sheets.MustAddr("S55"),
	},
	"B": {
		Code:             "B",
		CodeCell:         sheets.MustAddr("T1"),
		NameCell:         sheets.MustAddr("U1"),
		Items:            sheets.MustRange("T4", "AC52"),
		EstimateFields:   []Field{FieldDays, FieldRate, FieldOTRate, FieldOTHours, FieldTotal},
		ActualFields:     []Field{FieldDays, FieldRate, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("Z53"),
		ActualSubtotal:   sheets.MustAddr("AC53"),
		EstimatePW:       addrPtr("Z54"),
		ActualPW:         addrPtr("AC54"),
		EstimateTotal:    sheets.MustAddr("Z55"),
		ActualTotal:      sheets.MustAddr("AC55"),
	},
	"C": {
		Code:             "C",
		CodeCell:         sheets.MustAddr("AD1"),
		NameCell:         sheets.MustAddr("AD1"),
		Items:            sheets.MustRange("AD3", "AJ15"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AI16"),
		ActualSubtotal:   sheets.MustAddr("AJ16"),
		EstimateTotal:    sheets.MustAddr("AI16"),
		ActualTotal:      sheets.MustAddr("AJ16"),
	},
	"D": {
		Code:             "D",
		CodeCell:         sheets.MustAddr("AD18"),
		NameCell:         sheets.MustAddr("AD18"),
		Items:            sheets.MustRange("AD20", "AJ44"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AI45"),
		ActualSubtotal:   sheets.MustAddr("AJ45"),
		EstimateTotal:    sheets.MustAddr("AI45"),
		ActualTotal:      sheets.MustAddr("AJ45"),
	},
	"E": {
		Code:             "E",
		CodeCell:         sheets.MustAddr("AD47"),
		NameCell:         sheets.MustAddr("AD47"),
		Items:            sheets.MustRange("AD49", "AJ59"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AI60"),
		ActualSubtotal:   sheets.MustAddr("AJ60"),
		EstimateTotal:    sheets.MustAddr("AI60"),
		ActualTotal:      sheets.MustAddr("AJ60"),
	},
	"F": {
		Code:             "F",
		CodeCell:         sheets.MustAddr("AK1"),
		NameCell:         sheets.MustAddr("AL1"),
		Items:            sheets.MustRange("AK19", "AR19"),
		EstimateFields:   []Field{FieldNumber, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AO20"),
		ActualSubtotal:   sheets.MustAddr("AR20"),
		EstimateTotal:    sheets.MustAddr("AO20"),
		ActualTotal:      sheets.MustAddr("AR20"),
	},
	"G": {
		Code:             "G",
		CodeCell:         sheets.MustAddr("AK22"),
		NameCell:         sheets.MustAddr("AL22"),
		Items:            sheets.MustRange("AK24", "AR35"),
		EstimateFields:   []Field{FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AO36"),
		ActualSubtotal:   sheets.MustAddr("AR36"),
		EstimatePW:       addrPtr("AO37"),
		ActualPW:         addrPtr("AR37"),
		EstimateTotal:    sheets.MustAddr("AO38"),
		ActualTotal:      sheets.MustAddr("AR38"),
	},
	"H": {
		Code:             "H",
		CodeCell:         sheets.MustAddr("AK40"),
		NameCell:         sheets.MustAddr("AL40"),
		Items:            sheets.MustRange("AK42", "AR53"),
		EstimateFields:   []Field{FieldNumber, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AO54"),
		ActualSubtotal:   sheets.MustAddr("AR54"),
		EstimateTotal:    sheets.MustAddr("AO54"),
		ActualTotal:      sheets.MustAddr("AR54"),
	},
	"I": {
		Code:             "I",
		CodeCell:         sheets.MustAddr("AS1"),
		NameCell:         sheets.MustAddr("AT1"),
		Items:            sheets.MustRange("AS3", "AZ20"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AX21"),
		ActualSubtotal:   sheets.MustAddr("AZ21"),
		EstimateTotal:    sheets.MustAddr("AX21"),
		ActualTotal:      sheets.MustAddr("AZ21"),
	},
	"J": {
		Code:             "J",
		CodeCell:         sheets.MustAddr("AS23"),
		NameCell:         sheets.MustAddr("AT23"),
		Items:            sheets.MustRange("AS25", "AZ30"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AX31"),
		ActualSubtotal:   sheets.MustAddr("AZ31"),
		EstimateTotal:    sheets.MustAddr("AX31"),
		ActualTotal:      sheets.MustAddr("AZ31"),
	},
	"K": {
		Code:             "K",
		CodeCell:         sheets.MustAddr("AS33"),
		NameCell:         sheets.MustAddr("AT33"),
		Items:            sheets.MustRange("AS35", "BA46"),
		EstimateFields:   []Field{FieldHours, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldHours, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AX47"),
		ActualSubtotal:   sheets.MustAddr("AZ47"),
		EstimateTotal:    sheets.MustAddr("AX47"),
		ActualTotal:      sheets.MustAddr("AZ47"),
		ClientTotal:      addrPtr("BA47"),
	},
	"L": {
		Code:             "L",
		CodeCell:         sheets.MustAddr("AS49"),
		NameCell:         sheets.MustAddr("AT49"),
		Items:            sheets.MustRange("AS51", "BA55"),
		EstimateFields:   []Field{FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldHours, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("AX56"),
		ActualSubtotal:   sheets.MustAddr("AZ56"),
		EstimateTotal:    sheets.MustAddr("AX56"),
		ActualTotal:      sheets.MustAddr("AZ56"),
		ClientTotal:      addrPtr("BA56"),
	},
	"M": {
		Code:             "M",
		CodeCell:         sheets.MustAddr("BB1"),
		NameCell:         sheets.MustAddr("BB1"),
		Items:            sheets.MustRange("BB3", "BH33"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("BG34"),
		ActualSubtotal:   sheets.MustAddr("BH34"),
		EstimatePW:       addrPtr("BG35"),
		ActualPW:         addrPtr("BH35"),
		EstimateTotal:    sheets.MustAddr("BG36"),
		ActualTotal:      sheets.MustAddr("BH36"),
	},
	"M2": {
		Code:                 "M2",
		CodeCell:             sheets.MustAddr("BB38"),
		NameCell:             sheets.MustAddr("BB38"),
		Items:                sheets.MustRange("BB40", "BH44"),
		EstimateFields:       []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:         []Field{FieldTotal},
		EstimateSubtotal:     sheets.MustAddr("BG45"),
		ActualSubtotal:       sheets.MustAddr("BH45"),
		EstimateTotal:        sheets.MustAddr("BG45"),
		ActualTotal:          sheets.MustAddr("BH45"),
		PercentRateTolerated: true,
	},
	"N": {
		Code:             "N",
		CodeCell:         sheets.MustAddr("BB47"),
		NameCell:         sheets.MustAddr("BB47"),
		Items:            sheets.MustRange("BB49", "BH54"),
		EstimateFields:   []Field{FieldNumber, FieldDays, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldTotal},
		EstimateSubtotal: sheets.MustAddr("BG55"),
		ActualSubtotal:   sheets.MustAddr("BH55"),
		EstimateTotal:    sheets.MustAddr("BG55"),
		ActualTotal:      sheets.MustAddr("BH55"),
	},
	"O": {
		Code:             "O",
		CodeCell:         sheets.MustAddr("BI1"),
		NameCell:         sheets.MustAddr("BI1"),
		Items:            sheets.MustRange("BI3", "BP37"),
		EstimateFields:   []Field{FieldHours, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldHours, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("BM38"),
		ActualSubtotal:   sheets.MustAddr("BO38"),
		EstimateTotal:    sheets.MustAddr("BM38"),
		ActualTotal:      sheets.MustAddr("BO38"),
		ClientTotal:      addrPtr("BP38"),
	},
	"P": {
		Code:             "P",
		CodeCell:         sheets.MustAddr("BI40"),
		NameCell:         sheets.MustAddr("BI40"),
		Items:            sheets.MustRange("BI42", "BO51"),
		EstimateFields:   []Field{FieldHours, FieldRate, FieldTotal},
		ActualFields:     []Field{FieldHours, FieldTotal},
		EstimateSubtotal: sheets.MustAddr("BM52"),
		ActualSubtotal:   sheets.MustAddr("BO52"),
		EstimateTotal:    sheets.MustAddr("BM52"),
		ActualTotal:      sheets.MustAddr("BO52"),
	},
}
