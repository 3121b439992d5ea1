package sheet

import "github.com/filmbudget/budget-sync/pkg/sheets"

// SummaryRow is one financial roll-up row on the cover sheet. Values are
// read from the fixed summary columns at the given sheet row.
type SummaryRow struct {
	Key        string
	Label      string
	Categories string
	Row        int
}

// Summary value columns on the cover sheet, zero-based.
const (
	colEstimated      = 6  // G
	colActual         = 7  // H
	colVariance       = 8  // I
	colClientActual   = 9  // J
	colClientVariance = 10 // K
)

// CoverSchema fixes the cover sheet layout: project header cells plus the
// firm bid, cost plus, and grand total summary rows.
type CoverSchema struct {
	ProjectTitle      sheets.CellAddress
	ProductionCompany sheets.CellAddress
	ContactPhone      sheets.CellAddress
	Date              sheets.CellAddress

	Director sheets.CellAddress
	Producer sheets.CellAddress
	Writer   sheets.CellAddress

	TimelinePreProd  sheets.CellAddress
	TimelineBuild    sheets.CellAddress
	TimelinePreLight sheets.CellAddress
	TimelineStudio   sheets.CellAddress
	TimelineLocation sheets.CellAddress
	TimelineWrap     sheets.CellAddress

	FirmBid    []SummaryRow
	CostPlus   []SummaryRow
	GrandTotal SummaryRow
}

// Cover is the layout table for the cover sheet of the AICP template.
var Cover = CoverSchema{
	ProjectTitle:      sheets.MustAddr("C5"),
	ProductionCompany: sheets.MustAddr("C6"),
	ContactPhone:      sheets.MustAddr("C7"),
	Date:              sheets.MustAddr("H4"),

	Director: sheets.MustAddr("C9"),
	Producer: sheets.MustAddr("C10"),
	Writer:   sheets.MustAddr("C11"),

	TimelinePreProd:  sheets.MustAddr("D12"),
	TimelineBuild:    sheets.MustAddr("D13"),
	TimelinePreLight: sheets.MustAddr("D14"),
	TimelineStudio:   sheets.MustAddr("D15"),
	TimelineLocation: sheets.MustAddr("D16"),
	TimelineWrap:     sheets.MustAddr("D17"),

	FirmBid: []SummaryRow{
		{Key: "pre_production_wrap", Label: "Pre-production and wrap costs", Categories: "Total A,C", Row: 22},
		{Key: "shooting_crew_labor", Label: "Shooting crew labor", Categories: "Total B", Row: 23},
		{Key: "location_studio_travel", Label: "Location, Studio, and travel expenses", Categories: "Total D, F", Row: 24},
		{Key: "props_wardrobe", Label: "Props, wardrobe, animals", Categories: "Total E", Row: 25},
		{Key: "art_labor", Label: "Art labor & expenses", Categories: "Total G", Row: 26},
		{Key: "equipment", Label: "Equipment costs", Categories: "Total I", Row: 27},
		{Key: "film_stock", Label: "Film stock and printing", Categories: "Total J", Row: 28},
		{Key: "creative_fees", Label: "Creative fees", Categories: "Total K", Row: 29},
		{Key: "director_fees", Label: "Director fees", Categories: "Total L", Row: 30},
		{Key: "talent_costs", Label: "Talent costs and expenses", Categories: "Totals M,N", Row: 31},
		{Key: "agency_services", Label: "Agency Services", Categories: "Total O", Row: 32},
		{Key: "post_expenses", Label: "Post Expenses", Categories: "Total P", Row: 33},
		{Key: "production_fee", Label: "Production Fee", Categories: "20% NOT on K, L, O", Row: 34},
		{Key: "subtotal", Label: "FIRM BID", Row: 35},
	},
	CostPlus: []SummaryRow{
		{Key: "pnw", Label: "All P&W", Categories: "Sub Total A, B G, M1", Row: 40},
		{Key: "production_fee_pnw", Label: "Production Fee 10% on P&W", Categories: "Total A, B G, M1", Row: 41},
		{Key: "cost_plus_expenses", Label: "Cost Plus expenses", Categories: "Sub Total H", Row: 42},
		{Key: "production_fee_cost_plus", Label: "Production Fee 10% on Cost Plus", Categories: "Total H", Row: 43},
		{Key: "subtotal", Label: "COST PLUS", Row: 45},
	},
	GrandTotal: SummaryRow{Key: "grand_total", Label: "GRAND BID TOTAL", Row: 47},
}
