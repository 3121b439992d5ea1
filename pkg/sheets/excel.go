package sheets

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelReader serves the Reader interface from a local .xlsx workbook so a
// budget exported from Sheets can be processed without network access.
type ExcelReader struct {
	f *excelize.File
}

// OpenExcel loads a workbook from disk. Callers own Close.
func OpenExcel(path string) (*ExcelReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &ExcelReader{f: f}, nil
}

func (e *ExcelReader) Close() error {
	return e.f.Close()
}

// Metadata lists the workbook sheets. Excelize sheet indexes stand in for
// the Sheets API grid IDs, which keeps gid-based tab selection working for
// files saved straight out of Google Sheets.
func (e *ExcelReader) Metadata(_ context.Context, _ string) (*Metadata, error) {
	md := &Metadata{SpreadsheetTitle: workbookTitle(e.f)}
	for i, name := range e.f.GetSheetList() {
		md.Sheets = append(md.Sheets, SheetInfo{ID: int64(i), Title: name})
	}
	return md, nil
}

func workbookTitle(f *excelize.File) string {
	if props, err := f.GetDocProps(); err == nil && props != nil && props.Title != "" {
		return props.Title
	}
	return f.Path
}

// BatchGetValues resolves each A1 range against the workbook grid, applying
// the same trailing-empty trim the live API performs.
func (e *ExcelReader) BatchGetValues(_ context.Context, _ string, ranges []string) (map[string][][]Value, error) {
	out := make(map[string][][]Value, len(ranges))
	for _, ref := range ranges {
		title, rng, err := parseRef(ref)
		if err != nil {
			return nil, err
		}
		rows, err := e.readRange(title, rng)
		if err != nil {
			return nil, err
		}
		out[ref] = rows
	}
	return out, nil
}

func (e *ExcelReader) readRange(sheet string, rng Range) ([][]Value, error) {
	rows := make([][]Value, 0, rng.End.Row-rng.Start.Row+1)
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		cells := make([]Value, 0, rng.End.Col-rng.Start.Col+1)
		for c := rng.Start.Col; c <= rng.End.Col; c++ {
			label := CellAddress{Col: c, Row: r}.Label()
			raw, err := e.f.GetCellValue(sheet, label)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s!%s: %w", sheet, label, err)
			}
			cells = append(cells, FromRaw(raw))
		}
		rows = append(rows, cells)
	}
	return trimValues(rows), nil
}
