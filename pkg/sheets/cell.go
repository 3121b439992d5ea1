package sheets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAddress reports a cell label that is not letters-then-digits.
// It indicates a bug in a layout table, not bad user data.
var ErrMalformedAddress = errors.New("sheets: malformed cell address")

// CellAddress is a zero-based (column, row) grid coordinate. Labels use the
// usual spreadsheet notation: letters accumulate as base-26 columns
// (A=0..Z=25, AA=26, ...), digits as a 1-based row.
type CellAddress struct {
	Col int
	Row int
}

// ParseAddress parses a label like "AC52" into a CellAddress.
func ParseAddress(label string) (CellAddress, error) {
	col, row := 0, 0
	seenLetter, seenDigit := false, false
	for _, c := range strings.ToUpper(strings.TrimSpace(label)) {
		switch {
		case c >= 'A' && c <= 'Z':
			if seenDigit {
				return CellAddress{}, fmt.Errorf("%w: %q", ErrMalformedAddress, label)
			}
			col = col*26 + int(c-'A'+1)
			seenLetter = true
		case c >= '0' && c <= '9':
			row = row*10 + int(c-'0')
			seenDigit = true
		default:
			return CellAddress{}, fmt.Errorf("%w: %q", ErrMalformedAddress, label)
		}
	}
	if !seenLetter || !seenDigit || row == 0 {
		return CellAddress{}, fmt.Errorf("%w: %q", ErrMalformedAddress, label)
	}
	return CellAddress{Col: col - 1, Row: row - 1}, nil
}

// MustAddr is ParseAddress for static layout tables, where a bad label is a
// programming error.
func MustAddr(label string) CellAddress {
	a, err := ParseAddress(label)
	if err != nil {
		panic(err)
	}
	return a
}

// Label renders the address back into spreadsheet notation.
func (a CellAddress) Label() string {
	col := a.Col + 1
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return fmt.Sprintf("%s%d", letters, a.Row+1)
}

// Ref renders a single-cell range reference for the given sheet.
func (a CellAddress) Ref(sheetTitle string) string {
	return fmt.Sprintf("'%s'!%s", sheetTitle, a.Label())
}

// Range is an inclusive rectangular cell region.
type Range struct {
	Start CellAddress
	End   CellAddress
}

// MustRange builds a Range from two labels, panicking on malformed input.
func MustRange(start, end string) Range {
	return Range{Start: MustAddr(start), End: MustAddr(end)}
}

// Ref renders the range in fetch-request syntax: 'Sheet Title'!A1:B2.
func (r Range) Ref(sheetTitle string) string {
	return fmt.Sprintf("'%s'!%s:%s", sheetTitle, r.Start.Label(), r.End.Label())
}

// parseRef splits a range reference back into sheet title and region. Both
// 'Title'!A1:B2 and 'Title'!A1 forms are accepted; the single-cell form
// yields a degenerate one-cell range. Used by the workbook-backed reader.
func parseRef(ref string) (sheetTitle string, r Range, err error) {
	bang := strings.LastIndex(ref, "!")
	if bang < 0 {
		return "", Range{}, fmt.Errorf("%w: missing sheet title in %q", ErrMalformedAddress, ref)
	}
	sheetTitle = strings.Trim(ref[:bang], "'")
	region := ref[bang+1:]
	start, end, found := strings.Cut(region, ":")
	r.Start, err = ParseAddress(start)
	if err != nil {
		return "", Range{}, err
	}
	if !found {
		r.End = r.Start
		return sheetTitle, r, nil
	}
	r.End, err = ParseAddress(end)
	if err != nil {
		return "", Range{}, err
	}
	return sheetTitle, r, nil
}
