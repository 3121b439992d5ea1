// Package sheets provides read access to budget spreadsheets. It defines a
// small Reader contract with two implementations (Google Sheets API and
// local xlsx workbooks) and a Coordinator that batches range reads and owns
// all rate-limit retry policy.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrRateLimited is the transient signal a Reader returns when the remote
// service rejects a call for quota reasons. The Coordinator is the only
// component that recovers from it.
var ErrRateLimited = errors.New("sheets: rate limit exceeded")

// ValueKind discriminates the cell value union.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
)

// Value is a single cell value as a tagged union (Empty | Text | Number),
// so normalization code can branch exhaustively instead of inspecting
// dynamic types from the wire.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
}

// Text returns a text value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a numeric value.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// FromRaw converts a raw JSON cell value from the Sheets API into a Value.
func FromRaw(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case string:
		if v == "" {
			return Value{}
		}
		return Value{Kind: KindText, Text: v}
	case float64:
		return Value{Kind: KindNumber, Number: v}
	case int:
		return Value{Kind: KindNumber, Number: float64(v)}
	case bool:
		if v {
			return Value{Kind: KindText, Text: "TRUE"}
		}
		return Value{Kind: KindText, Text: "FALSE"}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{Kind: KindText, Text: v.String()}
		}
		return Value{Kind: KindNumber, Number: f}
	default:
		return Value{}
	}
}

// IsEmpty reports whether the cell holds no value.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty || (v.Kind == KindText && strings.TrimSpace(v.Text) == "")
}

// String renders the value the way the sheet displays it.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// SheetInfo identifies one tab of a spreadsheet.
type SheetInfo struct {
	ID    int64
	Title string
}

// Metadata describes a spreadsheet and its tabs.
type Metadata struct {
	SpreadsheetTitle string
	Sheets           []SheetInfo
}

// SheetByGID returns the tab matching gid, or the first tab when gid is
// empty. The second return is false when no tab matches.
func (m *Metadata) SheetByGID(gid string) (SheetInfo, bool) {
	if len(m.Sheets) == 0 {
		return SheetInfo{}, false
	}
	if gid == "" {
		return m.Sheets[0], true
	}
	for _, s := range m.Sheets {
		if strconv.FormatInt(s.ID, 10) == gid {
			return s, true
		}
	}
	return SheetInfo{}, false
}

// Reader is the minimal contract against the spreadsheet service. Ranges use
// the `'Sheet Title'!A1:B2` syntax; results are keyed by the requested range
// string, with trailing empty rows and cells trimmed the way the Sheets API
// trims them.
type Reader interface {
	Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error)
	BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string) (map[string][][]Value, error)
}

// trimValues removes trailing empty cells from every row and trailing empty
// rows from the grid, mirroring the Sheets API response shape so both Reader
// implementations behave identically.
func trimValues(rows [][]Value) [][]Value {
	trimmed := make([][]Value, 0, len(rows))
	for _, row := range rows {
		end := len(row)
		for end > 0 && row[end-1].IsEmpty() {
			end--
		}
		trimmed = append(trimmed, row[:end])
	}
	for len(trimmed) > 0 && len(trimmed[len(trimmed)-1]) == 0 {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed
}
