package sheets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/pkg/sheets"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		label string
		col   int
		row   int
	}{
		{"A1", 0, 0},
		{"C5", 2, 4},
		{"Z53", 25, 52},
		{"AA1", 26, 0},
		{"AD18", 29, 17},
		{"BP38", 67, 37},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			addr, err := sheets.ParseAddress(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.col, addr.Col)
			assert.Equal(t, tc.row, addr.Row)

			// Label must be the exact inverse of ParseAddress.
			assert.Equal(t, tc.label, addr.Label())
		})
	}
}

func TestParseAddressMalformed(t *testing.T) {
	for _, label := range []string{"", "42", "AB", "1A", "A1B", "A0"} {
		t.Run(label, func(t *testing.T) {
			_, err := sheets.ParseAddress(label)
			assert.ErrorIs(t, err, sheets.ErrMalformedAddress)
		})
	}
}

func TestRangeRef(t *testing.T) {
	r := sheets.MustRange("L4", "S52")
	assert.Equal(t, "'Budget Tab'!L4:S52", r.Ref("Budget Tab"))

	addr := sheets.MustAddr("P53")
	assert.Equal(t, "'Budget Tab'!P53", addr.Ref("Budget Tab"))
}
