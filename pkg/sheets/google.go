package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// GoogleReader reads budget spreadsheets through the Google Sheets v4 API
// with read-only scope.
type GoogleReader struct {
	svc *sheetsapi.Service
}

// NewGoogleReader builds a reader authenticated with the given service
// account credentials file. An empty path falls back to application default
// credentials.
func NewGoogleReader(ctx context.Context, credentialsFile string) (*GoogleReader, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init sheets service: %w", err)
	}
	return &GoogleReader{svc: svc}, nil
}

// Metadata fetches the spreadsheet title and tab list.
func (g *GoogleReader) Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	resp, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title", "sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err)
	}

	md := &Metadata{}
	if resp.Properties != nil {
		md.SpreadsheetTitle = resp.Properties.Title
	}
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		md.Sheets = append(md.Sheets, SheetInfo{ID: s.Properties.SheetId, Title: s.Properties.Title})
	}
	return md, nil
}

// BatchGetValues fetches all requested ranges in a single batched read.
// Results are keyed by the requested range string; the API may normalize
// range text in its response, so ranges are matched back by position.
func (g *GoogleReader) BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string) (map[string][][]Value, error) {
	resp, err := g.svc.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err)
	}

	out := make(map[string][][]Value, len(ranges))
	for i, vr := range resp.ValueRanges {
		if i >= len(ranges) {
			break
		}
		rows := make([][]Value, 0, len(vr.Values))
		for _, row := range vr.Values {
			cells := make([]Value, 0, len(row))
			for _, raw := range row {
				cells = append(cells, FromRaw(raw))
			}
			rows = append(rows, cells)
		}
		out[ranges[i]] = trimValues(rows)
	}
	return out, nil
}

// wrapAPIError maps quota rejections onto ErrRateLimited so the Coordinator
// can recognize them; everything else passes through untouched.
func wrapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	if strings.Contains(err.Error(), "RATE_LIMIT_EXCEEDED") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}
