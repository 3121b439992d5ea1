package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
)

// Exporter writes the audit trail for each run: the full structured budget
// as JSON and the flattened line items as CSV, named by upload ID.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

func (e *Exporter) Export(b *budget.Budget) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	if err := e.writeJSON(b); err != nil {
		return err
	}
	return e.writeCSV(b)
}

func (e *Exporter) writeJSON(b *budget.Budget) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit JSON: %w", err)
	}
	path := filepath.Join(e.dir, b.UploadID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write audit JSON: %w", err)
	}
	return nil
}

func (e *Exporter) writeCSV(b *budget.Budget) error {
	path := filepath.Join(e.dir, b.UploadID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit CSV: %w", err)
	}
	defer f.Close()

	rows := budget.FlattenDetails(b)
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write audit CSV: %w", err)
	}
	return nil
}
