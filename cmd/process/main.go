// Command process runs one budget extraction from the command line, either
// against a live Google Sheet URL or an exported .xlsx file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	budgethandler "github.com/filmbudget/budget-sync/internal/domain/budget/handler"
	budgetservice "github.com/filmbudget/budget-sync/internal/domain/budget/service"
	"github.com/filmbudget/budget-sync/pkg/config"
	"github.com/filmbudget/budget-sync/pkg/sheets"
	"github.com/filmbudget/budget-sync/pkg/versions"
)

func main() {
	var (
		url  = flag.String("url", "", "Google Sheets budget URL")
		file = flag.String("file", "", "local .xlsx budget export")
		gid  = flag.String("gid", "", "sheet tab gid (default: first tab)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger, *url, *file, *gid); err != nil {
		logger.Error("processing failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, url, file, gid string) error {
	if (url == "") == (file == "") {
		return fmt.Errorf("exactly one of -url or -file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var reader sheets.Reader
	spreadsheetID := file
	switch {
	case url != "":
		spreadsheetID, gid, err = budgethandler.ParseBudgetURL(url)
		if err != nil {
			return err
		}
		reader, err = sheets.NewGoogleReader(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return err
		}
	default:
		excel, err := sheets.OpenExcel(file)
		if err != nil {
			return err
		}
		defer excel.Close()
		reader = excel
	}

	coordinator := sheets.NewCoordinator(reader, logger, cfg.Sheets.RequestsPerSec)
	store := versions.NewStore(filepath.Join(cfg.Processor.OutputDir, "version_tracking.json"))

	svc := budgetservice.New(coordinator, store, logger, budgetservice.Options{
		Audit:          budgetservice.NewExporter(cfg.Processor.OutputDir),
		DefaultCompany: cfg.Processor.DefaultCompany,
		Tolerance:      cfg.Processor.ReconcileTolerance,
	})

	b, err := svc.ProcessBudget(ctx, spreadsheetID, gid)
	if err != nil {
		return err
	}

	fmt.Printf("upload_id:  %s\n", b.UploadID)
	fmt.Printf("version:    %s\n", b.Version)
	fmt.Printf("validation: %s\n", b.Validation.Status)
	fmt.Printf("classes:    %v\n", b.ClassOrder)
	for _, msg := range b.Validation.Messages {
		fmt.Printf("  - %s\n", msg)
	}
	return nil
}
