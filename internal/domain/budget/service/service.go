// Package service orchestrates one budget processing run: fetch, extract,
// version, validate, warehouse, and audit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
	"github.com/filmbudget/budget-sync/internal/domain/budget/sheet"
	"github.com/filmbudget/budget-sync/internal/domain/warehouse/repository"
	"github.com/filmbudget/budget-sync/pkg/sheets"
	"github.com/filmbudget/budget-sync/pkg/versions"
)

// ErrNoProjectTitle reports a sheet whose cover carries no project title
// and whose spreadsheet has no usable title either.
var ErrNoProjectTitle = errors.New("budget has no project title")

// SheetSource is the spreadsheet read surface; the sheets Coordinator
// satisfies it.
type SheetSource interface {
	Metadata(ctx context.Context, spreadsheetID string) (*sheets.Metadata, error)
	FetchRanges(ctx context.Context, spreadsheetID string, ranges []string) (map[string][][]sheets.Value, error)
}

// Service runs budget extractions end to end.
type Service struct {
	source    SheetSource
	extractor *sheet.Extractor
	validator *budget.Validator
	versions  *versions.Store
	warehouse repository.Warehouse
	audit     *Exporter
	logger    *slog.Logger

	// classLimiter paces class section reads to stay inside the Sheets
	// quota; bursts of two match the section pairing on the template.
	classLimiter *rate.Limiter

	defaultCompany string
	now            func() time.Time
}

// Options carries the optional collaborators; nil fields disable the
// corresponding stage.
type Options struct {
	Warehouse      repository.Warehouse
	Audit          *Exporter
	DefaultCompany string
	Tolerance      float64
	ClassesPerSec  float64
}

func New(source SheetSource, store *versions.Store, logger *slog.Logger, opts Options) *Service {
	perSec := opts.ClassesPerSec
	if perSec <= 0 {
		perSec = 1.0 / 15
	}
	return &Service{
		source:         source,
		extractor:      sheet.NewExtractor(source, logger),
		validator:      budget.NewValidator(opts.Tolerance, logger),
		versions:       store,
		warehouse:      opts.Warehouse,
		audit:          opts.Audit,
		logger:         logger,
		classLimiter:   rate.NewLimiter(rate.Limit(perSec), 2),
		defaultCompany: opts.DefaultCompany,
		now:            time.Now,
	}
}

// ProcessBudget extracts, versions, and validates one sheet tab, then
// persists the result to the warehouse and audit trail when configured.
// An empty sheetGID selects the first tab.
func (s *Service) ProcessBudget(ctx context.Context, spreadsheetID, sheetGID string) (*budget.Budget, error) {
	md, err := s.source.Metadata(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	tab, ok := md.SheetByGID(sheetGID)
	if !ok {
		return nil, fmt.Errorf("no sheet with gid %q in spreadsheet %s", sheetGID, spreadsheetID)
	}

	s.logger.Info("processing budget",
		slog.String("spreadsheet", md.SpreadsheetTitle),
		slog.String("sheet", tab.Title))

	project, financials, err := s.extractor.ExtractCoverSheet(ctx, spreadsheetID, tab.Title)
	if err != nil {
		return nil, err
	}
	if err := s.applyFallbacks(&project, md.SpreadsheetTitle); err != nil {
		return nil, err
	}

	classes, order, err := s.extractClasses(ctx, spreadsheetID, tab.Title)
	if err != nil {
		return nil, err
	}

	b := &budget.Budget{
		SpreadsheetID: spreadsheetID,
		SheetGID:      sheetGID,
		SheetTitle:    tab.Title,
		ProcessedAt:   s.now(),
		Project:       project,
		Financials:    financials,
		Classes:       classes,
		ClassOrder:    order,
		VersionStatus: "draft",
	}

	hash, err := versions.Hash(struct {
		Project    budget.ProjectSummary          `json:"project"`
		Financials budget.Financials              `json:"financials"`
		Classes    map[string]*budget.BudgetClass `json:"classes"`
	}{project, financials, classes})
	if err != nil {
		return nil, err
	}
	v, err := s.versions.Resolve(md.SpreadsheetTitle, tab.Title, spreadsheetID, sheetGID, hash, b.ProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve version: %w", err)
	}
	b.UploadID = v.UploadID
	b.BudgetName = v.Key
	b.Version = v.String()

	b.Validation = s.validator.ValidateBudget(b, func(code string) bool {
		return sheet.ClassSchemas[code].PercentRateTolerated
	})

	if s.warehouse != nil {
		if err := s.store(ctx, b); err != nil {
			return nil, err
		}
	}
	if s.audit != nil {
		if err := s.audit.Export(b); err != nil {
			return nil, err
		}
	}

	s.logger.Info("budget processed",
		slog.String("upload_id", b.UploadID),
		slog.String("version", b.Version),
		slog.String("validation", b.Validation.Status),
		slog.Int("classes", len(order)))
	return b, nil
}

func (s *Service) applyFallbacks(project *budget.ProjectSummary, spreadsheetTitle string) error {
	if project.ProjectTitle == "" {
		fallback := strings.TrimSpace(spreadsheetTitle)
		if fallback == "" {
			return ErrNoProjectTitle
		}
		s.logger.Warn("cover sheet has no project title, using spreadsheet title",
			slog.String("title", fallback))
		project.ProjectTitle = fallback
	}
	if project.ProductionCompany == "" && s.defaultCompany != "" {
		s.logger.Warn("cover sheet has no production company, using default",
			slog.String("company", s.defaultCompany))
		project.ProductionCompany = s.defaultCompany
	}
	return nil
}

func (s *Service) extractClasses(ctx context.Context, spreadsheetID, sheetTitle string) (map[string]*budget.BudgetClass, []string, error) {
	classes := make(map[string]*budget.BudgetClass)
	var order []string

	for _, code := range sheet.ClassOrder {
		if err := s.classLimiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
		c, err := s.extractor.ExtractClass(ctx, spreadsheetID, sheetTitle, sheet.ClassSchemas[code])
		if err != nil {
			s.logger.Error("failed to extract class",
				slog.String("class", code), slog.Any("error", err))
			continue
		}
		if c == nil {
			continue
		}
		classes[code] = c
		order = append(order, code)
	}
	return classes, order, nil
}

// store writes the run to the warehouse, registering the owning project
// first. The project ID is the budget name prefix before its first
// underscore.
func (s *Service) store(ctx context.Context, b *budget.Budget) error {
	projectID := b.BudgetName
	if i := strings.Index(projectID, "_"); i > 0 {
		projectID = projectID[:i]
	}
	if err := s.warehouse.UpsertProject(ctx, projectID, b.Project.ProjectTitle); err != nil {
		return err
	}
	return s.warehouse.SaveBudget(ctx,
		budget.FlattenCover(b),
		budget.FlattenDetails(b),
		budget.FlattenValidations(b))
}
