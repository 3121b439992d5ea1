package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
)

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresWarehouse implements Warehouse using PostgreSQL
type PostgresWarehouse struct {
	db DB
}

// NewPostgresWarehouse creates a new PostgreSQL-backed warehouse
func NewPostgresWarehouse(db DB) *PostgresWarehouse {
	return &PostgresWarehouse{db: db}
}

// UpsertProject registers a project, updating its name on conflict
func (r *PostgresWarehouse) UpsertProject(ctx context.Context, projectID, name string) error {
	query := `
		INSERT INTO projects (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
	`

	_, err := r.db.Exec(ctx, query, projectID, name)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	return nil
}

// SaveBudget stores one processed run in a single transaction
func (r *PostgresWarehouse) SaveBudget(ctx context.Context, cover budget.CoverRow, details []budget.DetailRow, findings []budget.ValidationRow) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertCover(ctx, tx, cover); err != nil {
		return err
	}
	if err := insertDetails(ctx, tx, cover.BudgetID, details); err != nil {
		return err
	}
	if err := insertValidations(ctx, tx, findings); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit budget: %w", err)
	}
	return nil
}

func insertCover(ctx context.Context, tx pgx.Tx, cover budget.CoverRow) error {
	query := `
		INSERT INTO budgets (
			id, budget_name, version, version_status, spreadsheet_id, sheet_gid, sheet_title,
			project_title, production_company, contact_phone, budget_date,
			director, producer, writer,
			pre_prod_days, build_days, pre_light_days, studio_days, location_days, wrap_days,
			firm_bid_estimated, firm_bid_actual, grand_total_estimated, grand_total_actual,
			validation_status, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	_, err := tx.Exec(ctx, query,
		cover.BudgetID, cover.BudgetName, cover.Version, cover.VersionStatus,
		cover.SpreadsheetID, cover.SheetGID, cover.SheetTitle,
		cover.ProjectTitle, cover.ProductionCompany, cover.ContactPhone, cover.Date,
		cover.Director, cover.Producer, cover.Writer,
		cover.PreProdDays, cover.BuildDays, cover.PreLightDays,
		cover.StudioDays, cover.LocationDays, cover.WrapDays,
		cover.FirmBidEstimated, cover.FirmBidActual,
		cover.GrandTotalEstimated, cover.GrandTotalActual,
		cover.ValidationStatus, cover.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

func insertDetails(ctx context.Context, tx pgx.Tx, budgetID string, details []budget.DetailRow) error {
	query := `
		INSERT INTO budget_details (
			budget_id, class_code, class_name, line_item_number, line_item_description,
			estimate_number, estimate_days, estimate_hours, estimate_rate,
			estimate_ot_rate, estimate_ot_hours, estimate_total,
			actual_days, actual_hours, actual_rate, actual_total,
			class_estimate_subtotal, class_estimate_pnw, class_estimate_total,
			class_actual_subtotal, class_actual_pnw, class_actual_total, class_client_total,
			validation_status, validation_messages
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	for _, d := range details {
		_, err := tx.Exec(ctx, query,
			budgetID, d.ClassCode, d.ClassName, d.LineItemNumber, d.LineItemDescription,
			d.EstimateNumber, d.EstimateDays, d.EstimateHours, d.EstimateRate,
			d.EstimateOTRate, d.EstimateOTHours, d.EstimateTotal,
			d.ActualDays, d.ActualHours, d.ActualRate, d.ActualTotal,
			d.ClassEstimateSubtotal, d.ClassEstimatePW, d.ClassEstimateTotal,
			d.ClassActualSubtotal, d.ClassActualPW, d.ClassActualTotal, d.ClassClientTotal,
			d.ValidationStatus, d.ValidationMessages,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item %s/%s: %w", d.ClassCode, d.LineItemNumber, err)
		}
	}
	return nil
}

func insertValidations(ctx context.Context, tx pgx.Tx, findings []budget.ValidationRow) error {
	query := `
		INSERT INTO budget_validations (budget_id, class_code, status, message)
		VALUES ($1, $2, $3, $4)
	`

	for _, f := range findings {
		if _, err := tx.Exec(ctx, query, f.BudgetID, f.ClassCode, f.Status, f.Message); err != nil {
			return fmt.Errorf("failed to insert validation finding: %w", err)
		}
	}
	return nil
}

// LatestBudget retrieves the most recent run for a budget name
func (r *PostgresWarehouse) LatestBudget(ctx context.Context, budgetName string) (*budget.CoverRow, error) {
	query := `
		SELECT id, budget_name, version, version_status, spreadsheet_id, sheet_gid, sheet_title,
		       project_title, production_company, contact_phone, budget_date,
		       director, producer, writer,
		       pre_prod_days, build_days, pre_light_days, studio_days, location_days, wrap_days,
		       firm_bid_estimated, firm_bid_actual, grand_total_estimated, grand_total_actual,
		       validation_status, processed_at
		FROM budgets
		WHERE budget_name = $1
		ORDER BY processed_at DESC
		LIMIT 1
	`

	var cover budget.CoverRow
	err := r.db.QueryRow(ctx, query, budgetName).Scan(
		&cover.BudgetID, &cover.BudgetName, &cover.Version, &cover.VersionStatus,
		&cover.SpreadsheetID, &cover.SheetGID, &cover.SheetTitle,
		&cover.ProjectTitle, &cover.ProductionCompany, &cover.ContactPhone, &cover.Date,
		&cover.Director, &cover.Producer, &cover.Writer,
		&cover.PreProdDays, &cover.BuildDays, &cover.PreLightDays,
		&cover.StudioDays, &cover.LocationDays, &cover.WrapDays,
		&cover.FirmBidEstimated, &cover.FirmBidActual,
		&cover.GrandTotalEstimated, &cover.GrandTotalActual,
		&cover.ValidationStatus, &cover.ProcessedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest budget: %w", err)
	}

	return &cover, nil
}
