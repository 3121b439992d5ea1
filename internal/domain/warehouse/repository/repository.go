// Package repository persists processed budgets to the reporting warehouse.
package repository

import (
	"context"

	"github.com/filmbudget/budget-sync/internal/domain/budget"
)

// Warehouse is the persistence surface the budget service writes to.
type Warehouse interface {
	// UpsertProject registers the owning project, keyed by the budget
	// name prefix.
	UpsertProject(ctx context.Context, projectID, name string) error

	// SaveBudget stores one processed run: the cover row, its flattened
	// line items, and any validation findings, atomically.
	SaveBudget(ctx context.Context, cover budget.CoverRow, details []budget.DetailRow, findings []budget.ValidationRow) error

	// LatestBudget returns the most recently processed run for a budget
	// name, or nil when none exists.
	LatestBudget(ctx context.Context, budgetName string) (*budget.CoverRow, error)
}
