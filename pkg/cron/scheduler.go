// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	budgetservice "github.com/filmbudget/budget-sync/internal/domain/budget/service"
	"github.com/filmbudget/budget-sync/pkg/versions"
)

// Scheduler re-processes every tracked budget sheet on a schedule so the
// warehouse follows actuals as productions fill them in.
type Scheduler struct {
	cron     *cron.Cron
	store    *versions.Store
	budgets  *budgetservice.Service
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(store *versions.Store, budgets *budgetservice.Service, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		store:    store,
		budgets:  budgets,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.resyncTrackedBudgets)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the re-sync (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.resyncTrackedBudgets()
}

// resyncTrackedBudgets reprocesses every sheet the version store knows.
// Sheets that no longer resolve are logged and skipped; one broken budget
// must not stall the rest of the nightly run.
func (s *Scheduler) resyncTrackedBudgets() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	s.logger.Info("starting nightly budget re-sync")

	entries, err := s.store.Entries()
	if err != nil {
		s.logger.Error("failed to list tracked budgets", slog.Any("error", err))
		return
	}

	synced := 0
	failed := 0
	for key, entry := range entries {
		if entry.SpreadsheetID == "" {
			continue
		}

		b, err := s.budgets.ProcessBudget(ctx, entry.SpreadsheetID, entry.SheetGID)
		if err != nil {
			s.logger.Warn("failed to re-sync budget",
				slog.String("budget", key),
				slog.Any("error", err),
			)
			failed++
			continue
		}

		s.logger.Debug("re-synced budget",
			slog.String("budget", key),
			slog.String("version", b.Version),
		)
		synced++
	}

	s.logger.Info("nightly budget re-sync completed",
		slog.Int("synced", synced),
		slog.Int("failed", failed),
	)
}
