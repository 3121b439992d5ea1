package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	budgethandler "github.com/filmbudget/budget-sync/internal/domain/budget/handler"
	budgetservice "github.com/filmbudget/budget-sync/internal/domain/budget/service"
	provisionhandler "github.com/filmbudget/budget-sync/internal/domain/provision/handler"
	provisionservice "github.com/filmbudget/budget-sync/internal/domain/provision/service"
	"github.com/filmbudget/budget-sync/internal/domain/warehouse/repository"
	"github.com/filmbudget/budget-sync/pkg/config"
	"github.com/filmbudget/budget-sync/pkg/cron"
	"github.com/filmbudget/budget-sync/pkg/drive"
	"github.com/filmbudget/budget-sync/pkg/sheets"
	"github.com/filmbudget/budget-sync/pkg/tracker"
	"github.com/filmbudget/budget-sync/pkg/versions"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	VersionStore *versions.Store
	Warehouse    repository.Warehouse

	BudgetService    *budgetservice.Service
	ProvisionService *provisionservice.Service
	Scheduler        *cron.Scheduler

	BudgetHandler    *budgethandler.BudgetHandler
	ProvisionHandler *provisionhandler.ProvisionHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase connects the warehouse pool and runs migrations.
func (d *Dependencies) initDatabase(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(d.Config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	d.Pool = pool

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if err := repository.Migrate(ctx, sqlDB); err != nil {
		return err
	}

	d.Warehouse = repository.NewPostgresWarehouse(pool)
	return nil
}

func (d *Dependencies) initServices(ctx context.Context) error {
	reader, err := sheets.NewGoogleReader(ctx, d.Config.Sheets.CredentialsFile)
	if err != nil {
		return err
	}
	coordinator := sheets.NewCoordinator(reader, d.Logger, d.Config.Sheets.RequestsPerSec)

	d.VersionStore = versions.NewStore(filepath.Join(d.Config.Processor.OutputDir, "version_tracking.json"))

	d.BudgetService = budgetservice.New(coordinator, d.VersionStore, d.Logger, budgetservice.Options{
		Warehouse:      d.Warehouse,
		Audit:          budgetservice.NewExporter(d.Config.Processor.OutputDir),
		DefaultCompany: d.Config.Processor.DefaultCompany,
		Tolerance:      d.Config.Processor.ReconcileTolerance,
	})

	d.Scheduler = cron.NewScheduler(d.VersionStore, d.BudgetService, d.Config.Processor.ResyncSchedule, d.Logger)

	// Provisioning is optional; without tracker credentials the API only
	// serves budget processing.
	if err := d.Config.RequireTracker(); err != nil {
		d.Logger.Warn("job provisioning disabled", slog.Any("reason", err))
		return nil
	}
	driveSvc, err := drive.NewService(ctx, d.Config.Sheets.CredentialsFile, d.Logger)
	if err != nil {
		return err
	}
	trackerClient := tracker.NewClient(d.Config.Tracker.Token, d.Logger)
	d.ProvisionService = provisionservice.New(trackerClient, driveSvc, provisionservice.Config{
		RootFolderID:    d.Config.Drive.RootFolderID,
		TemplateSheetID: d.Config.Drive.TemplateSheetID,
		ShareDomain:     d.Config.Drive.ShareDomain,
		BudgetFieldID:   d.Config.Tracker.BudgetFieldID,
		ListFieldID:     d.Config.Tracker.ListFieldID,
	}, d.Logger)
	return nil
}

func (d *Dependencies) initHandlers() {
	d.BudgetHandler = budgethandler.NewBudgetHandler(d.BudgetService, d.Logger)
	if d.ProvisionService != nil {
		d.ProvisionHandler = provisionhandler.NewProvisionHandler(d.ProvisionService, d.Logger)
	}
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
}
