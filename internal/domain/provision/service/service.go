// Package service provisions the working infrastructure for a new job: the
// Drive folder chain, a budget sheet copied from the template, and the
// tracker folder and list the production team works from.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmbudget/budget-sync/pkg/drive"
	"github.com/filmbudget/budget-sync/pkg/tracker"
)

const lineItemsListName = "AICP Line Items"

// Tracker is the task tracker surface provisioning needs.
type Tracker interface {
	GetTask(ctx context.Context, taskID string) (*tracker.Task, error)
	CreateFolder(ctx context.Context, listID, name string) (*tracker.Folder, error)
	CreateList(ctx context.Context, folderID, name string) (*tracker.List, error)
	UpdateCustomField(ctx context.Context, taskID, fieldID string, value any) error
}

// Drive is the file storage surface provisioning needs.
type Drive interface {
	CreateBudgetFolderStructure(ctx context.Context, clientName, jobName, rootID string, year int) (*drive.FolderStructure, error)
	CopyTemplate(ctx context.Context, templateID, name, parentID string) (*drive.CopiedFile, error)
	ShareFile(ctx context.Context, fileID, domain, role string) error
}

// Config carries the template and custom field identifiers.
type Config struct {
	RootFolderID    string
	TemplateSheetID string
	ShareDomain     string
	BudgetFieldID   string
	ListFieldID     string
}

// Service wires a tracker task to its budget infrastructure.
type Service struct {
	tracker Tracker
	drive   Drive
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

func New(t Tracker, d Drive, cfg Config, logger *slog.Logger) *Service {
	return &Service{tracker: t, drive: d, cfg: cfg, logger: logger, now: time.Now}
}

// Result describes everything SetupBudget created.
type Result struct {
	TaskID        string                 `json:"task_id"`
	ClientName    string                 `json:"client_name"`
	JobName       string                 `json:"job_name"`
	BudgetSheetID string                 `json:"budget_sheet_id"`
	BudgetURL     string                 `json:"budget_url"`
	FolderID      string                 `json:"folder_id"`
	ListID        string                 `json:"list_id"`
	Folders       *drive.FolderStructure `json:"-"`
}

// SetupBudget builds the full structure for one job: client/year/job/Budget
// folders on Drive, a template copy named after the job, a tracker folder
// with the line items list, and the custom field writebacks linking the
// task to both.
func (s *Service) SetupBudget(ctx context.Context, taskID string) (*Result, error) {
	task, err := s.tracker.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	clientName, ok := task.CustomFieldValue("client_name")
	if !ok || clientName == "" {
		clientName = "Unknown Client"
	}
	jobName := task.Name

	folders, err := s.drive.CreateBudgetFolderStructure(ctx, clientName, jobName, s.cfg.RootFolderID, s.now().Year())
	if err != nil {
		return nil, fmt.Errorf("failed to create folder structure: %w", err)
	}

	templateName := fmt.Sprintf("%s_Budget_%s", jobName, s.now().Format("20060102"))
	sheet, err := s.drive.CopyTemplate(ctx, s.cfg.TemplateSheetID, templateName, folders.BudgetFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to copy budget template: %w", err)
	}
	if s.cfg.ShareDomain != "" {
		if err := s.drive.ShareFile(ctx, sheet.ID, s.cfg.ShareDomain, "writer"); err != nil {
			return nil, err
		}
	}

	folder, err := s.tracker.CreateFolder(ctx, task.List.ID, jobName+"_Budget")
	if err != nil {
		return nil, err
	}
	list, err := s.tracker.CreateList(ctx, folder.ID, lineItemsListName)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.UpdateCustomField(ctx, taskID, s.cfg.BudgetFieldID, sheet.WebViewLink); err != nil {
		return nil, err
	}
	if err := s.tracker.UpdateCustomField(ctx, taskID, s.cfg.ListFieldID, list.ID); err != nil {
		return nil, err
	}

	s.logger.Info("job provisioned",
		slog.String("task_id", taskID),
		slog.String("job", jobName),
		slog.String("sheet", sheet.ID),
		slog.String("list", list.ID))

	return &Result{
		TaskID:        taskID,
		ClientName:    clientName,
		JobName:       jobName,
		BudgetSheetID: sheet.ID,
		BudgetURL:     sheet.WebViewLink,
		FolderID:      folder.ID,
		ListID:        list.ID,
		Folders:       folders,
	}, nil
}
