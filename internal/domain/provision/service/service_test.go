package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbudget/budget-sync/internal/domain/provision/service"
	"github.com/filmbudget/budget-sync/pkg/drive"
	"github.com/filmbudget/budget-sync/pkg/tracker"
)

type fakeTracker struct {
	task *tracker.Task

	createdFolder string
	createdList   string
	fieldWrites   map[string]any
	calls         []string
}

func (f *fakeTracker) GetTask(_ context.Context, taskID string) (*tracker.Task, error) {
	f.calls = append(f.calls, "GetTask")
	if f.task == nil {
		return nil, fmt.Errorf("unexpected status 404: task %s", taskID)
	}
	return f.task, nil
}

func (f *fakeTracker) CreateFolder(_ context.Context, listID, name string) (*tracker.Folder, error) {
	f.calls = append(f.calls, "CreateFolder")
	f.createdFolder = listID + "/" + name
	return &tracker.Folder{ID: "folder-1", Name: name}, nil
}

func (f *fakeTracker) CreateList(_ context.Context, folderID, name string) (*tracker.List, error) {
	f.calls = append(f.calls, "CreateList")
	f.createdList = folderID + "/" + name
	return &tracker.List{ID: "list-1", Name: name}, nil
}

func (f *fakeTracker) UpdateCustomField(_ context.Context, _, fieldID string, value any) error {
	f.calls = append(f.calls, "UpdateCustomField")
	if f.fieldWrites == nil {
		f.fieldWrites = make(map[string]any)
	}
	f.fieldWrites[fieldID] = value
	return nil
}

type fakeDrive struct {
	structureErr error

	clientName string
	jobName    string
	rootID     string
	year       int
	copiedName string
	sharedWith string
	calls      []string
}

func (f *fakeDrive) CreateBudgetFolderStructure(_ context.Context, clientName, jobName, rootID string, year int) (*drive.FolderStructure, error) {
	f.calls = append(f.calls, "CreateBudgetFolderStructure")
	if f.structureErr != nil {
		return nil, f.structureErr
	}
	f.clientName, f.jobName, f.rootID, f.year = clientName, jobName, rootID, year
	return &drive.FolderStructure{
		ClientFolder: "client-1",
		YearFolder:   "year-1",
		JobFolder:    "job-1",
		BudgetFolder: "budget-1",
	}, nil
}

func (f *fakeDrive) CopyTemplate(_ context.Context, _, name, parentID string) (*drive.CopiedFile, error) {
	f.calls = append(f.calls, "CopyTemplate")
	f.copiedName = parentID + "/" + name
	return &drive.CopiedFile{ID: "sheet-1", WebViewLink: "https://docs.google.com/spreadsheets/d/sheet-1"}, nil
}

func (f *fakeDrive) ShareFile(_ context.Context, fileID, domain, role string) error {
	f.calls = append(f.calls, "ShareFile")
	f.sharedWith = fileID + "/" + domain + "/" + role
	return nil
}

func jobTask() *tracker.Task {
	return &tracker.Task{
		ID:   "task-1",
		Name: "Summer Campaign",
		List: tracker.ListRef{ID: "intake-list", Name: "Job Intake"},
		CustomFields: []tracker.CustomField{
			{ID: "cf-client", Name: "client_name", Value: "Redwood Pictures"},
		},
	}
}

func testConfig() service.Config {
	return service.Config{
		RootFolderID:    "root-1",
		TemplateSheetID: "template-1",
		ShareDomain:     "redwood.example",
		BudgetFieldID:   "cf-budget",
		ListFieldID:     "cf-list",
	}
}

func TestSetupBudget(t *testing.T) {
	tr := &fakeTracker{task: jobTask()}
	dr := &fakeDrive{}
	svc := service.New(tr, dr, testConfig(), slog.New(slog.DiscardHandler))

	res, err := svc.SetupBudget(context.Background(), "task-1")
	require.NoError(t, err)

	assert.Equal(t, "Redwood Pictures", res.ClientName)
	assert.Equal(t, "Summer Campaign", res.JobName)
	assert.Equal(t, "sheet-1", res.BudgetSheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-1", res.BudgetURL)
	assert.Equal(t, "folder-1", res.FolderID)
	assert.Equal(t, "list-1", res.ListID)
	require.NotNil(t, res.Folders)
	assert.Equal(t, "budget-1", res.Folders.BudgetFolder)

	// Folder chain is built under the configured root for this year.
	assert.Equal(t, "Redwood Pictures", dr.clientName)
	assert.Equal(t, "root-1", dr.rootID)
	assert.Equal(t, time.Now().Year(), dr.year)

	// The template copy lands in the Budget folder, named after the job.
	expectedName := "budget-1/Summer Campaign_Budget_" + time.Now().Format("20060102")
	assert.Equal(t, expectedName, dr.copiedName)
	assert.Equal(t, "sheet-1/redwood.example/writer", dr.sharedWith)

	// Tracker structure hangs off the task's own list.
	assert.Equal(t, "intake-list/Summer Campaign_Budget", tr.createdFolder)
	assert.Equal(t, "folder-1/AICP Line Items", tr.createdList)

	// Both custom fields point back at what was created.
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-1", tr.fieldWrites["cf-budget"])
	assert.Equal(t, "list-1", tr.fieldWrites["cf-list"])

	assert.Equal(t, []string{"GetTask", "CreateFolder", "CreateList",
		"UpdateCustomField", "UpdateCustomField"}, tr.calls)
	assert.Equal(t, []string{"CreateBudgetFolderStructure", "CopyTemplate", "ShareFile"}, dr.calls)
}

func TestSetupBudgetDefaultsClientName(t *testing.T) {
	task := jobTask()
	task.CustomFields = nil
	tr := &fakeTracker{task: task}
	dr := &fakeDrive{}
	svc := service.New(tr, dr, testConfig(), slog.New(slog.DiscardHandler))

	res, err := svc.SetupBudget(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, "Unknown Client", res.ClientName)
	assert.Equal(t, "Unknown Client", dr.clientName)
}

func TestSetupBudgetSkipsShareWithoutDomain(t *testing.T) {
	cfg := testConfig()
	cfg.ShareDomain = ""
	tr := &fakeTracker{task: jobTask()}
	dr := &fakeDrive{}
	svc := service.New(tr, dr, cfg, slog.New(slog.DiscardHandler))

	_, err := svc.SetupBudget(context.Background(), "task-1")
	require.NoError(t, err)
	assert.NotContains(t, dr.calls, "ShareFile")
}

func TestSetupBudgetPropagatesDriveFailure(t *testing.T) {
	tr := &fakeTracker{task: jobTask()}
	dr := &fakeDrive{structureErr: errors.New("quota exceeded")}
	svc := service.New(tr, dr, testConfig(), slog.New(slog.DiscardHandler))

	_, err := svc.SetupBudget(context.Background(), "task-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create folder structure")

	// Nothing is created on the tracker once Drive fails.
	assert.Equal(t, []string{"GetTask"}, tr.calls)
}
