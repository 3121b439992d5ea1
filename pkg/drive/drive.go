// Package drive wraps the Google Drive v3 calls used to provision budget
// folders and copy the AICP template.
package drive

import (
	"context"
	"fmt"
	"log/slog"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Service struct {
	svc    *driveapi.Service
	logger *slog.Logger
}

// NewService builds a Drive client from a service account credentials file.
// An empty path falls back to application default credentials.
func NewService(ctx context.Context, credentialsFile string, logger *slog.Logger) (*Service, error) {
	opts := []option.ClientOption{option.WithScopes(driveapi.DriveScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := driveapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init drive service: %w", err)
	}
	return &Service{svc: svc, logger: logger}, nil
}

// CreateFolder creates a folder, optionally under a parent, and returns its
// file ID.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &driveapi.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := s.svc.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	s.logger.Info("created folder", slog.String("name", name), slog.String("id", f.Id))
	return f.Id, nil
}

// FindOrCreateFolder reuses an existing folder with the given name under
// the parent, creating it only when missing.
func (s *Service) FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("mimeType='%s' and name='%s'", folderMimeType, name)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	res, err := s.svc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for folder %q: %w", name, err)
	}
	if len(res.Files) > 0 {
		s.logger.Info("found existing folder", slog.String("name", name))
		return res.Files[0].Id, nil
	}
	return s.CreateFolder(ctx, name, parentID)
}

// CopiedFile identifies a template copy and its browser link.
type CopiedFile struct {
	ID          string
	WebViewLink string
}

// CopyTemplate copies a template file into the given parent folder.
func (s *Service) CopyTemplate(ctx context.Context, templateID, name, parentID string) (*CopiedFile, error) {
	meta := &driveapi.File{Name: name, Parents: []string{parentID}}
	f, err := s.svc.Files.Copy(templateID, meta).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to copy template %s: %w", templateID, err)
	}
	s.logger.Info("copied template", slog.String("name", name), slog.String("id", f.Id))
	return &CopiedFile{ID: f.Id, WebViewLink: f.WebViewLink}, nil
}

// FolderStructure is the client/year/job/budget folder chain created for a
// new job.
type FolderStructure struct {
	ClientFolder string
	YearFolder   string
	JobFolder    string
	BudgetFolder string
}

// CreateBudgetFolderStructure builds the folder chain for a job: the client
// and year folders are reused when present, the job and budget folders are
// always fresh.
func (s *Service) CreateBudgetFolderStructure(ctx context.Context, clientName, jobName, rootID string, year int) (*FolderStructure, error) {
	clientFolder, err := s.FindOrCreateFolder(ctx, clientName, rootID)
	if err != nil {
		return nil, err
	}
	yearFolder, err := s.FindOrCreateFolder(ctx, fmt.Sprintf("%d", year), clientFolder)
	if err != nil {
		return nil, err
	}
	jobFolder, err := s.CreateFolder(ctx, jobName, yearFolder)
	if err != nil {
		return nil, err
	}
	budgetFolder, err := s.CreateFolder(ctx, "Budget", jobFolder)
	if err != nil {
		return nil, err
	}
	return &FolderStructure{
		ClientFolder: clientFolder,
		YearFolder:   yearFolder,
		JobFolder:    jobFolder,
		BudgetFolder: budgetFolder,
	}, nil
}

// ShareFile grants a whole domain access to a file.
func (s *Service) ShareFile(ctx context.Context, fileID, domain, role string) error {
	if role == "" {
		role = "writer"
	}
	perm := &driveapi.Permission{Type: "domain", Role: role, Domain: domain}
	_, err := s.svc.Permissions.Create(fileID, perm).Fields("id").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to share file %s: %w", fileID, err)
	}
	s.logger.Info("shared file", slog.String("id", fileID), slog.String("domain", domain))
	return nil
}
