package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/internal/cache"
	"portal/internal/config"
	apperrors "portal/internal/errors"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/storage"
)

// clientCacheTTL bounds how stale the scoper's client lookup may be.
const clientCacheTTL = 5 * time.Minute

// Identity is the authenticated caller as asserted by a validated token.
type Identity struct {
	Email string
	Role  model.Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Upload is an incoming report file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ReportResponse is the serialized form of a report.
type ReportResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProjectID   uuid.UUID `json:"project_id"`
	DownloadURL string    `json:"download_url"`
}

// ProjectResponse is the serialized form of a project with its reports,
// newest version first.
type ProjectResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	ClientID    uuid.UUID        `json:"client_id"`
	ClientEmail string           `json:"client_email"`
	CreatedAt   time.Time        `json:"created_at"`
	Reports     []ReportResponse `json:"reports"`
}

// ProjectService owns project creation, the report version ledger, and
// visibility scoping of reads.
type ProjectService interface {
	CreateProject(ctx context.Context, title string, clientID uuid.UUID, uploaderEmail string, up Upload) (*ProjectResponse, error)
	AddFollowUpReport(ctx context.Context, projectID uuid.UUID, uploaderEmail string, up Upload) (*ReportResponse, error)
	ListProjects(ctx context.Context, ident Identity) ([]ProjectResponse, error)
	ListReports(ctx context.Context, ident Identity) ([]ReportResponse, error)
	// Download resolves a report's blob and original filename after checking
	// that the identity may see the owning project.
	Download(ctx context.Context, ident Identity, reportID uuid.UUID) (io.ReadCloser, string, error)
}

type projectService struct {
	cfg         *config.Config
	projectRepo repository.ProjectRepository
	reportRepo  repository.ReportRepository
	clientRepo  repository.ClientRepository
	store       storage.BlobStore
	cache       *cache.Client
}

// NewProjectService creates a new project service.
func NewProjectService(
	cfg *config.Config,
	projectRepo repository.ProjectRepository,
	reportRepo repository.ReportRepository,
	clientRepo repository.ClientRepository,
	store storage.BlobStore,
	cache *cache.Client,
) ProjectService {
	return &projectService{
		cfg:         cfg,
		projectRepo: projectRepo,
		reportRepo:  reportRepo,
		clientRepo:  clientRepo,
		store:       store,
		cache:       cache,
	}
}

// CreateProject validates the input, stores the uploaded file, and commits
// the project together with its version-1 report.
func (s *projectService) CreateProject(ctx context.Context, title string, clientID uuid.UUID, uploaderEmail string, up Upload) (*ProjectResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrMissingFields
	}
	if !s.allowedFile(up.Filename) {
		return nil, apperrors.ErrInvalidFileType
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	key := s.store.NewKey(up.Filename)
	if err := s.store.Save(key, up.Content); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	project := &model.Project{
		Title:    title,
		ClientID: client.ID,
	}
	report := &model.Report{
		Name:       filepath.Base(up.Filename),
		StorageKey: key,
		UploadedBy: uploaderEmail,
	}
	if err := s.projectRepo.CreateWithFirstReport(ctx, project, report); err != nil {
		// The blob must not outlive a failed commit.
		_ = s.store.Remove(key)
		return nil, fmt.Errorf("create project: %w", err)
	}

	project.Client = *client
	project.Reports = []model.Report{*report}
	resp := serializeProject(project)
	return &resp, nil
}

// AddFollowUpReport stores the file and appends the next report version to
// the project. Version assignment is serialized per project by the repository.
func (s *projectService) AddFollowUpReport(ctx context.Context, projectID uuid.UUID, uploaderEmail string, up Upload) (*ReportResponse, error) {
	if !s.allowedFile(up.Filename) {
		return nil, apperrors.ErrInvalidFileType
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	key := s.store.NewKey(up.Filename)
	if err := s.store.Save(key, up.Content); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	report := &model.Report{
		Name:       filepath.Base(up.Filename),
		StorageKey: key,
		UploadedBy: uploaderEmail,
		ProjectID:  project.ID,
	}
	if err := s.reportRepo.CreateNextVersion(ctx, report); err != nil {
		_ = s.store.Remove(key)
		return nil, fmt.Errorf("create report: %w", err)
	}

	resp := serializeReport(report)
	return &resp, nil
}

// ListProjects returns the projects visible to the identity, sorted by
// latest activity descending.
func (s *projectService) ListProjects(ctx context.Context, ident Identity) ([]ProjectResponse, error) {
	projects, err := s.scopedProjects(ctx, ident)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].LatestActivity().After(projects[j].LatestActivity())
	})

	responses := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, serializeProject(&projects[i]))
	}
	return responses, nil
}

// ListReports returns the flat report list visible to the identity, most
// recently uploaded first.
func (s *projectService) ListReports(ctx context.Context, ident Identity) ([]ReportResponse, error) {
	var (
		reports []model.Report
		err     error
	)
	if ident.IsAdmin() {
		reports, err = s.reportRepo.ListAll(ctx)
	} else {
		client, resolveErr := s.resolveClient(ctx, ident.Email)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if client == nil {
			return []ReportResponse{}, nil
		}
		reports, err = s.reportRepo.ListByClient(ctx, client.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	responses := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		responses = append(responses, serializeReport(&reports[i]))
	}
	return responses, nil
}

func (s *projectService) Download(ctx context.Context, ident Identity, reportID uuid.UUID) (io.ReadCloser, string, error) {
	report, err := s.reportRepo.FindByIDWithProject(ctx, reportID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", apperrors.ErrReportNotFound
		}
		return nil, "", fmt.Errorf("find report: %w", err)
	}

	if !ident.IsAdmin() {
		client, err := s.resolveClient(ctx, ident.Email)
		if err != nil {
			return nil, "", err
		}
		if client == nil || client.ID != report.Project.ClientID {
			return nil, "", apperrors.ErrForbidden
		}
	}

	rc, err := s.store.Open(report.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("open blob: %w", err)
	}
	return rc, report.Name, nil
}

// scopedProjects applies visibility scoping: admins see every project,
// clients only their own, and an unknown client email yields an empty set.
func (s *projectService) scopedProjects(ctx context.Context, ident Identity) ([]model.Project, error) {
	if ident.IsAdmin() {
		projects, err := s.projectRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return projects, nil
	}

	client, err := s.resolveClient(ctx, ident.Email)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}

	projects, err := s.projectRepo.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// resolveClient looks up a client record by email, consulting the cache
// first. A missing record returns (nil, nil), not an error.
func (s *projectService) resolveClient(ctx context.Context, email string) (*model.AllowedClient, error) {
	email = normalizeEmail(email)

	if data, _ := s.cache.Get(ctx, clientCacheKey(email)); data != nil {
		var cached model.AllowedClient
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	client, err := s.clientRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	if payload, err := json.Marshal(client); err == nil {
		_ = s.cache.Set(ctx, clientCacheKey(email), payload, clientCacheTTL)
	}
	return client, nil
}

func (s *projectService) allowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	return s.cfg.AllowedExtensions[ext]
}

func clientCacheKey(email string) string {
	return "client_email:" + email
}

func serializeProject(p *model.Project) ProjectResponse {
	reports := make([]model.Report, len(p.Reports))
	copy(reports, p.Reports)
	// Newest version first; upload time breaks ties.
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Version != reports[j].Version {
			return reports[i].Version > reports[j].Version
		}
		return reports[i].UploadedAt.After(reports[j].UploadedAt)
	})

	serialized := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		serialized = append(serialized, serializeReport(&reports[i]))
	}

	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		ClientID:    p.ClientID,
		ClientEmail: p.Client.Email,
		CreatedAt:   p.CreatedAt,
		Reports:     serialized,
	}
}

func serializeReport(r *model.Report) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		Name:        r.Name,
		Version:     r.Version,
		UploadedBy:  r.UploadedBy,
		UploadedAt:  r.UploadedAt,
		ProjectID:   r.ProjectID,
		DownloadURL: "/download/" + r.ID.String(),
	}
}
