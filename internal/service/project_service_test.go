package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"portal/internal/cache"
	"portal/internal/config"
	apperrors "portal/internal/errors"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/storage"
)

func uploadConfig() *config.Config {
	return &config.Config{
		AllowedExtensions: map[string]bool{
			"pdf": true, "doc": true, "docx": true, "xlsx": true,
			"xls": true, "csv": true, "png": true, "jpg": true, "jpeg": true,
		},
	}
}

func newTestProjectService(
	projects repository.ProjectRepository,
	reports repository.ReportRepository,
	clients repository.ClientRepository,
	store storage.BlobStore,
) ProjectService {
	return NewProjectService(uploadConfig(), projects, reports, clients, store, (*cache.Client)(nil))
}

func TestProjectService_CreateProject(t *testing.T) {
	clientID := uuid.New()
	client := &model.AllowedClient{ID: clientID, Email: "client@example.com", Status: model.ClientStatusActive}

	tests := []struct {
		name          string
		title         string
		filename      string
		setupMocks    func(*MockProjectRepository, *MockClientRepository)
		expectedError error
	}{
		{
			name:          "missing title",
			title:         "   ",
			filename:      "report.pdf",
			setupMocks:    func(p *MockProjectRepository, c *MockClientRepository) {},
			expectedError: apperrors.ErrMissingFields,
		},
		{
			name:          "disallowed extension",
			title:         "Q1 Audit",
			filename:      "malware.exe",
			setupMocks:    func(p *MockProjectRepository, c *MockClientRepository) {},
			expectedError: apperrors.ErrInvalidFileType,
		},
		{
			name:     "unknown client",
			title:    "Q1 Audit",
			filename: "report.pdf",
			setupMocks: func(p *MockProjectRepository, c *MockClientRepository) {
				c.On("FindByID", mock.Anything, clientID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrClientNotFound,
		},
		{
			name:     "successful creation",
			title:    "Q1 Audit",
			filename: "report.pdf",
			setupMocks: func(p *MockProjectRepository, c *MockClientRepository) {
				c.On("FindByID", mock.Anything, clientID).Return(client, nil)
				p.On("CreateWithFirstReport", mock.Anything, mock.AnythingOfType("*model.Project"), mock.AnythingOfType("*model.Report")).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := new(MockProjectRepository)
			clients := new(MockClientRepository)
			store := newFakeBlobStore()
			tt.setupMocks(projects, clients)

			svc := newTestProjectService(projects, new(MockReportRepository), clients, store)
			resp, err := svc.CreateProject(context.Background(), tt.title, clientID, "admin@example.com", Upload{
				Filename: tt.filename,
				Content:  strings.NewReader("file body"),
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "Q1 Audit", resp.Title)
			assert.Equal(t, "client@example.com", resp.ClientEmail)
			assert.Len(t, resp.Reports, 1)
			assert.Equal(t, 1, resp.Reports[0].Version)
			assert.Equal(t, "report.pdf", resp.Reports[0].Name)
			assert.Len(t, store.saved, 1)
			projects.AssertExpectations(t)
		})
	}
}

func TestProjectService_CreateProject_RemovesBlobOnCommitFailure(t *testing.T) {
	clientID := uuid.New()
	projects := new(MockProjectRepository)
	clients := new(MockClientRepository)
	store := newFakeBlobStore()

	clients.On("FindByID", mock.Anything, clientID).
		Return(&model.AllowedClient{ID: clientID, Email: "client@example.com"}, nil)
	projects.On("CreateWithFirstReport", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newTestProjectService(projects, new(MockReportRepository), clients, store)
	_, err := svc.CreateProject(context.Background(), "Q1 Audit", clientID, "admin@example.com", Upload{
		Filename: "report.pdf",
		Content:  strings.NewReader("file body"),
	})

	assert.Error(t, err)
	assert.Empty(t, store.saved)
	assert.Len(t, store.removed, 1)
}

func TestProjectService_AddFollowUpReport(t *testing.T) {
	projectID := uuid.New()
	projects := new(MockProjectRepository)
	reports := newFakeReportRepo()
	store := newFakeBlobStore()

	projects.On("FindByID", mock.Anything, projectID).
		Return(&model.Project{ID: projectID, Title: "Q1 Audit"}, nil)

	svc := newTestProjectService(projects, reports, new(MockClientRepository), store)

	first, err := svc.AddFollowUpReport(context.Background(), projectID, "admin@example.com", Upload{
		Filename: "follow up.pdf",
		Content:  strings.NewReader("v1"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "follow up.pdf", first.Name)
	assert.Equal(t, "/download/"+first.ID.String(), first.DownloadURL)

	second, err := svc.AddFollowUpReport(context.Background(), projectID, "admin@example.com", Upload{
		Filename: "follow up.pdf",
		Content:  strings.NewReader("v2"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, second.Version)
}

func TestProjectService_AddFollowUpReport_ProjectNotFound(t *testing.T) {
	projectID := uuid.New()
	projects := new(MockProjectRepository)
	projects.On("FindByID", mock.Anything, projectID).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestProjectService(projects, new(MockReportRepository), new(MockClientRepository), newFakeBlobStore())
	_, err := svc.AddFollowUpReport(context.Background(), projectID, "admin@example.com", Upload{
		Filename: "report.pdf",
		Content:  strings.NewReader("body"),
	})

	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

// Concurrent uploads to the same project must produce contiguous versions
// with no duplicates and no gaps.
func TestProjectService_AddFollowUpReport_ConcurrentVersions(t *testing.T) {
	const uploads = 20

	projectID := uuid.New()
	projects := new(MockProjectRepository)
	reports := newFakeReportRepo()

	projects.On("FindByID", mock.Anything, projectID).
		Return(&model.Project{ID: projectID, Title: "Q1 Audit"}, nil)

	svc := newTestProjectService(projects, reports, new(MockClientRepository), newFakeBlobStore())

	var wg sync.WaitGroup
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddFollowUpReport(context.Background(), projectID, "admin@example.com", Upload{
				Filename: "report.pdf",
				Content:  strings.NewReader("body"),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	seen := make(map[int]bool)
	for _, v := range reports.versions[projectID] {
		assert.False(t, seen[v], "version %d assigned twice", v)
		seen[v] = true
	}
	for v := 1; v <= uploads; v++ {
		assert.True(t, seen[v], "version %d missing", v)
	}
}

func TestProjectService_ListProjects_Scoping(t *testing.T) {
	clientA := &model.AllowedClient{ID: uuid.New(), Email: "a@example.com"}
	clientB := &model.AllowedClient{ID: uuid.New(), Email: "b@example.com"}
	projectA := model.Project{ID: uuid.New(), Title: "A's project", ClientID: clientA.ID, Client: *clientA}
	projectB := model.Project{ID: uuid.New(), Title: "B's project", ClientID: clientB.ID, Client: *clientB}

	tests := []struct {
		name           string
		ident          Identity
		setupMocks     func(*MockProjectRepository, *MockClientRepository)
		expectedTitles []string
	}{
		{
			name:  "admin sees everything",
			ident: Identity{Email: "admin@example.com", Role: model.RoleAdmin},
			setupMocks: func(p *MockProjectRepository, c *MockClientRepository) {
				p.On("ListAll", mock.Anything).Return([]model.Project{projectA, projectB}, nil)
			},
			expectedTitles: []string{"A's project", "B's project"},
		},
		{
			name:  "client sees only their own",
			ident: Identity{Email: "a@example.com", Role: model.RoleClient},
			setupMocks: func(p *MockProjectRepository, c *MockClientRepository) {
				c.On("FindByEmail", mock.Anything, "a@example.com").Return(clientA, nil)
				p.On("ListByClient", mock.Anything, clientA.ID).Return([]model.Project{projectA}, nil)
			},
			expectedTitles: []string{"A's project"},
		},
		{
			name:  "unknown client email sees nothing",
			ident: Identity{Email: "stranger@example.com", Role: model.RoleClient},
			setupMocks: func(p *MockProjectRepository, c *MockClientRepository) {
				c.On("FindByEmail", mock.Anything, "stranger@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedTitles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := new(MockProjectRepository)
			clients := new(MockClientRepository)
			tt.setupMocks(projects, clients)

			svc := newTestProjectService(projects, new(MockReportRepository), clients, newFakeBlobStore())
			resp, err := svc.ListProjects(context.Background(), tt.ident)

			assert.NoError(t, err)
			titles := make([]string, 0, len(resp))
			for _, p := range resp {
				titles = append(titles, p.Title)
			}
			assert.ElementsMatch(t, tt.expectedTitles, titles)
			projects.AssertExpectations(t)
			clients.AssertExpectations(t)
		})
	}
}

// A dormant project that just received a report must outrank a newer project
// with no uploads.
func TestProjectService_ListProjects_SortedByLatestActivity(t *testing.T) {
	now := time.Now()
	older := model.Project{
		ID:        uuid.New(),
		Title:     "older but active",
		CreatedAt: now.Add(-72 * time.Hour),
		Reports: []model.Report{
			{ID: uuid.New(), Version: 1, UploadedAt: now.Add(-72 * time.Hour)},
			{ID: uuid.New(), Version: 2, UploadedAt: now.Add(-time.Hour)},
		},
	}
	newer := model.Project{
		ID:        uuid.New(),
		Title:     "newer but idle",
		CreatedAt: now.Add(-2 * time.Hour),
	}

	projects := new(MockProjectRepository)
	projects.On("ListAll", mock.Anything).Return([]model.Project{newer, older}, nil)

	svc := newTestProjectService(projects, new(MockReportRepository), new(MockClientRepository), newFakeBlobStore())
	resp, err := svc.ListProjects(context.Background(), Identity{Email: "admin@example.com", Role: model.RoleAdmin})

	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, "older but active", resp[0].Title)
	assert.Equal(t, "newer but idle", resp[1].Title)
	// Reports serialize newest version first.
	assert.Equal(t, 2, resp[0].Reports[0].Version)
	assert.Equal(t, 1, resp[0].Reports[1].Version)
}

func TestProjectService_ListReports_UnknownClientIsEmpty(t *testing.T) {
	clients := new(MockClientRepository)
	clients.On("FindByEmail", mock.Anything, "stranger@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestProjectService(new(MockProjectRepository), new(MockReportRepository), clients, newFakeBlobStore())
	resp, err := svc.ListReports(context.Background(), Identity{Email: "stranger@example.com", Role: model.RoleClient})

	assert.NoError(t, err)
	assert.Empty(t, resp)
}

func newMemFs(t *testing.T, key, body string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, key, []byte(body), 0o644))
	return fs
}

func TestProjectService_Download(t *testing.T) {
	owner := &model.AllowedClient{ID: uuid.New(), Email: "owner@example.com"}
	outsider := &model.AllowedClient{ID: uuid.New(), Email: "outsider@example.com"}
	report := &model.Report{
		ID:         uuid.New(),
		Name:       "report.pdf",
		StorageKey: "blob-key",
		Version:    1,
		ProjectID:  uuid.New(),
	}
	report.Project = model.Project{ID: report.ProjectID, ClientID: owner.ID}

	store := storage.NewFileStoreFS(newMemFs(t, "blob-key", "report body"))

	tests := []struct {
		name          string
		ident         Identity
		setupMocks    func(*MockReportRepository, *MockClientRepository)
		expectedError error
	}{
		{
			name:  "unknown report",
			ident: Identity{Email: "admin@example.com", Role: model.RoleAdmin},
			setupMocks: func(r *MockReportRepository, c *MockClientRepository) {
				r.On("FindByIDWithProject", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrReportNotFound,
		},
		{
			name:  "other client is forbidden",
			ident: Identity{Email: "outsider@example.com", Role: model.RoleClient},
			setupMocks: func(r *MockReportRepository, c *MockClientRepository) {
				r.On("FindByIDWithProject", mock.Anything, report.ID).Return(report, nil)
				c.On("FindByEmail", mock.Anything, "outsider@example.com").Return(outsider, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:  "owner downloads",
			ident: Identity{Email: "owner@example.com", Role: model.RoleClient},
			setupMocks: func(r *MockReportRepository, c *MockClientRepository) {
				r.On("FindByIDWithProject", mock.Anything, report.ID).Return(report, nil)
				c.On("FindByEmail", mock.Anything, "owner@example.com").Return(owner, nil)
			},
		},
		{
			name:  "admin downloads",
			ident: Identity{Email: "admin@example.com", Role: model.RoleAdmin},
			setupMocks: func(r *MockReportRepository, c *MockClientRepository) {
				r.On("FindByIDWithProject", mock.Anything, report.ID).Return(report, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := new(MockReportRepository)
			clients := new(MockClientRepository)
			tt.setupMocks(reports, clients)

			svc := newTestProjectService(new(MockProjectRepository), reports, clients, store)
			rc, name, err := svc.Download(context.Background(), tt.ident, report.ID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, rc)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "report.pdf", name)
			body := make([]byte, 11)
			n, _ := rc.Read(body)
			assert.Equal(t, "report body", string(body[:n]))
			assert.NoError(t, rc.Close())
		})
	}
}
