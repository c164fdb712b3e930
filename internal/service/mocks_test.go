package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"portal/internal/model"
)

// MockClientRepository is a mock implementation of repository.ClientRepository.
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *model.AllowedClient) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *model.AllowedClient) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AllowedClient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AllowedClient), args.Error(1)
}

func (m *MockClientRepository) FindByEmail(ctx context.Context, email string) (*model.AllowedClient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AllowedClient), args.Error(1)
}

func (m *MockClientRepository) FindActiveByEmail(ctx context.Context, email string) (*model.AllowedClient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AllowedClient), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context) ([]model.AllowedClient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AllowedClient), args.Error(1)
}

func (m *MockClientRepository) DeleteCascade(ctx context.Context, client *model.AllowedClient) ([]string, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProjectRepository is a mock implementation of repository.ProjectRepository.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) CreateWithFirstReport(ctx context.Context, project *model.Project, report *model.Report) error {
	args := m.Called(ctx, project, report)
	if args.Error(0) == nil {
		if project.ID == uuid.Nil {
			project.ID = uuid.New()
		}
		report.ProjectID = project.ID
		report.Version = 1
	}
	return args.Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByIDWithReports(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

// MockReportRepository is a mock implementation of repository.ReportRepository.
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CreateNextVersion(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) ListAll(ctx context.Context) ([]model.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockReportRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Report, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

// MockOTPRepository is a mock implementation of repository.OTPRepository.
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, challenge *model.OtpChallenge) error {
	args := m.Called(ctx, challenge)
	if args.Error(0) == nil && challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockOTPRepository) FindLatestByEmail(ctx context.Context, email string) (*model.OtpChallenge, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OtpChallenge), args.Error(1)
}

func (m *MockOTPRepository) FindLatestMatch(ctx context.Context, email, code string) (*model.OtpChallenge, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OtpChallenge), args.Error(1)
}

func (m *MockOTPRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoginEventRepository is a mock implementation of repository.LoginEventRepository.
type MockLoginEventRepository struct {
	mock.Mock
}

func (m *MockLoginEventRepository) Create(ctx context.Context, event *model.LoginEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockCommentRepository is a mock implementation of repository.CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]model.Comment, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

// MockSender is a mock implementation of mail.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendOTP(recipient, code string) error {
	args := m.Called(recipient, code)
	return args.Error(0)
}

// fakeBlobStore is an in-memory storage.BlobStore safe for concurrent use.
type fakeBlobStore struct {
	mu      sync.Mutex
	seq     int
	saved   map[string][]byte
	removed []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string][]byte)}
}

func (f *fakeBlobStore) NewKey(originalName string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("%d_%s", f.seq, originalName)
}

func (f *fakeBlobStore) Save(key string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[key] = nil
	return nil
}

func (f *fakeBlobStore) Open(key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeBlobStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, key)
	f.removed = append(f.removed, key)
	return nil
}

// fakeReportRepo emulates the transactional per-project version assignment
// with a mutex, the way the database row lock serializes it.
type fakeReportRepo struct {
	mu       sync.Mutex
	versions map[uuid.UUID][]int
	reports  []*model.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{versions: make(map[uuid.UUID][]int)}
}

func (f *fakeReportRepo) CreateNextVersion(ctx context.Context, report *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxVersion := 0
	for _, v := range f.versions[report.ProjectID] {
		if v > maxVersion {
			maxVersion = v
		}
	}
	report.Version = maxVersion + 1
	report.ID = uuid.New()
	f.versions[report.ProjectID] = append(f.versions[report.ProjectID], report.Version)
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeReportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReportRepo) FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeReportRepo) ListAll(ctx context.Context) ([]model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReportRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Report, error) {
	return f.ListAll(ctx)
}
