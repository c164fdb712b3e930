package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/internal/model"
)

// ProjectRepository defines project persistence operations.
type ProjectRepository interface {
	// CreateWithFirstReport persists the project and its version-1 report as
	// one transaction; neither row exists if either insert fails.
	CreateWithFirstReport(ctx context.Context, project *model.Project, report *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	FindByIDWithReports(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateWithFirstReport(ctx context.Context, project *model.Project, report *model.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		report.ProjectID = project.ID
		report.Version = 1
		return tx.Create(report).Error
	})
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByIDWithReports(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).
		Preload("Reports").Preload("Client").
		Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Preload("Reports").Preload("Client").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).
		Preload("Reports").Preload("Client").
		Where("client_id = ?", clientID).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
