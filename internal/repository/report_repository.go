package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/internal/model"
)

// ReportRepository defines report persistence operations.
type ReportRepository interface {
	// CreateNextVersion assigns max(version)+1 for the report's project and
	// inserts the row in one transaction. The parent project row is locked
	// for the duration, so concurrent uploads to the same project serialize
	// and can never share a version number.
	CreateNextVersion(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.Report, error)
	ListAll(ctx context.Context) ([]model.Report, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreateNextVersion(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the parent project row; version assignment for a project is a
		// read-modify-write that must not interleave.
		var project model.Project
		if err := lockProject(tx, report.ProjectID).First(&project).Error; err != nil {
			return err
		}

		var maxVersion int
		if err := tx.Model(&model.Report{}).
			Where("project_id = ?", report.ProjectID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		report.Version = maxVersion + 1
		return tx.Create(report).Error
	})
}

// lockProject scopes a query to the project row under FOR UPDATE.
func lockProject(tx *gorm.DB, id uuid.UUID) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListAll returns every report, most recently uploaded first.
func (r *reportRepository) ListAll(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// ListByClient returns the client's reports across all its projects, most
// recently uploaded first.
func (r *reportRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Report, error) {
	var reports []model.Report
	if err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = reports.project_id").
		Where("projects.client_id = ?", clientID).
		Order("reports.uploaded_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
