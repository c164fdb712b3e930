package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/internal/model"
)

// ClientRepository defines allowed-client persistence operations.
type ClientRepository interface {
	Create(ctx context.Context, client *model.AllowedClient) error
	Update(ctx context.Context, client *model.AllowedClient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AllowedClient, error)
	FindByEmail(ctx context.Context, email string) (*model.AllowedClient, error)
	FindActiveByEmail(ctx context.Context, email string) (*model.AllowedClient, error)
	List(ctx context.Context) ([]model.AllowedClient, error)
	// DeleteCascade removes the client together with its projects, reports,
	// and report comments in one transaction. It returns the storage keys of
	// the deleted reports so the caller can clean up blobs afterwards.
	DeleteCascade(ctx context.Context, client *model.AllowedClient) ([]string, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.AllowedClient) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.AllowedClient) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AllowedClient, error) {
	var client model.AllowedClient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*model.AllowedClient, error) {
	var client model.AllowedClient
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindActiveByEmail(ctx context.Context, email string) (*model.AllowedClient, error) {
	var client model.AllowedClient
	if err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, model.ClientStatusActive).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// List returns all clients, most recently added first.
func (r *clientRepository) List(ctx context.Context) ([]model.AllowedClient, error) {
	var clients []model.AllowedClient
	if err := r.db.WithContext(ctx).Order("added_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) DeleteCascade(ctx context.Context, client *model.AllowedClient) ([]string, error) {
	var storageKeys []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uuid.UUID
		if err := tx.Model(&model.Project{}).
			Where("client_id = ?", client.ID).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			var reportIDs []uuid.UUID
			if err := tx.Model(&model.Report{}).
				Where("project_id IN ?", projectIDs).
				Pluck("id", &reportIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Report{}).
				Where("project_id IN ?", projectIDs).
				Pluck("storage_key", &storageKeys).Error; err != nil {
				return err
			}

			if len(reportIDs) > 0 {
				if err := tx.Where("report_id IN ?", reportIDs).Delete(&model.Comment{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&model.Report{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", projectIDs).Delete(&model.Project{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(client).Error
	})
	if err != nil {
		return nil, err
	}
	return storageKeys, nil
}
