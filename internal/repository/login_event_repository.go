package repository

import (
	"context"

	"gorm.io/gorm"

	"portal/internal/model"
)

// LoginEventRepository records successful authentications.
type LoginEventRepository interface {
	Create(ctx context.Context, event *model.LoginEvent) error
}

type loginEventRepository struct {
	db *gorm.DB
}

// NewLoginEventRepository creates a new login event repository.
func NewLoginEventRepository(db *gorm.DB) LoginEventRepository {
	return &loginEventRepository{db: db}
}

func (r *loginEventRepository) Create(ctx context.Context, event *model.LoginEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
