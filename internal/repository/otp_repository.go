package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/internal/model"
)

// OTPRepository defines OTP challenge persistence operations.
type OTPRepository interface {
	Create(ctx context.Context, challenge *model.OtpChallenge) error
	// FindLatestByEmail returns the most recently created challenge for the
	// email regardless of state; used for rate limiting.
	FindLatestByEmail(ctx context.Context, email string) (*model.OtpChallenge, error)
	// FindLatestMatch returns the most recently created unconsumed challenge
	// matching email and code exactly.
	FindLatestMatch(ctx context.Context, email, code string) (*model.OtpChallenge, error)
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, challenge *model.OtpChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *otpRepository) FindLatestByEmail(ctx context.Context, email string) (*model.OtpChallenge, error) {
	var challenge model.OtpChallenge
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *otpRepository) FindLatestMatch(ctx context.Context, email, code string) (*model.OtpChallenge, error) {
	var challenge model.OtpChallenge
	if err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND consumed = ?", email, code, false).
		Order("created_at DESC").
		First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *otpRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.OtpChallenge{}).
		Where("id = ?", id).
		Update("consumed", true).Error
}
