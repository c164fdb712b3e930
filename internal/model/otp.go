package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtpChallenge is a one-time passcode issued for a client login attempt.
// Multiple challenges may exist per email; verification only considers the
// most recently created unconsumed one.
type OtpChallenge struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	Code      string    `json:"-" gorm:"type:char(6);not null"`
	Consumed  bool      `json:"consumed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (o *OtpChallenge) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
