package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role distinguishes administrators from clients.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// LoginEvent records one successful authentication. Tokens themselves are
// stateless; these rows are append-only.
type LoginEvent struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *LoginEvent) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
