package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientStatus represents whether a client may authenticate.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Toggle returns the opposite status.
func (s ClientStatus) Toggle() ClientStatus {
	if s == ClientStatusActive {
		return ClientStatusInactive
	}
	return ClientStatusActive
}

// AllowedClient is a client email permitted to authenticate via OTP and own projects.
type AllowedClient struct {
	ID      uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Email   string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Status  ClientStatus `json:"status" gorm:"type:varchar(10);not null;default:'active';index"`
	AddedAt time.Time    `json:"added_at" gorm:"autoCreateTime"`

	// Relations
	Projects []Project `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID and default status before creating the record.
func (c *AllowedClient) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ClientStatusActive
	}
	return nil
}
