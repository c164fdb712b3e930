package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a remark left on a report by an admin or client.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ReportID  uuid.UUID `json:"report_id" gorm:"type:char(36);not null;index"`
	UserEmail string    `json:"user_email" gorm:"size:255;not null"`
	Text      string    `json:"text" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Report Report `json:"-" gorm:"foreignKey:ReportID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
