package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project groups a client's report versions under a title.
type Project struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	ClientID  uuid.UUID `json:"client_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Client  AllowedClient `json:"-" gorm:"foreignKey:ClientID"`
	Reports []Report      `json:"reports,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// LatestActivity is the most recent report upload time, falling back to the
// project's creation time when it has no reports.
func (p *Project) LatestActivity() time.Time {
	latest := p.CreatedAt
	for _, r := range p.Reports {
		if r.UploadedAt.After(latest) {
			latest = r.UploadedAt
		}
	}
	return latest
}
