package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is one uploaded version of a project's report file.
//
// Versions within a project are unique and contiguous starting at 1; the
// unique index on (project_id, version) backstops the transactional
// assignment in the repository.
type Report struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"size:200;not null"`
	StorageKey string    `json:"-" gorm:"size:300;uniqueIndex;not null"`
	Version    int       `json:"version" gorm:"not null;default:1;uniqueIndex:idx_project_version"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:255;not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
	ProjectID  uuid.UUID `json:"project_id" gorm:"type:char(36);not null;index;uniqueIndex:idx_project_version"`

	// Relations
	Project  Project   `json:"-" gorm:"foreignKey:ProjectID"`
	Comments []Comment `json:"-" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
