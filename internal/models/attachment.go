package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Attachment struct {
	ID         uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID     uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FilePath   string    `json:"-" gorm:"size:1024;not null"`
	FileType   string    `json:"file_type" gorm:"size:255"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&a.ID)
}
