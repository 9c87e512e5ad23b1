package models

import (
	"database/sql/driver"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Keywords is stored as a postgres text[]; other dialects keep the same
// array literal in a text column.
type Keywords []string

func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(k).Value()
}

func (k *Keywords) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*k = Keywords(arr)
	return nil
}

func (Keywords) GormDataType() string {
	return "text"
}

func (Keywords) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type GdprArticle struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ArticleNumber string    `json:"article_number" gorm:"size:32;not null;index"`
	Title         string    `json:"title" gorm:"size:255;not null"`
	Content       string    `json:"content" gorm:"type:text"`
	Keywords      Keywords  `json:"keywords"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a *GdprArticle) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&a.ID)
}

// SavedArticle is a per-user bookmark; (user, article) is unique.
type SavedArticle struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_article"`
	ArticleID uuid.UUID `json:"article_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_article;index"`
	SavedAt   time.Time `json:"saved_at" gorm:"autoCreateTime"`
}

func (s *SavedArticle) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&s.ID)
}

// All lists every persisted entity in migration order.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Task{},
		&Comment{},
		&Attachment{},
		&GdprArticle{},
		&SavedArticle{},
	}
}
