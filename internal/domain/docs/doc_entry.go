package docs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocEntry is a curated documentation snippet retrievable by platform and keyword.
type DocEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"column:title;not null" json:"title"`
	Platform   string    `gorm:"column:platform;not null;index" json:"platform"`
	Version    string    `gorm:"column:version" json:"version,omitempty"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	Source     string    `gorm:"column:source" json:"source,omitempty"`
	IsOfficial bool      `gorm:"column:is_official;not null" json:"is_official"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (DocEntry) TableName() string { return "doc_entry" }

func (d *DocEntry) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
