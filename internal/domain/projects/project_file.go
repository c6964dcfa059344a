package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFile is one entry of a project's file tree, unique on (project_id, path).
type ProjectFile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_file_path,priority:1" json:"project_id"`
	Path        string    `gorm:"column:path;not null;uniqueIndex:idx_project_file_path,priority:2" json:"path"`
	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	IsDirectory bool      `gorm:"column:is_directory;not null" json:"is_directory"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (ProjectFile) TableName() string { return "project_file" }

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
