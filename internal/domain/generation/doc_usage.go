package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocUsage records that a doc entry was fed into a job's prompt, with its relevance.
type DocUsage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_doc_usage_job_doc,priority:1" json:"job_id"`
	DocID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_doc_usage_job_doc,priority:2" json:"doc_id"`
	Relevance float64   `gorm:"column:relevance;not null" json:"relevance"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DocUsage) TableName() string { return "doc_usage" }

func (d *DocUsage) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
