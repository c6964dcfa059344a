package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerationJob is one request to generate code for a project.
// Status moves PENDING -> PROCESSING -> {COMPLETED | FAILED} and never back.
type GenerationJob struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Prompt      string         `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Model       string         `gorm:"column:model;not null" json:"model"`
	Provider    string         `gorm:"column:provider;not null" json:"provider"`
	Context     datatypes.JSON `gorm:"column:context;type:jsonb" json:"context,omitempty"`
	Status      Status         `gorm:"column:status;not null;index" json:"status"`
	Output      datatypes.JSON `gorm:"column:output;type:jsonb" json:"output,omitempty"`
	TokensUsed  *int           `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
	Error       *string        `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (GenerationJob) TableName() string { return "generation_job" }

func (j *GenerationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = StatusPending
	}
	return nil
}

// SubmitContext is the caller-supplied generation context stored on the job.
// Empty fields fall back to the project's settings.
type SubmitContext struct {
	APIVersion    string `json:"apiVersion,omitempty"`
	PackageName   string `json:"packageName,omitempty"`
	CommandPrefix string `json:"commandPrefix,omitempty"`
}

// Output is persisted on COMPLETED jobs: the written paths and the model's summary.
type Output struct {
	Files   []string `json:"files"`
	Summary string   `json:"summary"`
}
