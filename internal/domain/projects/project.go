package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformPaper         Platform = "MINECRAFT_PAPER"
	PlatformSpigot        Platform = "MINECRAFT_SPIGOT"
	PlatformFabric        Platform = "MINECRAFT_FABRIC"
	PlatformForge         Platform = "MINECRAFT_FORGE"
	PlatformDiscordNode   Platform = "DISCORD_NODE"
	PlatformDiscordPython Platform = "DISCORD_PYTHON"
)

type Project struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Description   string    `gorm:"column:description" json:"description,omitempty"`
	Platform      Platform  `gorm:"column:platform;not null;index" json:"platform"`
	Language      string    `gorm:"column:language;not null" json:"language"`
	APIVersion    string    `gorm:"column:api_version" json:"api_version,omitempty"`
	PackageName   string    `gorm:"column:package_name" json:"package_name,omitempty"`
	CommandPrefix string    `gorm:"column:command_prefix" json:"command_prefix,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Project) TableName() string { return "project" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
