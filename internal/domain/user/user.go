package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tier string

const (
	TierFree    Tier = "FREE"
	TierStarter Tier = "STARTER"
	TierPro     Tier = "PRO"
	TierElite   Tier = "ELITE"
)

// User holds the cached token balance. The authoritative record is the
// token_transaction ledger; every balance write goes through the ledger service.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	DisplayName      string     `gorm:"column:display_name" json:"display_name"`
	SubscriptionTier Tier       `gorm:"column:subscription_tier;not null" json:"subscription_tier"`
	TokenBalance     int        `gorm:"column:token_balance;not null" json:"token_balance"`
	LastDailyClaim   *time.Time `gorm:"column:last_daily_claim" json:"last_daily_claim,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = TierFree
	}
	return nil
}
