package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxWelcomeBonus       TransactionType = "WELCOME_BONUS"
	TxReferralBonus      TransactionType = "REFERRAL_BONUS"
	TxDailyClaim         TransactionType = "DAILY_CLAIM"
	TxGenerationCost     TransactionType = "GENERATION_COST"
	TxCheckpointCost     TransactionType = "CHECKPOINT_COST"
	TxDeployCost         TransactionType = "DEPLOY_COST"
	TxAdminAdjustment    TransactionType = "ADMIN_ADJUSTMENT"
	TxSubscriptionRefill TransactionType = "SUBSCRIPTION_REFILL"
	TxTokenPackPurchase  TransactionType = "TOKEN_PACK_PURCHASE"
)

// TokenTransaction is one append-only ledger row. Amount is signed: credits are
// positive, debits negative. Rows are never updated or deleted.
type TokenTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_token_tx_user_created,priority:1" json:"user_id"`
	Amount      int             `gorm:"column:amount;not null" json:"amount"`
	Type        TransactionType `gorm:"column:type;not null;index" json:"type"`
	Description string          `gorm:"column:description;not null" json:"description"`
	Reference   *string         `gorm:"column:reference;index" json:"reference,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_token_tx_user_created,priority:2" json:"created_at"`
}

func (TokenTransaction) TableName() string { return "token_transaction" }

func (t *TokenTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
