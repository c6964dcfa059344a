package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

const (
	DailyClaimCooldown = 24 * time.Hour

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Entry describes one balance change. Amount is always non-negative; the
// direction comes from Debit or Credit.
type Entry struct {
	UserID      uuid.UUID
	Amount      int
	Type        types.TransactionType
	Description string
	Reference   *string
}

type BalanceSummary struct {
	Balance int        `json:"balance"`
	Tier    types.Tier `json:"tier"`
}

type HistoryPage struct {
	Transactions []*types.TokenTransaction `json:"transactions"`
	Page         int                       `json:"page"`
	Limit        int                       `json:"limit"`
	Total        int64                     `json:"total"`
}

type DailyClaimResult struct {
	TokensAdded int       `json:"tokensAdded"`
	NewBalance  int       `json:"newBalance"`
	NextClaimAt time.Time `json:"nextClaimAt"`
}

type AuditResult struct {
	Balance    int  `json:"balance"`
	LedgerSum  int  `json:"ledgerSum"`
	Consistent bool `json:"consistent"`
}

// LedgerService owns every write to token_balance. Each balance change and its
// transaction row are written in one DB transaction, so the sum of a user's
// transactions always equals their balance.
type LedgerService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	Summary(ctx context.Context, userID uuid.UUID) (*BalanceSummary, error)
	// Debit joins dbc.Tx when set, so the charge commits or rolls back with the caller.
	Debit(dbc dbctx.Context, e Entry) (int, error)
	Credit(dbc dbctx.Context, e Entry) (int, error)
	History(ctx context.Context, userID uuid.UUID, page, limit int) (*HistoryPage, error)
	ClaimDaily(ctx context.Context, userID uuid.UUID, now time.Time) (*DailyClaimResult, error)
	Audit(ctx context.Context, userID uuid.UUID) (*AuditResult, error)
}

type ledgerService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
	txs   repos.TokenTransactionRepo
}

func NewLedgerService(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo, txs repos.TokenTransactionRepo) LedgerService {
	return &ledgerService{
		db:    db,
		log:   baseLog.With("service", "LedgerService"),
		users: users,
		txs:   txs,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	u, err := s.users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, ErrUserNotFound
	}
	return u.TokenBalance, nil
}

func (s *ledgerService) Summary(ctx context.Context, userID uuid.UUID) (*BalanceSummary, error) {
	u, err := s.users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return &BalanceSummary{Balance: u.TokenBalance, Tier: u.SubscriptionTier}, nil
}

func (s *ledgerService) Debit(dbc dbctx.Context, e Entry) (int, error) {
	return s.apply(dbc, e, -1)
}

func (s *ledgerService) Credit(dbc dbctx.Context, e Entry) (int, error) {
	return s.apply(dbc, e, 1)
}

func (s *ledgerService) apply(dbc dbctx.Context, e Entry, sign int) (int, error) {
	if e.UserID == uuid.Nil || e.Type == "" {
		return 0, ErrInvalidArgument
	}
	if e.Amount < 0 {
		return 0, ErrInvalidAmount
	}

	var balance int
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbc.WithTx(tx)
		if e.Amount == 0 {
			u, err := s.users.GetByID(inner, e.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return ErrUserNotFound
			}
			balance = u.TokenBalance
			return nil
		}

		delta := sign * e.Amount
		ok, err := s.users.AdjustBalance(inner, e.UserID, delta)
		if err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		if !ok {
			u, err := s.users.GetByID(inner, e.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return ErrUserNotFound
			}
			return ErrInsufficientBalance
		}

		if err := s.txs.Create(inner, &types.TokenTransaction{
			UserID:      e.UserID,
			Amount:      delta,
			Type:        e.Type,
			Description: e.Description,
			Reference:   e.Reference,
		}); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		u, err := s.users.GetByID(inner, e.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}
		balance = u.TokenBalance
		return nil
	})
	if err != nil {
		return 0, err
	}
	observability.Current().ObserveLedger(string(e.Type), sign*e.Amount)
	return balance, nil
}

func (s *ledgerService) History(ctx context.Context, userID uuid.UUID, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	dbc := dbctx.New(ctx)
	rows, err := s.txs.ListByUser(dbc, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.txs.CountByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Transactions: rows, Page: page, Limit: limit, Total: total}, nil
}

func (s *ledgerService) ClaimDaily(ctx context.Context, userID uuid.UUID, now time.Time) (*DailyClaimResult, error) {
	now = now.UTC()
	var out *DailyClaimResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := s.users.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}

		claimed, err := s.users.MarkDailyClaim(dbc, userID, now, now.Add(-DailyClaimCooldown))
		if err != nil {
			return err
		}
		if !claimed {
			next := now.Add(DailyClaimCooldown)
			if u.LastDailyClaim != nil {
				next = u.LastDailyClaim.UTC().Add(DailyClaimCooldown)
			}
			return &ClaimCooldownError{NextClaimAt: next}
		}

		plan := PlanFor(u.SubscriptionTier)
		balance, err := s.Credit(dbc, Entry{
			UserID:      userID,
			Amount:      plan.DailyClaimTokens,
			Type:        billing.TxDailyClaim,
			Description: fmt.Sprintf("Daily token claim (%s tier)", plan.Tier),
		})
		if err != nil {
			return err
		}
		out = &DailyClaimResult{
			TokensAdded: plan.DailyClaimTokens,
			NewBalance:  balance,
			NextClaimAt: now.Add(DailyClaimCooldown),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("daily tokens claimed", "user_id", userID, "tokens", out.TokensAdded)
	return out, nil
}

func (s *ledgerService) Audit(ctx context.Context, userID uuid.UUID) (*AuditResult, error) {
	dbc := dbctx.New(ctx)
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	sum, err := s.txs.SumByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	res := &AuditResult{Balance: u.TokenBalance, LedgerSum: sum, Consistent: sum == u.TokenBalance}
	if !res.Consistent {
		s.log.Warn("ledger drift detected", "user_id", userID, "balance", u.TokenBalance, "ledger_sum", sum)
	}
	return res, nil
}
