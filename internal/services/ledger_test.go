package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
)

func TestLedgerDebitAndCredit(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 100)

	bal, err := f.ledger.Debit(f.dbc(), Entry{UserID: u.ID, Amount: 30, Type: billing.TxGenerationCost, Description: "AI generation (GPT_5)"})
	require.NoError(t, err)
	if bal != 70 {
		t.Fatalf("balance after debit: want=70 got=%d", bal)
	}

	bal, err = f.ledger.Credit(f.dbc(), Entry{UserID: u.ID, Amount: 5, Type: billing.TxAdminAdjustment, Description: "refund"})
	require.NoError(t, err)
	if bal != 75 {
		t.Fatalf("balance after credit: want=75 got=%d", bal)
	}

	audit, err := f.ledger.Audit(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
	assert.Equal(t, 75, audit.LedgerSum)

	page, err := f.ledger.History(context.Background(), u.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultHistoryLimit, page.Limit)

	amounts := map[int]bool{}
	for _, tx := range page.Transactions {
		amounts[tx.Amount] = true
	}
	assert.Equal(t, map[int]bool{100: true, -30: true, 5: true}, amounts)
}

func TestLedgerDebitInsufficientLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 10)

	_, err := f.ledger.Debit(f.dbc(), Entry{UserID: u.ID, Amount: 11, Type: billing.TxGenerationCost, Description: "too much"})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("debit: want=ErrInsufficientBalance got=%v", err)
	}

	bal, err := f.ledger.GetBalance(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, bal)

	n, err := f.txs.CountByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLedgerConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 15)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
		other    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Debit(f.dbc(), Entry{UserID: u.ID, Amount: 10, Type: billing.TxGenerationCost, Description: "AI generation (GPT_5)"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientBalance):
				fail++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	if ok != 1 || fail != workers-1 {
		t.Fatalf("debits: want ok=1 fail=%d got ok=%d fail=%d", workers-1, ok, fail)
	}

	bal, err := f.ledger.GetBalance(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, bal)

	n, err := f.txs.CountByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	audit, err := f.ledger.Audit(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
	assert.Equal(t, 5, audit.LedgerSum)
}

func TestLedgerRejectsBadEntries(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 10)

	_, err := f.ledger.Debit(f.dbc(), Entry{UserID: u.ID, Amount: -1, Type: billing.TxGenerationCost})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.ledger.Credit(f.dbc(), Entry{UserID: uuid.Nil, Amount: 1, Type: billing.TxDailyClaim})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.ledger.Credit(f.dbc(), Entry{UserID: uuid.New(), Amount: 1, Type: billing.TxDailyClaim})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.ledger.Debit(f.dbc(), Entry{UserID: uuid.New(), Amount: 1, Type: billing.TxGenerationCost})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLedgerZeroAmountIsNoop(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 42)

	bal, err := f.ledger.Debit(f.dbc(), Entry{UserID: u.ID, Amount: 0, Type: billing.TxGenerationCost})
	require.NoError(t, err)
	assert.Equal(t, 42, bal)

	n, err := f.txs.CountByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLedgerDebitRollsBackWithCaller(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 50)
	boom := errors.New("boom")

	err := f.db.Transaction(func(tx *gorm.DB) error {
		bal, err := f.ledger.Debit(f.dbc().WithTx(tx), Entry{UserID: u.ID, Amount: 20, Type: billing.TxGenerationCost, Description: "x"})
		if err != nil {
			return err
		}
		if bal != 30 {
			t.Fatalf("balance inside tx: want=30 got=%d", bal)
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	bal, err := f.ledger.GetBalance(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, bal)

	audit, err := f.ledger.Audit(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
}

func TestLedgerClaimDailyCooldown(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierPro, 0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := f.ledger.ClaimDaily(context.Background(), u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 50, res.TokensAdded)
	assert.Equal(t, 50, res.NewBalance)
	assert.True(t, res.NextClaimAt.Equal(now.Add(24*time.Hour)))

	_, err = f.ledger.ClaimDaily(context.Background(), u.ID, now.Add(time.Hour))
	if !errors.Is(err, ErrDailyAlreadyClaimed) {
		t.Fatalf("second claim: want=ErrDailyAlreadyClaimed got=%v", err)
	}
	var cooldown *ClaimCooldownError
	require.True(t, errors.As(err, &cooldown))
	assert.True(t, cooldown.NextClaimAt.Equal(now.Add(24*time.Hour)), "next claim at %v", cooldown.NextClaimAt)

	res, err = f.ledger.ClaimDaily(context.Background(), u.ID, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 100, res.NewBalance)

	txs, err := f.txs.ListByUser(f.dbc(), u.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, billing.TxDailyClaim, tx.Type)
		assert.Equal(t, "Daily token claim (PRO tier)", tx.Description)
	}
}

func TestLedgerHistoryPaging(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, types.TierFree, 5)
	for i := 0; i < 4; i++ {
		_, err := f.ledger.Credit(f.dbc(), Entry{UserID: u.ID, Amount: 1, Type: billing.TxAdminAdjustment, Description: "bump"})
		require.NoError(t, err)
	}

	page, err := f.ledger.History(context.Background(), u.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(5), page.Total)

	page, err = f.ledger.History(context.Background(), u.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 1)

	page, err = f.ledger.History(context.Background(), u.ID, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxHistoryLimit, page.Limit)
}
