package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos"
	"github.com/MacMoment/coding/internal/data/repos/testutil"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime/bus"
)

type fixture struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	txs      repos.TokenTransactionRepo
	projects repos.ProjectRepo
	files    repos.ProjectFileRepo
	docs     repos.DocEntryRepo
	genJobs  repos.GenerationJobRepo
	usages   repos.DocUsageRepo
	runs     repos.JobRunRepo
	ledger   LedgerService
	bus      bus.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:       db,
		log:      log,
		users:    repos.NewUserRepo(db, log),
		txs:      repos.NewTokenTransactionRepo(db, log),
		projects: repos.NewProjectRepo(db, log),
		files:    repos.NewProjectFileRepo(db, log),
		docs:     repos.NewDocEntryRepo(db, log),
		genJobs:  repos.NewGenerationJobRepo(db, log),
		usages:   repos.NewDocUsageRepo(db, log),
		runs:     repos.NewJobRunRepo(db, log),
		bus:      bus.NewMemoryBus(),
	}
	f.ledger = NewLedgerService(db, log, f.users, f.txs)
	return f
}

func (f *fixture) dbc() dbctx.Context {
	return dbctx.New(context.Background())
}

// seedUser creates a user whose opening balance is a ledger credit.
func (f *fixture) seedUser(t *testing.T, tier types.Tier, balance int) *types.User {
	t.Helper()
	created, err := f.users.Create(f.dbc(), []*types.User{{
		Email:            t.Name() + "-" + string(tier) + "@example.com",
		SubscriptionTier: tier,
	}})
	require.NoError(t, err)
	u := created[0]
	if balance > 0 {
		_, err := f.ledger.Credit(f.dbc(), Entry{
			UserID:      u.ID,
			Amount:      balance,
			Type:        billing.TxWelcomeBonus,
			Description: "Welcome bonus",
		})
		require.NoError(t, err)
	}
	return u
}

func (f *fixture) seedProject(t *testing.T, owner *types.User, platform types.Platform) *types.Project {
	t.Helper()
	p := &types.Project{UserID: owner.ID, Name: "demo", Platform: platform, Language: "JAVA"}
	require.NoError(t, f.projects.Create(f.dbc(), p))
	return p
}
