package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/MacMoment/coding/internal/data/repos/testutil"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
)

func TestJobRunClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	now := time.Now()
	owner := uuid.New()
	policy := ClaimPolicy{MaxAttempts: 3, RetryDelay: time.Minute, StaleRunning: 30 * time.Minute}

	exhausted := &types.JobRun{
		OwnerUserID: owner, JobType: "test_job", Status: "failed", Stage: "failed",
		Attempts: 3, LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		Payload: datatypes.JSON([]byte("{}")), CreatedAt: now.Add(-4 * time.Hour), UpdatedAt: now,
	}
	freshRunning := &types.JobRun{
		OwnerUserID: owner, JobType: "test_job", Status: "running", Stage: "running",
		Attempts: 1, HeartbeatAt: ptrTime(now),
		Payload: datatypes.JSON([]byte("{}")), CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now,
	}
	queued := &types.JobRun{
		OwnerUserID: owner, JobType: "test_job", Status: "queued", Stage: "queued",
		Payload: datatypes.JSON([]byte("{}")), CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now,
	}
	retryable := &types.JobRun{
		OwnerUserID: owner, JobType: "test_job", Status: "failed", Stage: "failed",
		Attempts: 1, LastErrorAt: ptrTime(now.Add(-time.Hour)),
		Payload: datatypes.JSON([]byte("{}")), CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
	}
	if _, err := repo.Create(dbc, []*types.JobRun{exhausted, freshRunning, queued, retryable}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := repo.ClaimNextRunnable(dbc, policy)
	if err != nil || first == nil {
		t.Fatalf("ClaimNextRunnable #1: err=%v job=%v", err, first)
	}
	if first.ID != queued.ID {
		t.Fatalf("claim #1: want=%v got=%v", queued.ID, first.ID)
	}
	if first.Status != "running" || first.Attempts != 1 {
		t.Fatalf("claim #1 state: status=%s attempts=%d", first.Status, first.Attempts)
	}

	second, err := repo.ClaimNextRunnable(dbc, policy)
	if err != nil || second == nil {
		t.Fatalf("ClaimNextRunnable #2: err=%v job=%v", err, second)
	}
	if second.ID != retryable.ID {
		t.Fatalf("claim #2: want=%v got=%v", retryable.ID, second.ID)
	}

	none, err := repo.ClaimNextRunnable(dbc, policy)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #3: %v", err)
	}
	if none != nil {
		t.Fatalf("claim #3: want nil got=%v", none.ID)
	}

	stored, err := repo.GetByID(dbc, retryable.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: err=%v", err)
	}
	if stored.Attempts != 2 {
		t.Fatalf("attempts: want=2 got=%d", stored.Attempts)
	}
}

func TestJobRunUpdateFieldsUnlessStatus(t *testing.T) {
	db := testutil.DB(t)
	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	job := &types.JobRun{OwnerUserID: uuid.New(), JobType: "test_job", Status: "succeeded", Stage: "done"}
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := repo.UpdateFieldsUnlessStatus(dbc, job.ID, []string{"succeeded"}, map[string]interface{}{"stage": "rewritten"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if ok {
		t.Fatalf("UpdateFieldsUnlessStatus: expected guarded update to be rejected")
	}

	counts, err := repo.CountByStatus(dbc)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts["succeeded"] != 1 {
		t.Fatalf("CountByStatus: want succeeded=1 got=%v", counts)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
