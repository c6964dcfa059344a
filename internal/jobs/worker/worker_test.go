package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/data/repos"
	"github.com/MacMoment/coding/internal/data/repos/testutil"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/jobs"
	"github.com/MacMoment/coding/internal/jobs/runtime"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/services"
)

type funcHandler struct {
	jobType string
	run     func(jc *runtime.Context) error
}

func (h funcHandler) Type() string { return h.jobType }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

func setup(t *testing.T, handlers ...runtime.Handler) (*Worker, repos.JobRunRepo, services.JobService) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewJobRunRepo(db, log)
	notify := services.NewJobNotifier(log, nil)
	registry := runtime.NewRegistry()
	for _, h := range handlers {
		require.NoError(t, registry.Register(h))
	}
	w := NewWorker(db, log, repo, registry, notify, Config{Concurrency: 1, MaxAttempts: 2, RetryDelay: time.Hour, StaleRunning: time.Hour})
	return w, repo, services.NewJobService(log, repo, notify)
}

func enqueue(t *testing.T, q services.JobService, jobType string, payload map[string]any) *types.JobRun {
	t.Helper()
	job, err := q.Enqueue(dbctx.New(context.Background()), uuid.New(), jobType, "thing", nil, payload)
	require.NoError(t, err)
	return job
}

func TestRunOnceSucceeds(t *testing.T) {
	var seen string
	w, repo, q := setup(t, funcHandler{jobType: "echo", run: func(jc *runtime.Context) error {
		seen = payloadString(jc.Payload(), "word")
		jc.Progress("work", 50, "halfway")
		jc.Succeed("done", map[string]any{"word": seen})
		return nil
	}})
	job := enqueue(t, q, "echo", map[string]any{"word": "hi"})

	ran, err := w.RunOnce(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, "hi", seen)

	got, err := repo.GetByID(dbctx.New(context.Background()), job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.RunStatusSucceeded, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 1, got.Attempts)
	assert.JSONEq(t, `{"word":"hi"}`, string(got.Result))

	ran, err = w.RunOnce(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestRunOnceHandlerErrorAndPanic(t *testing.T) {
	w, repo, q := setup(t,
		funcHandler{jobType: "broken", run: func(jc *runtime.Context) error { return errors.New("nope") }},
		funcHandler{jobType: "explodes", run: func(jc *runtime.Context) error { panic("kaboom") }},
	)
	broken := enqueue(t, q, "broken", nil)
	explodes := enqueue(t, q, "explodes", nil)
	orphan := enqueue(t, q, "unregistered", nil)

	for i := 0; i < 3; i++ {
		ran, err := w.RunOnce(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, ran)
	}

	dbc := dbctx.New(context.Background())
	cases := map[uuid.UUID]string{
		broken.ID:   "nope",
		explodes.ID: "panic: kaboom",
		orphan.ID:   "no handler registered for job_type=unregistered",
	}
	for id, wantErr := range cases {
		got, err := repo.GetByID(dbc, id)
		require.NoError(t, err)
		assert.Equal(t, jobs.RunStatusFailed, got.Status)
		assert.Equal(t, wantErr, got.Error)
	}

	// Failed rows wait out the retry delay.
	ran, err := w.RunOnce(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestSucceededRunIsNotRewritten(t *testing.T) {
	w, repo, q := setup(t, funcHandler{jobType: "twice", run: func(jc *runtime.Context) error {
		jc.Succeed("done", nil)
		jc.Fail("late", errors.New("should not land"))
		return nil
	}})
	job := enqueue(t, q, "twice", nil)

	_, err := w.RunOnce(context.Background(), 1)
	require.NoError(t, err)

	got, err := repo.GetByID(dbctx.New(context.Background()), job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.RunStatusSucceeded, got.Status)
	assert.Empty(t, got.Error)
}

func TestRunStopsOnCancel(t *testing.T) {
	w, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}

func payloadString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
