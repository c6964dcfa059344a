package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/data/repos"
	"github.com/MacMoment/coding/internal/data/repos/testutil"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
	httpH "github.com/MacMoment/coding/internal/http/handlers"
	httpMW "github.com/MacMoment/coding/internal/http/middleware"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/realtime"
	"github.com/MacMoment/coding/internal/services"
)

type apiHarness struct {
	engine   *gin.Engine
	auth     services.AuthService
	ledger   services.LedgerService
	docs     services.DocsService
	users    repos.UserRepo
	projects repos.ProjectRepo
	files    repos.ProjectFileRepo
	runs     repos.JobRunRepo
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	h := &apiHarness{
		auth:     services.NewAuthService(log, "test-secret"),
		users:    repos.NewUserRepo(db, log),
		projects: repos.NewProjectRepo(db, log),
		files:    repos.NewProjectFileRepo(db, log),
		runs:     repos.NewJobRunRepo(db, log),
	}
	h.ledger = services.NewLedgerService(db, log, h.users, repos.NewTokenTransactionRepo(db, log))
	h.docs = services.NewDocsService(log, repos.NewDocEntryRepo(db, log))
	notify := services.NewJobNotifier(log, nil)
	generations := services.NewGenerationService(db, log,
		h.users, h.projects, h.files,
		repos.NewGenerationJobRepo(db, log),
		repos.NewDocUsageRepo(db, log),
		repos.NewDocEntryRepo(db, log),
		services.NewJobService(log, h.runs, notify),
	)
	h.engine = NewRouter(RouterConfig{
		Log:               log,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, h.auth),
		GenerationHandler: httpH.NewGenerationHandler(generations),
		FileHandler:       httpH.NewFileHandler(generations),
		TokenHandler:      httpH.NewTokenHandler(h.ledger),
		DocsHandler:       httpH.NewDocsHandler(h.docs),
		RealtimeHandler:   httpH.NewRealtimeHandler(log, realtime.NewHub(log)),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
	return h
}

func (h *apiHarness) seedUser(t *testing.T, tier types.Tier, balance int) (*types.User, string) {
	t.Helper()
	dbc := dbctx.New(context.Background())
	created, err := h.users.Create(dbc, []*types.User{{Email: uuid.NewString() + "@example.com", SubscriptionTier: tier}})
	require.NoError(t, err)
	u := created[0]
	if balance > 0 {
		_, err := h.ledger.Credit(dbc, services.Entry{UserID: u.ID, Amount: balance, Type: billing.TxWelcomeBonus, Description: "Welcome bonus"})
		require.NoError(t, err)
	}
	token, err := h.auth.IssueToken(u.ID, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (h *apiHarness) seedProject(t *testing.T, owner *types.User) *types.Project {
	t.Helper()
	p := &types.Project{UserID: owner.ID, Name: "demo", Platform: "MINECRAFT_PAPER", Language: "JAVA"}
	require.NoError(t, h.projects.Create(dbctx.New(context.Background()), p))
	return p
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealthcheckIsPublic(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=%d got=%d", http.StatusOK, rec.Code)
	}
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(httpMW.HeaderRequestID))
}

func TestAPIRequiresToken(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, http.MethodGet, "/api/tokens/balance", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = h.do(t, http.MethodGet, "/api/tokens/balance", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitAndPollGeneration(t *testing.T) {
	h := newAPIHarness(t)
	u, token := h.seedUser(t, types.TierPro, 100)
	p := h.seedProject(t, u)

	rec := h.do(t, http.MethodPost, "/api/projects/"+p.ID.String()+"/generate", token, map[string]any{
		"prompt":  "Add a /heal command",
		"model":   "GPT_5",
		"context": map[string]any{"packageName": "dev.forge.demo"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "queued", body["status"])
	assert.Equal(t, "Generation job queued", body["message"])
	jobID, _ := body["jobId"].(string)
	require.NotEmpty(t, jobID)

	rec = h.do(t, http.MethodGet, "/api/projects/"+p.ID.String()+"/generations/"+jobID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode(t, rec)
	job, _ := view["job"].(map[string]any)
	assert.Equal(t, "PENDING", job["status"])
	assert.Equal(t, "OPENAI", job["provider"])
	assert.Equal(t, []any{}, view["docsUsed"])

	// Same job under another project id is hidden.
	rec = h.do(t, http.MethodGet, "/api/projects/"+uuid.NewString()+"/generations/"+jobID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job_not_found", errorCode(t, rec))

	rec = h.do(t, http.MethodGet, "/api/projects/"+p.ID.String()+"/generations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, _ := decode(t, rec)["jobs"].([]any)
	assert.Len(t, list, 1)
}

func TestSubmitRejections(t *testing.T) {
	h := newAPIHarness(t)
	owner, _ := h.seedUser(t, types.TierPro, 100)
	_, otherToken := h.seedUser(t, types.TierPro, 100)
	free, freeToken := h.seedUser(t, types.TierFree, 100)
	p := h.seedProject(t, owner)
	freeProject := h.seedProject(t, free)

	cases := []struct {
		name   string
		path   string
		token  string
		body   map[string]any
		status int
		code   string
	}{
		{"not owner", "/api/projects/" + p.ID.String() + "/generate", otherToken, map[string]any{"prompt": "x", "model": "GPT_5"}, http.StatusForbidden, "forbidden"},
		{"missing project", "/api/projects/" + uuid.NewString() + "/generate", otherToken, map[string]any{"prompt": "x", "model": "GPT_5"}, http.StatusNotFound, "project_not_found"},
		{"bad project id", "/api/projects/nope/generate", otherToken, map[string]any{"prompt": "x", "model": "GPT_5"}, http.StatusBadRequest, "invalid_project_id"},
		{"missing prompt", "/api/projects/" + p.ID.String() + "/generate", otherToken, map[string]any{"model": "GPT_5"}, http.StatusBadRequest, "invalid_request"},
		{"blank prompt", "/api/projects/" + freeProject.ID.String() + "/generate", freeToken, map[string]any{"prompt": "   ", "model": "GPT_5"}, http.StatusBadRequest, "invalid_argument"},
		{"plan", "/api/projects/" + freeProject.ID.String() + "/generate", freeToken, map[string]any{"prompt": "x", "model": "CLAUDE_OPUS_4_5"}, http.StatusForbidden, "model_not_allowed"},
	}
	for _, tc := range cases {
		rec := h.do(t, http.MethodPost, tc.path, tc.token, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: want=%d got=%d body=%s", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if got := errorCode(t, rec); got != tc.code {
			t.Fatalf("%s: code want=%s got=%s", tc.name, tc.code, got)
		}
	}
}

func TestListFiles(t *testing.T) {
	h := newAPIHarness(t)
	u, token := h.seedUser(t, types.TierFree, 0)
	_, otherToken := h.seedUser(t, types.TierFree, 0)
	p := h.seedProject(t, u)
	require.NoError(t, h.files.Upsert(dbctx.New(context.Background()), p.ID, "src/Main.java", "class Main {}"))

	rec := h.do(t, http.MethodGet, "/api/projects/"+p.ID.String()+"/files", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	files, _ := decode(t, rec)["files"].([]any)
	require.Len(t, files, 1)
	f, _ := files[0].(map[string]any)
	assert.Equal(t, "src/Main.java", f["path"])
	assert.Equal(t, "class Main {}", f["content"])
	assert.Equal(t, false, f["isDirectory"])

	rec = h.do(t, http.MethodGet, "/api/projects/"+p.ID.String()+"/files", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTokenEndpoints(t *testing.T) {
	h := newAPIHarness(t)
	_, token := h.seedUser(t, types.TierPro, 100)

	rec := h.do(t, http.MethodGet, "/api/tokens/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(100), body["balance"])
	assert.Equal(t, "PRO", body["tier"])

	rec = h.do(t, http.MethodPost, "/api/tokens/daily-claim", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claim := decode(t, rec)
	assert.Equal(t, float64(50), claim["tokensAdded"])
	assert.Equal(t, float64(150), claim["newBalance"])
	assert.NotEmpty(t, claim["nextClaimAt"])

	rec = h.do(t, http.MethodPost, "/api/tokens/daily-claim", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "daily_already_claimed", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = h.do(t, http.MethodGet, "/api/tokens/history?page=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, float64(2), page["total"])
	assert.Equal(t, float64(1), page["limit"])
	txs, _ := page["transactions"].([]any)
	assert.Len(t, txs, 1)
}

func TestTokenAudit(t *testing.T) {
	h := newAPIHarness(t)
	u, token := h.seedUser(t, types.TierFree, 100)
	_, err := h.ledger.Debit(dbctx.New(context.Background()), services.Entry{UserID: u.ID, Amount: 30, Type: billing.TxGenerationCost, Description: "AI generation (GPT_5)"})
	require.NoError(t, err)

	rec := h.do(t, http.MethodGet, "/api/tokens/audit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(70), body["balance"])
	assert.Equal(t, float64(70), body["ledgerSum"])
	assert.Equal(t, true, body["consistent"])

	rec = h.do(t, http.MethodGet, "/api/tokens/audit", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocsStats(t *testing.T) {
	h := newAPIHarness(t)
	_, token := h.seedUser(t, types.TierFree, 0)

	rec := h.do(t, http.MethodGet, "/api/docs/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, map[string]any{}, body["stats"])
	assert.Equal(t, float64(0), body["total"])

	_, err := h.docs.Import(context.Background(), []services.ImportEntry{
		{Title: "Scheduler", Platform: "MINECRAFT_PAPER", Content: "Use the Bukkit scheduler"},
		{Title: "Events", Platform: "MINECRAFT_PAPER", Content: "Listen with @EventHandler"},
		{Title: "Slash commands", Platform: "DISCORD_NODE", Content: "Register commands"},
	})
	require.NoError(t, err)

	rec = h.do(t, http.MethodGet, "/api/docs/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, map[string]any{"MINECRAFT_PAPER": float64(2), "DISCORD_NODE": float64(1)}, body["stats"])
	assert.Equal(t, float64(3), body["total"])

	rec = h.do(t, http.MethodGet, "/api/docs/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
