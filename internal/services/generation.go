package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/llm"
	"github.com/MacMoment/coding/internal/platform/logger"
)

const (
	JobTypeCodeGenerate = "code_generate"
	EntityGenerationJob = "generation_job"

	SubmitStatusQueued  = "queued"
	SubmitMessageQueued = "Generation job queued"
)

type SubmitRequest struct {
	Prompt  string               `json:"prompt" binding:"required"`
	Model   string               `json:"model" binding:"required"`
	Context *types.SubmitContext `json:"context,omitempty"`
}

type SubmitResult struct {
	JobID   uuid.UUID `json:"jobId"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}

type DocUsageView struct {
	DocID     uuid.UUID `json:"docId"`
	Relevance float64   `json:"relevance"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	Version   string    `json:"version,omitempty"`
}

type JobView struct {
	Job      *types.GenerationJob `json:"job"`
	DocsUsed []DocUsageView       `json:"docsUsed"`
}

type GenerationService interface {
	// Submit records a PENDING job and enqueues it. It never waits on generation.
	Submit(ctx context.Context, userID, projectID uuid.UUID, req SubmitRequest) (*SubmitResult, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobView, error)
	ListJobs(ctx context.Context, userID, projectID uuid.UUID, limit int) ([]*types.GenerationJob, error)
	ListFiles(ctx context.Context, userID, projectID uuid.UUID) ([]*types.ProjectFile, error)
}

type generationService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	projects repos.ProjectRepo
	files    repos.ProjectFileRepo
	jobsRepo repos.GenerationJobRepo
	usages   repos.DocUsageRepo
	docs     repos.DocEntryRepo
	queue    JobService
}

func NewGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	projects repos.ProjectRepo,
	files repos.ProjectFileRepo,
	jobsRepo repos.GenerationJobRepo,
	usages repos.DocUsageRepo,
	docs repos.DocEntryRepo,
	queue JobService,
) GenerationService {
	return &generationService{
		db:       db,
		log:      baseLog.With("service", "GenerationService"),
		users:    users,
		projects: projects,
		files:    files,
		jobsRepo: jobsRepo,
		usages:   usages,
		docs:     docs,
		queue:    queue,
	}
}

func (s *generationService) Submit(ctx context.Context, userID, projectID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	model := strings.TrimSpace(req.Model)
	if prompt == "" || model == "" {
		return nil, fmt.Errorf("prompt and model are required: %w", ErrInvalidArgument)
	}

	dbc := dbctx.New(ctx)
	if _, err := s.ownedProject(dbc, userID, projectID); err != nil {
		return nil, err
	}

	// Unknown keys are left for the gateway to reject so they surface on the job.
	if _, known := llm.Lookup(model); known {
		u, err := s.users.GetByID(dbc, userID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrUserNotFound
		}
		if !PlanFor(u.SubscriptionTier).Allows(model) {
			return nil, fmt.Errorf("%w: %s on %s", ErrModelNotAllowed, model, u.SubscriptionTier)
		}
	}

	submitCtx := types.SubmitContext{}
	if req.Context != nil {
		submitCtx = *req.Context
	}
	rawCtx, err := json.Marshal(submitCtx)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}

	job := &types.GenerationJob{
		UserID:    userID,
		ProjectID: projectID,
		Prompt:    prompt,
		Model:     model,
		Provider:  string(llm.ProviderFor(model)),
		Context:   datatypes.JSON(rawCtx),
		Status:    types.GenerationPending,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.jobsRepo.Create(inner, job); err != nil {
			return fmt.Errorf("create generation job: %w", err)
		}
		_, err := s.queue.Enqueue(inner, userID, JobTypeCodeGenerate, EntityGenerationJob, &job.ID, map[string]any{
			"generation_job_id": job.ID.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("generation job queued", "job_id", job.ID, "project_id", projectID, "model", model, "user_id", userID)
	return &SubmitResult{JobID: job.ID, Status: SubmitStatusQueued, Message: SubmitMessageQueued}, nil
}

func (s *generationService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobView, error) {
	dbc := dbctx.New(ctx)
	job, err := s.jobsRepo.GetByID(dbc, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.UserID != userID {
		return nil, ErrForbidden
	}

	usages, err := s.usages.ListByJob(dbc, jobID)
	if err != nil {
		return nil, err
	}
	view := &JobView{Job: job, DocsUsed: make([]DocUsageView, 0, len(usages))}
	if len(usages) == 0 {
		return view, nil
	}
	ids := make([]uuid.UUID, 0, len(usages))
	for _, u := range usages {
		ids = append(ids, u.DocID)
	}
	entries, err := s.docs.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.DocEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	for _, u := range usages {
		v := DocUsageView{DocID: u.DocID, Relevance: u.Relevance}
		if e := byID[u.DocID]; e != nil {
			v.Title, v.Platform, v.Version = e.Title, e.Platform, e.Version
		}
		view.DocsUsed = append(view.DocsUsed, v)
	}
	return view, nil
}

func (s *generationService) ListJobs(ctx context.Context, userID, projectID uuid.UUID, limit int) ([]*types.GenerationJob, error) {
	dbc := dbctx.New(ctx)
	if _, err := s.ownedProject(dbc, userID, projectID); err != nil {
		return nil, err
	}
	return s.jobsRepo.ListByProject(dbc, projectID, limit)
}

func (s *generationService) ListFiles(ctx context.Context, userID, projectID uuid.UUID) ([]*types.ProjectFile, error) {
	dbc := dbctx.New(ctx)
	if _, err := s.ownedProject(dbc, userID, projectID); err != nil {
		return nil, err
	}
	return s.files.List(dbc, projectID)
}

func (s *generationService) ownedProject(dbc dbctx.Context, userID, projectID uuid.UUID) (*types.Project, error) {
	p, err := s.projects.GetByID(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}
