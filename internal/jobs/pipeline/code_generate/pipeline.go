package code_generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
	jobrt "github.com/MacMoment/coding/internal/jobs/runtime"
	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/llm"
	"github.com/MacMoment/coding/internal/prompts"
	"github.com/MacMoment/coding/internal/services"
)

// errNotProcessing means the row left PROCESSING under us; the commit is rolled back.
var errNotProcessing = errors.New("generation job is no longer processing")

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	jobID, ok := jc.PayloadUUID("generation_job_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing generation_job_id"))
		return nil
	}

	dbc := dbctx.New(jc.Ctx)
	job, err := p.jobs.GetByID(dbc, jobID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if job == nil {
		jc.Fail("load", fmt.Errorf("generation job %s not found", jobID))
		return nil
	}

	switch job.Status {
	case types.GenerationCompleted, types.GenerationFailed:
		jc.Succeed("done", result(job))
		return nil
	case types.GenerationProcessing:
		// A previous delivery died mid-flight. Nothing was charged because the
		// debit commits together with COMPLETED.
		p.log.Warn("generation found in PROCESSING on claim", "generation_job_id", job.ID, "attempt", jc.Job.Attempts)
		p.markFailed(jc.Ctx, job, InterruptedMessage)
		jc.Succeed("done", result(job))
		return nil
	}

	started := p.now()
	moved, err := p.jobs.Transition(dbc, job.ID, []types.GenerationStatus{types.GenerationPending}, map[string]interface{}{
		"status":     types.GenerationProcessing,
		"started_at": started,
	})
	if err != nil {
		jc.Fail("start", err)
		return nil
	}
	if !moved {
		// Another delivery got here first; leave the row to it.
		jc.Succeed("done", map[string]any{"generation_job_id": job.ID.String(), "skipped": true})
		return nil
	}
	job.Status = types.GenerationProcessing
	job.StartedAt = &started
	p.notify.GenerationUpdated(job)
	jc.Progress("processing", 10, "Generating code")

	ctx, span := otel.Tracer("forgecraft/pipeline").Start(jc.Ctx, "generation.process")
	span.SetAttributes(
		attribute.String("generation.job_id", job.ID.String()),
		attribute.String("generation.model", job.Model),
	)
	defer span.End()

	func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("generation panic", "generation_job_id", job.ID, "panic", r)
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = p.process(ctx, jc, job)
	}()

	status := string(types.GenerationCompleted)
	if err != nil {
		status = string(types.GenerationFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, errNotProcessing) {
			p.log.Warn("generation left PROCESSING before commit", "generation_job_id", job.ID)
			if fresh, _ := p.jobs.GetByID(dbctx.New(context.WithoutCancel(ctx)), job.ID); fresh != nil {
				job = fresh
			}
		} else {
			p.markFailed(ctx, job, failureMessage(err))
		}
	}
	observability.Current().ObserveGeneration(job.Model, status, p.now().Sub(started))
	jc.Succeed("done", result(job))
	return nil
}

func (p *Pipeline) process(ctx context.Context, jc *jobrt.Context, job *types.GenerationJob) error {
	dbc := dbctx.New(ctx)
	project, err := p.projects.GetByID(dbc, job.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return services.ErrProjectNotFound
	}

	existing, err := p.files.ReadAll(dbc, project.ID)
	if err != nil {
		return fmt.Errorf("read project files: %w", err)
	}

	docs := p.retrieveDocs(ctx, job, project)

	var submitted types.SubmitContext
	if len(job.Context) > 0 {
		if err := json.Unmarshal(job.Context, &submitted); err != nil {
			p.log.Warn("ignoring undecodable generation context", "generation_job_id", job.ID, "error", err)
		}
	}
	system, user := prompts.Build(project.Platform, project.Language, prompts.GenerationContext{
		Prompt:        job.Prompt,
		ExistingFiles: existing,
		Docs:          docs,
		APIVersion:    firstNonEmpty(submitted.APIVersion, project.APIVersion),
		PackageName:   firstNonEmpty(submitted.PackageName, project.PackageName),
		CommandPrefix: firstNonEmpty(submitted.CommandPrefix, project.CommandPrefix),
	})

	jc.Progress("generate", 30, "Calling model")
	out, err := p.gateway.Generate(ctx, llm.GenerateRequest{
		Model:        job.Model,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		return err
	}

	cost, err := p.pricing.GenerationCost(job.Model, out.TokensUsed)
	if err != nil {
		return err
	}
	balance, err := p.ledger.GetBalance(ctx, job.UserID)
	if err != nil {
		return err
	}
	if balance < cost {
		return services.ErrInsufficientBalance
	}

	jc.Progress("commit", 80, "Saving files")
	return p.commit(ctx, job, project, out, cost)
}

func (p *Pipeline) retrieveDocs(ctx context.Context, job *types.GenerationJob, project *types.Project) []string {
	found, err := p.docs.SearchForGeneration(ctx, job.Prompt, string(project.Platform))
	if err != nil {
		p.log.Warn("doc retrieval failed, continuing without docs", "generation_job_id", job.ID, "error", err)
		return nil
	}
	observability.Current().ObserveDocsMatched(string(project.Platform), len(found))
	if len(found) == 0 {
		return nil
	}
	usages := make([]*types.DocUsage, 0, len(found))
	contents := make([]string, 0, len(found))
	for _, d := range found {
		usages = append(usages, &types.DocUsage{JobID: job.ID, DocID: d.ID, Relevance: d.Relevance})
		contents = append(contents, d.Content)
	}
	if err := p.usages.Create(dbctx.New(ctx), usages); err != nil {
		p.log.Warn("record doc usage failed", "generation_job_id", job.ID, "error", err)
	}
	return contents
}

// commit charges the user, writes the files, touches the project and completes
// the job in one transaction.
func (p *Pipeline) commit(ctx context.Context, job *types.GenerationJob, project *types.Project, out *llm.GeneratedOutput, cost int) error {
	paths := out.Paths()
	output, err := json.Marshal(types.GenerationOutput{Files: paths, Summary: out.Summary})
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	now := p.now()
	ref := job.ID.String()
	tokens := out.TokensUsed

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := p.ledger.Debit(inner, services.Entry{
			UserID:      job.UserID,
			Amount:      cost,
			Type:        billing.TxGenerationCost,
			Description: fmt.Sprintf("AI generation (%s)", job.Model),
			Reference:   &ref,
		}); err != nil {
			return err
		}
		for _, path := range paths {
			if err := p.files.Upsert(inner, project.ID, path, out.Files[path]); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		if err := p.projects.Touch(inner, project.ID, now); err != nil {
			return fmt.Errorf("touch project: %w", err)
		}
		ok, err := p.jobs.Transition(inner, job.ID, []types.GenerationStatus{types.GenerationProcessing}, map[string]interface{}{
			"status":       types.GenerationCompleted,
			"output":       datatypes.JSON(output),
			"tokens_used":  tokens,
			"error":        nil,
			"completed_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errNotProcessing
		}
		return nil
	})
	if err != nil {
		return err
	}

	job.Status = types.GenerationCompleted
	job.Output = datatypes.JSON(output)
	job.TokensUsed = &tokens
	job.Error = nil
	job.CompletedAt = &now
	p.log.Info("generation completed",
		"generation_job_id", job.ID,
		"model", job.Model,
		"files", len(paths),
		"tokens_used", tokens,
		"cost", cost,
	)
	p.notify.GenerationUpdated(job)
	return nil
}

// markFailed moves a non-terminal job to FAILED. It uses a context that
// outlives cancellation so shutdown still records the failure.
func (p *Pipeline) markFailed(ctx context.Context, job *types.GenerationJob, msg string) {
	now := p.now()
	dbc := dbctx.New(context.WithoutCancel(ctx))
	ok, err := p.jobs.Transition(dbc, job.ID, []types.GenerationStatus{types.GenerationPending, types.GenerationProcessing}, map[string]interface{}{
		"status":       types.GenerationFailed,
		"error":        msg,
		"output":       nil,
		"tokens_used":  nil,
		"completed_at": now,
	})
	if err != nil {
		p.log.Error("mark generation failed", "generation_job_id", job.ID, "error", err)
		return
	}
	if !ok {
		return
	}
	job.Status = types.GenerationFailed
	job.Error = &msg
	job.Output = nil
	job.TokensUsed = nil
	job.CompletedAt = &now
	p.log.Warn("generation failed", "generation_job_id", job.ID, "model", job.Model, "error", msg)
	p.notify.GenerationUpdated(job)
}

func failureMessage(err error) string {
	if err == nil {
		return UnknownFailure
	}
	if errors.Is(err, services.ErrInsufficientBalance) {
		return services.ErrInsufficientBalance.Error()
	}
	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownFailure
}

func result(job *types.GenerationJob) map[string]any {
	return map[string]any{
		"generation_job_id": job.ID.String(),
		"status":            string(job.Status),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
