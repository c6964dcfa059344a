package app

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/jobs/pipeline/code_generate"
	jobruntime "github.com/MacMoment/coding/internal/jobs/runtime"
	"github.com/MacMoment/coding/internal/jobs/worker"
	"github.com/MacMoment/coding/internal/platform/llm"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime/bus"
	"github.com/MacMoment/coding/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Ledger      services.LedgerService
	Docs        services.DocsService
	Generations services.GenerationService
	Jobs        services.JobService
	Notifier    services.JobNotifier
	Pricing     services.Pricing
	Gateway     llm.Gateway

	Registry  *jobruntime.Registry
	JobWorker *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, b bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	pricing, err := services.LoadPricing(cfg.PricingFile)
	if err != nil {
		return Services{}, fmt.Errorf("load pricing: %w", err)
	}
	if cfg.LLMAPIKey == "" {
		log.Warn("MEGALLM_API_KEY is not set; the model gateway returns mock output")
	}
	gateway := llm.NewClient(log, cfg.LLM(), &http.Client{})

	notifier := services.NewJobNotifier(log, b)
	jobs := services.NewJobService(log, r.JobRun, notifier)
	ledger := services.NewLedgerService(db, log, r.User, r.TokenTransaction)
	docs := services.NewDocsService(log, r.DocEntry)
	generations := services.NewGenerationService(db, log,
		r.User, r.Project, r.ProjectFile, r.GenerationJob, r.DocUsage, r.DocEntry, jobs)

	registry := jobruntime.NewRegistry()
	if err := registry.Register(code_generate.New(code_generate.Deps{
		DB:       db,
		Log:      log,
		Jobs:     r.GenerationJob,
		Projects: r.Project,
		Files:    r.ProjectFile,
		Usages:   r.DocUsage,
		Docs:     docs,
		Ledger:   ledger,
		Gateway:  gateway,
		Pricing:  pricing,
		Notify:   notifier,
	})); err != nil {
		return Services{}, fmt.Errorf("register code_generate: %w", err)
	}

	return Services{
		Auth:        services.NewAuthService(log, cfg.JWTSecretKey),
		Ledger:      ledger,
		Docs:        docs,
		Generations: generations,
		Jobs:        jobs,
		Notifier:    notifier,
		Pricing:     pricing,
		Gateway:     gateway,
		Registry:    registry,
		JobWorker:   worker.NewWorker(db, log, r.JobRun, registry, notifier, cfg.Worker()),
	}, nil
}
