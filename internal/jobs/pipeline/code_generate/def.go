package code_generate

import (
	"time"

	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos"
	"github.com/MacMoment/coding/internal/platform/llm"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/services"
)

const (
	InterruptedMessage = "generation interrupted"
	UnknownFailure     = "Unknown error"
)

type Deps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Jobs     repos.GenerationJobRepo
	Projects repos.ProjectRepo
	Files    repos.ProjectFileRepo
	Usages   repos.DocUsageRepo
	Docs     services.DocsService
	Ledger   services.LedgerService
	Gateway  llm.Gateway
	Pricing  services.Pricing
	Notify   services.JobNotifier
}

type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	jobs     repos.GenerationJobRepo
	projects repos.ProjectRepo
	files    repos.ProjectFileRepo
	usages   repos.DocUsageRepo
	docs     services.DocsService
	ledger   services.LedgerService
	gateway  llm.Gateway
	pricing  services.Pricing
	notify   services.JobNotifier
	now      func() time.Time
}

func New(d Deps) *Pipeline {
	return &Pipeline{
		db:       d.DB,
		log:      d.Log.With("job", services.JobTypeCodeGenerate),
		jobs:     d.Jobs,
		projects: d.Projects,
		files:    d.Files,
		usages:   d.Usages,
		docs:     d.Docs,
		ledger:   d.Ledger,
		gateway:  d.Gateway,
		pricing:  d.Pricing,
		notify:   d.Notify,
		now:      time.Now,
	}
}

func (p *Pipeline) Type() string { return services.JobTypeCodeGenerate }
