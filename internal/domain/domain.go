package domain

import (
	"github.com/MacMoment/coding/internal/domain/billing"
	"github.com/MacMoment/coding/internal/domain/docs"
	"github.com/MacMoment/coding/internal/domain/generation"
	"github.com/MacMoment/coding/internal/domain/jobs"
	"github.com/MacMoment/coding/internal/domain/projects"
	"github.com/MacMoment/coding/internal/domain/user"
)

type (
	User = user.User
	Tier = user.Tier

	TokenTransaction = billing.TokenTransaction
	TransactionType  = billing.TransactionType

	Project     = projects.Project
	ProjectFile = projects.ProjectFile
	Platform    = projects.Platform

	DocEntry = docs.DocEntry

	GenerationJob    = generation.GenerationJob
	GenerationStatus = generation.Status
	DocUsage         = generation.DocUsage
	SubmitContext    = generation.SubmitContext
	GenerationOutput = generation.Output

	JobRun = jobs.JobRun
)

const (
	TierFree    = user.TierFree
	TierStarter = user.TierStarter
	TierPro     = user.TierPro
	TierElite   = user.TierElite

	GenerationPending    = generation.StatusPending
	GenerationProcessing = generation.StatusProcessing
	GenerationCompleted  = generation.StatusCompleted
	GenerationFailed     = generation.StatusFailed
)

func JobRunStatuses() []string { return jobs.RunStatuses() }

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&TokenTransaction{},
		&Project{},
		&ProjectFile{},
		&DocEntry{},
		&GenerationJob{},
		&DocUsage{},
		&JobRun{},
	}
}
