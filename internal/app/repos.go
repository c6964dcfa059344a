package app

import (
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	TokenTransaction repos.TokenTransactionRepo
	Project          repos.ProjectRepo
	ProjectFile      repos.ProjectFileRepo
	DocEntry         repos.DocEntryRepo
	GenerationJob    repos.GenerationJobRepo
	DocUsage         repos.DocUsageRepo
	JobRun           repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		TokenTransaction: repos.NewTokenTransactionRepo(db, log),
		Project:          repos.NewProjectRepo(db, log),
		ProjectFile:      repos.NewProjectFileRepo(db, log),
		DocEntry:         repos.NewDocEntryRepo(db, log),
		GenerationJob:    repos.NewGenerationJobRepo(db, log),
		DocUsage:         repos.NewDocUsageRepo(db, log),
		JobRun:           repos.NewJobRunRepo(db, log),
	}
}
