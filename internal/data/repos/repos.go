package repos

import (
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/repos/billing"
	"github.com/MacMoment/coding/internal/data/repos/docs"
	"github.com/MacMoment/coding/internal/data/repos/generation"
	"github.com/MacMoment/coding/internal/data/repos/jobs"
	"github.com/MacMoment/coding/internal/data/repos/projects"
	"github.com/MacMoment/coding/internal/data/repos/user"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type UserRepo = user.UserRepo
type TokenTransactionRepo = billing.TokenTransactionRepo

type ProjectRepo = projects.ProjectRepo
type ProjectFileRepo = projects.ProjectFileRepo

type DocEntryRepo = docs.DocEntryRepo

type GenerationJobRepo = generation.GenerationJobRepo
type DocUsageRepo = generation.DocUsageRepo

type JobRunRepo = jobs.JobRunRepo
type ClaimPolicy = jobs.ClaimPolicy

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}
func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	return billing.NewTokenTransactionRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return projects.NewProjectRepo(db, baseLog)
}
func NewProjectFileRepo(db *gorm.DB, baseLog *logger.Logger) ProjectFileRepo {
	return projects.NewProjectFileRepo(db, baseLog)
}

func NewDocEntryRepo(db *gorm.DB, baseLog *logger.Logger) DocEntryRepo {
	return docs.NewDocEntryRepo(db, baseLog)
}

func NewGenerationJobRepo(db *gorm.DB, baseLog *logger.Logger) GenerationJobRepo {
	return generation.NewGenerationJobRepo(db, baseLog)
}
func NewDocUsageRepo(db *gorm.DB, baseLog *logger.Logger) DocUsageRepo {
	return generation.NewDocUsageRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
