package generation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type DocUsageRepo interface {
	// Create records usages; a second record for the same (job, doc) is ignored so
	// redelivered jobs do not duplicate rows.
	Create(dbc dbctx.Context, usages []*types.DocUsage) error
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.DocUsage, error)
}

type docUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocUsageRepo(db *gorm.DB, baseLog *logger.Logger) DocUsageRepo {
	return &docUsageRepo{db: db, log: baseLog.With("repo", "DocUsageRepo")}
}

func (r *docUsageRepo) Create(dbc dbctx.Context, usages []*types.DocUsage) error {
	if len(usages) == 0 {
		return nil
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&usages).Error
}

func (r *docUsageRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.DocUsage, error) {
	var out []*types.DocUsage
	err := dbc.DB(r.db).
		Where("job_id = ?", jobID).
		Order("relevance DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
