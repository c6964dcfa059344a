package generation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type GenerationJobRepo interface {
	Create(dbc dbctx.Context, job *types.GenerationJob) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationJob, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*types.GenerationJob, error)
	// Transition applies updates only while the row is in one of from. The bool
	// reports whether the row moved; a false return means another actor won.
	Transition(dbc dbctx.Context, id uuid.UUID, from []types.GenerationStatus, updates map[string]interface{}) (bool, error)
}

type generationJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationJobRepo(db *gorm.DB, baseLog *logger.Logger) GenerationJobRepo {
	return &generationJobRepo{db: db, log: baseLog.With("repo", "GenerationJobRepo")}
}

func (r *generationJobRepo) Create(dbc dbctx.Context, job *types.GenerationJob) error {
	return dbc.DB(r.db).Create(job).Error
}

func (r *generationJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationJob, error) {
	var job types.GenerationJob
	err := dbc.DB(r.db).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *generationJobRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*types.GenerationJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []*types.GenerationJob
	err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationJobRepo) Transition(dbc dbctx.Context, id uuid.UUID, from []types.GenerationStatus, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(from) == 0 {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.DB(r.db).Model(&types.GenerationJob{}).
		Where("id = ?", id).
		Where("status IN ?", from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
