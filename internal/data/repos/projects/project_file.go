package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type ProjectFileRepo interface {
	// Upsert writes content at (projectID, path), creating the entry if absent.
	// Applying the same upsert twice leaves the same state.
	Upsert(dbc dbctx.Context, projectID uuid.UUID, path, content string) error
	// ReadAll maps path to content for every non-directory entry of the project.
	ReadAll(dbc dbctx.Context, projectID uuid.UUID) (map[string]string, error)
	List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ProjectFile, error)
	CreateDirectory(dbc dbctx.Context, projectID uuid.UUID, path string) error
}

type projectFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectFileRepo(db *gorm.DB, baseLog *logger.Logger) ProjectFileRepo {
	return &projectFileRepo{db: db, log: baseLog.With("repo", "ProjectFileRepo")}
}

func (r *projectFileRepo) Upsert(dbc dbctx.Context, projectID uuid.UUID, path, content string) error {
	now := time.Now()
	row := &types.ProjectFile{
		ProjectID: projectID,
		Path:      path,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content":    content,
			"updated_at": now,
		}),
	}).Create(row).Error
}

func (r *projectFileRepo) ReadAll(dbc dbctx.Context, projectID uuid.UUID) (map[string]string, error) {
	var rows []*types.ProjectFile
	err := dbc.DB(r.db).
		Where("project_id = ? AND is_directory = ?", projectID, false).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, f := range rows {
		out[f.Path] = f.Content
	}
	return out, nil
}

func (r *projectFileRepo) List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ProjectFile, error) {
	var rows []*types.ProjectFile
	err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Order("path ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *projectFileRepo) CreateDirectory(dbc dbctx.Context, projectID uuid.UUID, path string) error {
	now := time.Now()
	row := &types.ProjectFile{
		ProjectID:   projectID,
		Path:        path,
		IsDirectory: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}
