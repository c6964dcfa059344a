package docs

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type DocEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.DocEntry) ([]*types.DocEntry, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.DocEntry, error)
	// SearchByKeywords returns up to limit entries for platform whose title or
	// content contains any keyword, case-insensitively, in insertion order.
	SearchByKeywords(dbc dbctx.Context, platform string, keywords []string, limit int) ([]*types.DocEntry, error)
	CountByPlatform(dbc dbctx.Context) (map[string]int64, error)
}

type docEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocEntryRepo(db *gorm.DB, baseLog *logger.Logger) DocEntryRepo {
	return &docEntryRepo{db: db, log: baseLog.With("repo", "DocEntryRepo")}
}

func (r *docEntryRepo) Create(dbc dbctx.Context, entries []*types.DocEntry) ([]*types.DocEntry, error) {
	if len(entries) == 0 {
		return []*types.DocEntry{}, nil
	}
	if err := dbc.DB(r.db).CreateInBatches(&entries, 100).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *docEntryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.DocEntry, error) {
	var out []*types.DocEntry
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *docEntryRepo) SearchByKeywords(dbc dbctx.Context, platform string, keywords []string, limit int) ([]*types.DocEntry, error) {
	var out []*types.DocEntry
	if len(keywords) == 0 || limit <= 0 {
		return out, nil
	}
	conds := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, 2*len(keywords))
	for _, kw := range keywords {
		pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
		conds = append(conds, `LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`)
		args = append(args, pattern, pattern)
	}
	err := dbc.DB(r.db).
		Where("platform = ?", platform).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *docEntryRepo) CountByPlatform(dbc dbctx.Context) (map[string]int64, error) {
	var rows []struct {
		Platform string
		N        int64
	}
	err := dbc.DB(r.db).Model(&types.DocEntry{}).
		Select("platform, COUNT(*) AS n").
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Platform] = row.N
	}
	return out, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
