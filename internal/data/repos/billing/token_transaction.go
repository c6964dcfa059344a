package billing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

// TokenTransactionRepo is append-only: there is no update or delete.
type TokenTransactionRepo interface {
	Create(dbc dbctx.Context, tx *types.TokenTransaction) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, offset, limit int) ([]*types.TokenTransaction, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	SumByUser(dbc dbctx.Context, userID uuid.UUID) (int, error)
	ListByReference(dbc dbctx.Context, reference string) ([]*types.TokenTransaction, error)
}

type tokenTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	return &tokenTransactionRepo{db: db, log: baseLog.With("repo", "TokenTransactionRepo")}
}

func (r *tokenTransactionRepo) Create(dbc dbctx.Context, tx *types.TokenTransaction) error {
	return dbc.DB(r.db).Create(tx).Error
}

func (r *tokenTransactionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, offset, limit int) ([]*types.TokenTransaction, error) {
	var out []*types.TokenTransaction
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tokenTransactionRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.TokenTransaction{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *tokenTransactionRepo) SumByUser(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := dbc.DB(r.db).Model(&types.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *tokenTransactionRepo) ListByReference(dbc dbctx.Context, reference string) ([]*types.TokenTransaction, error) {
	var out []*types.TokenTransaction
	if err := dbc.DB(r.db).Where("reference = ?", reference).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
