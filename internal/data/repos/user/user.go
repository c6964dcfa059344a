package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	// AdjustBalance adds delta to token_balance. A negative delta only applies when
	// the balance covers it; the bool reports whether a row was changed.
	AdjustBalance(dbc dbctx.Context, id uuid.UUID, delta int) (bool, error)
	// MarkDailyClaim sets last_daily_claim=now unless a claim happened after cutoff.
	MarkDailyClaim(dbc dbctx.Context, id uuid.UUID, now, cutoff time.Time) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	return r.first(dbc.DB(r.db).Where("email = ?", email))
}

func (r *userRepo) first(q *gorm.DB) (*types.User, error) {
	var u types.User
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) AdjustBalance(dbc dbctx.Context, id uuid.UUID, delta int) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	q := dbc.DB(r.db).Model(&types.User{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("token_balance >= ?", -delta)
	}
	res := q.Updates(map[string]interface{}{
		"token_balance": gorm.Expr("token_balance + ?", delta),
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) MarkDailyClaim(dbc dbctx.Context, id uuid.UUID, now, cutoff time.Time) (bool, error) {
	res := dbc.DB(r.db).Model(&types.User{}).
		Where("id = ?", id).
		Where("(last_daily_claim IS NULL OR last_daily_claim <= ?)", cutoff).
		Updates(map[string]interface{}{
			"last_daily_claim": now,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return dbc.DB(r.db).Model(&types.User{}).Where("id = ?", id).Updates(updates).Error
}
