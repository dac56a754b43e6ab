package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"docscan/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Count(ctx context.Context) (int64, error)
	// DebitCredit takes one credit iff the balance is positive. It reports
	// false when no row qualified.
	DebitCredit(ctx context.Context, id uint) (bool, error)
	AddCredits(ctx context.Context, id uint, amount int) (bool, error)
	// ResetIfStale sets the balance of a non-admin user whose last reset is
	// before dayStart.
	ResetIfStale(ctx context.Context, id uint, credits int, dayStart, now time.Time) (bool, error)
	ResetAllStale(ctx context.Context, credits int, dayStart, now time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) DebitCredit(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND credits > 0", id).
		Update("credits", gorm.Expr("credits - 1"))
	return res.RowsAffected == 1, res.Error
}

func (r *userRepository) AddCredits(ctx context.Context, id uint, amount int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("credits", gorm.Expr("credits + ?", amount))
	return res.RowsAffected == 1, res.Error
}

func (r *userRepository) ResetIfStale(ctx context.Context, id uint, credits int, dayStart, now time.Time) (bool, error) {
	res := r.staleUsers(ctx, dayStart).
		Where("id = ?", id).
		Updates(map[string]interface{}{"credits": credits, "last_reset_at": now.UTC()})
	return res.RowsAffected == 1, res.Error
}

func (r *userRepository) ResetAllStale(ctx context.Context, credits int, dayStart, now time.Time) (int64, error) {
	res := r.staleUsers(ctx, dayStart).
		Updates(map[string]interface{}{"credits": credits, "last_reset_at": now.UTC()})
	return res.RowsAffected, res.Error
}

func (r *userRepository) staleUsers(ctx context.Context, dayStart time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("is_admin = ? AND last_reset_at < ?", false, dayStart.UTC())
}
