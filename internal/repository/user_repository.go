package repository

import (
	"context"
	"errors"

	"dayplan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// ListTimezones returns every distinct profile timezone, so the rollover
// scheduler knows which local midnights to watch.
func (r *UserRepository) ListTimezones(ctx context.Context) ([]string, error) {
	var timezones []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Distinct("timezone").
		Order("timezone").
		Pluck("timezone", &timezones).Error
	return timezones, err
}

// ListByTimezone returns all users whose profile timezone matches.
func (r *UserRepository) ListByTimezone(ctx context.Context, timezone string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("timezone = ?", timezone).
		Order("created_at").
		Find(&users).Error
	return users, err
}
