package repository

import (
	"context"

	"github.com/tddymnbt/CRCMS-API/internal/model"

	"gorm.io/gorm"
)

// UserRepository is the data access contract for system users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByExtID(ctx context.Context, extID string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByExtID(ctx context.Context, extID string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("external_id = ?", extID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
