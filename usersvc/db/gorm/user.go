package gorm

import (
	"context"
	"errors"

	"github.com/asshiddiq1306/TaskManagement/usersvc"
	stdgorm "gorm.io/gorm"
)

type userRepository struct {
	db *stdgorm.DB
}

func NewUserRepository(db *stdgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (r *userRepository) Find(ctx context.Context, id uint64) (*usersvc.User, error) {
	var user usersvc.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, stdgorm.ErrRecordNotFound) {
			return nil, usersvc.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*usersvc.User, error) {
	var users []*usersvc.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*usersvc.User, error) {
	var user usersvc.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, stdgorm.ErrRecordNotFound) {
			return nil, usersvc.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&usersvc.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *usersvc.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Delete(ctx context.Context, user *usersvc.User) error {
	res := r.db.WithContext(ctx).Delete(&usersvc.User{}, user.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usersvc.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Transact(ctx context.Context, fn func(usersvc.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *stdgorm.DB) error {
		return fn(&userRepository{tx})
	})
}
