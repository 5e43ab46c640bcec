package repository

import (
	"context"

	"gorm.io/gorm"
)

type userRepository struct {
	database *gorm.DB
}

func (u *userRepository) Create(ctx context.Context, user *User) error {
	return u.database.WithContext(ctx).Model(User{}).Create(user).Error
}

func (u *userRepository) GetById(ctx context.Context, userId uint) (User, error) {
	var (
		user = User{}
	)
	err := u.database.WithContext(ctx).Model(User{}).Where("id = ?", userId).First(&user).Error
	return user, err
}

func (u *userRepository) List(ctx context.Context) ([]User, error) {
	var users []User
	err := u.database.WithContext(ctx).Model(User{}).Order("id").Find(&users).Error
	return users, err
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetById(ctx context.Context, userId uint) (User, error)
	List(ctx context.Context) ([]User, error)
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepository{database: db}
}
