package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/model"
)

type UserRepository interface {
	CreateWithAvatar(ctx context.Context, user *model.User, avatarURL func(id uint) string) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateWithAvatar inserts the user and fills in the id-derived avatar URL in
// the same transaction, so a registered row never lacks an avatar.
func (r *userRepository) CreateWithAvatar(ctx context.Context, user *model.User, avatarURL func(id uint) string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		user.Avatar = avatarURL(user.ID)
		return tx.Model(user).Update("avatar", user.Avatar).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
