package repository

import (
	"gorm.io/gorm"

	"cloud-deploy/internal/model"
	pkgErrors "cloud-deploy/pkg/errors"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	FindByID(id int64) (*model.User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	Count() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "创建用户失败", err)
	}
	return nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrUserNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrUserNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询用户失败", err)
	}
	return count > 0, nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "统计用户失败", err)
	}
	return count, nil
}
