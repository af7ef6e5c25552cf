package repository

import (
	"time"

	"gorm.io/gorm"

	"cloud-deploy/internal/model"
	pkgErrors "cloud-deploy/pkg/errors"
)

type DeploymentRepository interface {
	Create(dep *model.Deployment) error
	FindByID(id int64) (*model.Deployment, error)
	ListByUser(userID int64) ([]*model.Deployment, error)
	ListAll() ([]*model.Deployment, error)
	ListByStatus(status string) ([]*model.Deployment, error)
	Update(dep *model.Deployment) error
	Delete(id int64) error
	CountByStatus() (map[string]int64, error)
	AvgDuration(status string) (time.Duration, error)
}

type deploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

func (r *deploymentRepository) Create(dep *model.Deployment) error {
	if err := r.db.Create(dep).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "创建部署记录失败", err)
	}
	return nil
}

func (r *deploymentRepository) FindByID(id int64) (*model.Deployment, error) {
	var dep model.Deployment
	err := r.db.First(&dep, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询部署记录失败", err)
	}
	return &dep, nil
}

func (r *deploymentRepository) ListByUser(userID int64) ([]*model.Deployment, error) {
	var deps []*model.Deployment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&deps).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询部署列表失败", err)
	}
	return deps, nil
}

func (r *deploymentRepository) ListAll() ([]*model.Deployment, error) {
	var deps []*model.Deployment
	err := r.db.Order("created_at DESC").Find(&deps).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询部署列表失败", err)
	}
	return deps, nil
}

func (r *deploymentRepository) ListByStatus(status string) ([]*model.Deployment, error) {
	var deps []*model.Deployment
	err := r.db.Where("status = ?", status).Find(&deps).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询部署列表失败", err)
	}
	return deps, nil
}

func (r *deploymentRepository) Update(dep *model.Deployment) error {
	// 单次变更单个事务: begin → save → commit, 持久化失败即回滚
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(dep).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "更新部署记录失败", err)
	}
	return nil
}

func (r *deploymentRepository) Delete(id int64) error {
	result := r.db.Delete(&model.Deployment{}, id)
	if result.Error != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "删除部署记录失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgErrors.ErrRecordNotFound
	}
	return nil
}

func (r *deploymentRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.Model(&model.Deployment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "统计部署状态失败", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *deploymentRepository) AvgDuration(status string) (time.Duration, error) {
	var seconds float64
	err := r.db.Model(&model.Deployment{}).
		Where("status = ?", status).
		Select("COALESCE(AVG(TIMESTAMPDIFF(SECOND, created_at, updated_at)), 0)").
		Scan(&seconds).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "统计部署耗时失败", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
