package repository

import (
	"time"

	"gorm.io/gorm"

	"cloud-deploy/internal/model"
	pkgErrors "cloud-deploy/pkg/errors"
)

type LogRepository interface {
	Create(entry *model.LogEntry) error
	ListByDeployment(deploymentID int64) ([]*model.LogEntry, error)
	ListByLevel(level string, limit int) ([]*model.LogEntry, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(entry *model.LogEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "写入日志记录失败", err)
	}
	return nil
}

func (r *logRepository) ListByDeployment(deploymentID int64) ([]*model.LogEntry, error) {
	var entries []*model.LogEntry
	err := r.db.Where("deployment_id = ?", deploymentID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询部署日志失败", err)
	}
	return entries, nil
}

func (r *logRepository) ListByLevel(level string, limit int) ([]*model.LogEntry, error) {
	var entries []*model.LogEntry
	err := r.db.Where("level = ?", level).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询日志失败", err)
	}
	return entries, nil
}

func (r *logRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&model.LogEntry{})
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "清理历史日志失败", result.Error)
	}
	return result.RowsAffected, nil
}
