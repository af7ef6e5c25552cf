package repository

import (
	"gorm.io/gorm"

	"cloud-deploy/internal/model"
	pkgErrors "cloud-deploy/pkg/errors"
)

type DomainRepository interface {
	Create(domain *model.Domain) error
	FindByName(domainName string) (*model.Domain, error)
	Update(domain *model.Domain) error
	DeleteByName(domainName string) error
	Count() (int64, error)
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

func (r *domainRepository) Create(domain *model.Domain) error {
	if err := r.db.Create(domain).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "创建域名记录失败", err)
	}
	return nil
}

func (r *domainRepository) FindByName(domainName string) (*model.Domain, error) {
	var domain model.Domain
	err := r.db.Where("domain_name = ?", domainName).First(&domain).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "查询域名记录失败", err)
	}
	return &domain, nil
}

func (r *domainRepository) Update(domain *model.Domain) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(domain).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "更新域名记录失败", err)
	}
	return nil
}

func (r *domainRepository) DeleteByName(domainName string) error {
	result := r.db.Where("domain_name = ?", domainName).Delete(&model.Domain{})
	if result.Error != nil {
		return pkgErrors.Wrap(pkgErrors.CodePersistenceError, "删除域名记录失败", result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgErrors.ErrRecordNotFound
	}
	return nil
}

func (r *domainRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Domain{}).Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodePersistenceError, "统计域名失败", err)
	}
	return count, nil
}
