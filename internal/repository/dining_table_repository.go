package repository

import (
	"errors"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// DiningTableRepository 餐桌数据访问接口
type DiningTableRepository interface {
	List(status string) ([]models.DiningTable, error)
	GetByID(id uint) (*models.DiningTable, error)
	GetByNumber(number int) (*models.DiningTable, error)
	Create(table *models.DiningTable) error
	Update(table *models.DiningTable) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormDiningTableRepository
}

// GormDiningTableRepository GORM 实现
type GormDiningTableRepository struct {
	db *gorm.DB
}

// NewDiningTableRepository 创建餐桌仓库
func NewDiningTableRepository(db *gorm.DB) *GormDiningTableRepository {
	return &GormDiningTableRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiningTableRepository) WithTx(tx *gorm.DB) *GormDiningTableRepository {
	if tx == nil {
		return r
	}
	return &GormDiningTableRepository{db: tx}
}

// List 按桌号排序获取餐桌，status 为空时返回全部
func (r *GormDiningTableRepository) List(status string) ([]models.DiningTable, error) {
	query := r.db.Model(&models.DiningTable{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tables []models.DiningTable
	if err := query.Order("number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// GetByID 根据ID获取餐桌
func (r *GormDiningTableRepository) GetByID(id uint) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.db.First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// GetByNumber 根据桌号获取餐桌
func (r *GormDiningTableRepository) GetByNumber(number int) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.db.Where("number = ?", number).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// Create 创建餐桌
func (r *GormDiningTableRepository) Create(table *models.DiningTable) error {
	return r.db.Create(table).Error
}

// Update 更新餐桌
func (r *GormDiningTableRepository) Update(table *models.DiningTable) error {
	return r.db.Save(table).Error
}

// UpdateStatus 更新餐桌状态
func (r *GormDiningTableRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.DiningTable{}).Where("id = ?", id).Update("status", status).Error
}

// Delete 删除餐桌
func (r *GormDiningTableRepository) Delete(id uint) error {
	return r.db.Delete(&models.DiningTable{}, id).Error
}
