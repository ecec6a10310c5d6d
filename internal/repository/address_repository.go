package repository

import (
	"errors"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 配送地址数据访问接口
type AddressRepository interface {
	ListByUser(userID uint) ([]models.Address, error)
	GetByIDForUser(id, userID uint) (*models.Address, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id, userID uint) error
	ClearDefault(userID uint) error
	WithTx(tx *gorm.DB) *GormAddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// ListByUser 获取顾客地址列表，默认地址在前
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("is_default desc, updated_at desc").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByIDForUser 获取顾客自己的地址
func (r *GormAddressRepository) GetByIDForUser(id, userID uint) (*models.Address, error) {
	var address models.Address
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// Update 更新地址
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// Delete 删除地址
func (r *GormAddressRepository) Delete(id, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{}).Error
}

// ClearDefault 取消顾客已有默认地址
func (r *GormAddressRepository) ClearDefault(userID uint) error {
	return r.db.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true).Update("is_default", false).Error
}
