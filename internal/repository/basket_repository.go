package repository

import (
	"errors"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// BasketRepository 购物篮数据访问接口
type BasketRepository interface {
	ListByUser(userID uint) ([]models.BasketItem, error)
	Upsert(item *models.BasketItem) error
	DeleteByUserAndItem(userID, menuItemID uint, variationCode string) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormBasketRepository
}

// GormBasketRepository GORM 实现
type GormBasketRepository struct {
	db *gorm.DB
}

// NewBasketRepository 创建购物篮仓库
func NewBasketRepository(db *gorm.DB) *GormBasketRepository {
	return &GormBasketRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBasketRepository) WithTx(tx *gorm.DB) *GormBasketRepository {
	if tx == nil {
		return r
	}
	return &GormBasketRepository{db: tx}
}

// ListByUser 获取顾客购物篮项
func (r *GormBasketRepository) ListByUser(userID uint) ([]models.BasketItem, error) {
	var items []models.BasketItem
	if err := r.db.Preload("MenuItem").Preload("MenuItem.Variations").Where("user_id = ?", userID).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 添加或更新购物篮项
func (r *GormBasketRepository) Upsert(item *models.BasketItem) error {
	if item == nil {
		return nil
	}
	var existing models.BasketItem
	err := r.db.Where("user_id = ? AND menu_item_id = ? AND variation_code = ?", item.UserID, item.MenuItemID, item.VariationCode).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":             item.Quantity,
		"special_instructions": item.SpecialInstructions,
		"updated_at":           item.UpdatedAt,
	}
	return r.db.Model(&existing).Updates(updates).Error
}

// DeleteByUserAndItem 删除购物篮项
func (r *GormBasketRepository) DeleteByUserAndItem(userID, menuItemID uint, variationCode string) error {
	return r.db.Where("user_id = ? AND menu_item_id = ? AND variation_code = ?", userID, menuItemID, variationCode).Delete(&models.BasketItem{}).Error
}

// ClearByUser 清空购物篮
func (r *GormBasketRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.BasketItem{}).Error
}
