package models

import (
	"time"

	"gorm.io/gorm"
)

// BasketItem 购物篮项
type BasketItem struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                                              // 主键
	UserID              uint           `gorm:"not null;uniqueIndex:idx_basket_user_item_variation" json:"user_id"`                // 顾客ID
	MenuItemID          uint           `gorm:"not null;uniqueIndex:idx_basket_user_item_variation" json:"menu_item_id"`           // 菜品ID
	VariationCode       string         `gorm:"type:varchar(64);uniqueIndex:idx_basket_user_item_variation" json:"variation_code"` // 规格编码（无规格为空）
	Quantity            int            `gorm:"not null" json:"quantity"`                                                          // 数量
	SpecialInstructions string         `gorm:"type:varchar(500)" json:"special_instructions,omitempty"`                           // 特殊要求
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                                           // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                                           // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                                    // 软删除时间

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"` // 关联菜品
}

// TableName 指定表名
func (BasketItem) TableName() string {
	return "basket_items"
}
