package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem 菜品表
type MenuItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                         // 分类ID
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	NameJSON        JSON           `gorm:"type:json;not null" json:"name"`                            // 多语言名称
	DescriptionJSON JSON           `gorm:"type:json" json:"description"`                              // 多语言描述
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 基础价格
	Images          StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags            StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	Allergens       StringArray    `gorm:"type:json" json:"allergens"`                                // 过敏原
	IsAvailable     bool           `gorm:"index" json:"is_available"`                                 // 是否供应中
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Category   Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`   // 分类信息
	Variations []MenuItemVariation `gorm:"foreignKey:MenuItemID" json:"variations,omitempty"` // 规格列表
}

// TableName 指定表名
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuItemVariation 菜品规格表（大/中/小、加料等）
type MenuItemVariation struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                                      // 主键
	MenuItemID  uint           `gorm:"not null;index;uniqueIndex:idx_menu_item_variation" json:"menu_item_id"`    // 菜品ID
	Code        string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_menu_item_variation" json:"code"` // 规格编码（同菜品内唯一）
	NameJSON    JSON           `gorm:"type:json" json:"name"`                                                     // 多语言规格名
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`                 // 规格价格
	IsAvailable bool           `gorm:"index" json:"is_available"`                                                 // 是否启用
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                            // 软删除时间

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"` // 关联菜品
}

// TableName 指定表名
func (MenuItemVariation) TableName() string {
	return "menu_item_variations"
}
