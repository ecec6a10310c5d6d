package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（下单时的菜品快照，落单后不可变）
type OrderItem struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID             uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	MenuItemID          uint           `gorm:"index;not null" json:"menu_item_id"`                       // 菜品ID
	Name                string         `gorm:"not null" json:"name"`                                     // 菜品名称快照
	Variation           string         `gorm:"type:varchar(100)" json:"variation,omitempty"`             // 规格快照（大/中/小等）
	Quantity            int            `gorm:"not null" json:"quantity"`                                 // 数量
	UnitPrice           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	TotalPrice          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	SpecialInstructions string         `gorm:"type:varchar(500)" json:"special_instructions,omitempty"`  // 特殊要求
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
