package models

import "time"

// OrderStatusHistory 订单状态历史（只追加，任何情况下不修改不删除）
type OrderStatusHistory struct {
	ID         uint        `gorm:"primarykey" json:"id"`                     // 主键
	OrderID    uint        `gorm:"index;not null" json:"order_id"`           // 订单ID
	FromStatus OrderStatus `gorm:"not null" json:"from_status"`              // 原状态
	ToStatus   OrderStatus `gorm:"not null" json:"to_status"`                // 新状态
	Notes      string      `gorm:"type:varchar(500)" json:"notes,omitempty"` // 备注
	ChangedBy  string      `gorm:"not null" json:"changed_by"`               // 操作主体（Actor 字符串）
	ChangedAt  time.Time   `gorm:"index;not null" json:"changed_at"`         // 变更时间
}

// TableName 指定表名
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}

// Actor 还原操作主体
func (h OrderStatusHistory) Actor() Actor {
	return ParseActor(h.ChangedBy)
}
