package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation 预订表
type Reservation struct {
	ID            uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID        uint           `gorm:"index;not null" json:"user_id"`                 // 顾客ID（电话预订为 0）
	TableID       *uint          `gorm:"index" json:"table_id,omitempty"`               // 餐桌ID（入座时分配）
	CustomerName  string         `gorm:"not null" json:"customer_name"`                 // 顾客姓名
	CustomerPhone string         `gorm:"type:varchar(32)" json:"customer_phone"`        // 联系电话
	PartySize     int            `gorm:"not null" json:"party_size"`                    // 人数
	StartsAt      time.Time      `gorm:"index;not null" json:"starts_at"`               // 开始时间
	EndsAt        time.Time      `gorm:"index;not null" json:"ends_at"`                 // 结束时间
	Status        string         `gorm:"not null;default:'booked';index" json:"status"` // 状态
	Notes         string         `gorm:"type:varchar(500)" json:"notes,omitempty"`      // 备注
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	Table *DiningTable `gorm:"foreignKey:TableID" json:"table,omitempty"` // 关联餐桌
}

// TableName 指定表名
func (Reservation) TableName() string {
	return "reservations"
}
