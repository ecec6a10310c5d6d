package models

import (
	"time"

	"gorm.io/gorm"
)

// DiningTable 餐桌表
type DiningTable struct {
	ID        uint           `gorm:"primarykey" json:"id"`                             // 主键
	Number    int            `gorm:"uniqueIndex;not null" json:"number"`               // 桌号
	Seats     int            `gorm:"not null" json:"seats"`                            // 座位数
	Zone      string         `gorm:"type:varchar(100)" json:"zone,omitempty"`          // 区域（大厅/露台等）
	Status    string         `gorm:"not null;default:'available';index" json:"status"` // 状态
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (DiningTable) TableName() string {
	return "dining_tables"
}
