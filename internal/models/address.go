package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 顾客配送地址表
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`                     // 主键
	UserID     uint           `gorm:"index;not null" json:"user_id"`            // 顾客ID
	Label      string         `gorm:"type:varchar(50)" json:"label,omitempty"`  // 标签（家/公司）
	Line1      string         `gorm:"not null" json:"line1"`                    // 地址行1
	Line2      string         `gorm:"type:varchar(200)" json:"line2,omitempty"` // 地址行2
	City       string         `gorm:"not null" json:"city"`                     // 城市
	PostalCode string         `gorm:"type:varchar(20)" json:"postal_code"`      // 邮编
	Phone      string         `gorm:"type:varchar(32)" json:"phone,omitempty"`  // 联系电话
	IsDefault  bool           `gorm:"not null;default:false" json:"is_default"` // 是否默认地址
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                               // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
