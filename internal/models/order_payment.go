package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderPayment 支付记录（一笔针对订单的支付尝试或完成）
type OrderPayment struct {
	ID             uint          `gorm:"primarykey" json:"id"`                      // 主键
	OrderID        uint          `gorm:"index;not null" json:"order_id"`            // 订单ID
	Method         PaymentMethod `gorm:"not null" json:"method"`                    // 支付方式
	Amount         Money         `gorm:"type:decimal(20,2);not null" json:"amount"` // 支付金额
	Status         PaymentState  `gorm:"index;not null" json:"status"`              // 支付记录状态
	TransactionRef string        `gorm:"index" json:"transaction_ref,omitempty"`    // 交易参考号
	PaymentDate    *time.Time    `gorm:"index" json:"payment_date,omitempty"`       // 支付时间

	IsRefunded     bool       `gorm:"not null;default:false" json:"is_refunded"`                    // 是否全额退款
	RefundedAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"refunded_amount"` // 已退金额（≤ Amount）
	RefundDate     *time.Time `json:"refund_date,omitempty"`                                        // 退款时间
	RefundReason   string     `gorm:"type:varchar(500)" json:"refund_reason,omitempty"`             // 退款原因

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (OrderPayment) TableName() string {
	return "order_payments"
}
