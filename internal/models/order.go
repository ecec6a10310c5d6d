package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（聚合根）
type Order struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                // 主键
	OrderNo         string    `gorm:"uniqueIndex;not null" json:"order_no"`                // 订单编号
	UserID          uint      `gorm:"index;not null" json:"user_id"`                       // 顾客ID（堂食散客为 0）
	Type            OrderType `gorm:"index;not null" json:"type"`                          // 订单类型
	TableNumber     *int      `gorm:"index" json:"table_number,omitempty"`                 // 桌号（堂食）
	CustomerEmail   string    `gorm:"index" json:"customer_email,omitempty"`               // 通知邮箱
	DeliveryAddress string    `gorm:"type:varchar(500)" json:"delivery_address,omitempty"` // 配送地址快照

	Status        OrderStatus   `gorm:"index;not null" json:"status"`         // 订单状态
	PaymentStatus PaymentStatus `gorm:"index;not null" json:"payment_status"` // 支付状态
	Currency      string        `gorm:"not null" json:"currency"`             // 币种

	SubTotal           Money `gorm:"type:decimal(20,2);not null;default:0" json:"sub_total"`          // 商品小计
	Tax                Money `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`                // 税费
	DeliveryFee        Money `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`       // 配送费
	Discount           Money `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`           // 优惠金额
	DiscountPercentage Money `gorm:"type:decimal(6,2);not null;default:0" json:"discount_percentage"` // 优惠比例（百分比）
	Tip                Money `gorm:"type:decimal(20,2);not null;default:0" json:"tip"`                // 小费
	Total              Money `gorm:"type:decimal(20,2);not null;default:0" json:"total"`              // 应付总额
	TotalPaid          Money `gorm:"type:decimal(20,2);not null;default:0" json:"total_paid"`         // 已付总额（全量重算）
	RemainingAmount    Money `gorm:"type:decimal(20,2);not null;default:0" json:"remaining_amount"`   // 剩余应付（全量重算）
	IsFullyPaid        bool  `gorm:"not null;default:false" json:"is_fully_paid"`                     // 是否已付清（派生）

	OrderDate             time.Time  `gorm:"index;not null" json:"order_date"`                       // 下单时间
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`                      // 预计送达/取餐时间
	ProposedDeliveryTime  *time.Time `json:"proposed_delivery_time,omitempty"`                       // 延迟待确认的新预计时间
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time,omitempty"`                         // 实际送达时间
	CancellationReason    string     `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"` // 取消原因

	IsFocusOrder bool       `gorm:"index;not null;default:false" json:"is_focus_order"` // 是否重点单
	Priority     *int       `gorm:"index" json:"priority,omitempty"`                    // 优先级 1-5（1 最高）
	FocusReason  string     `gorm:"type:varchar(500)" json:"focus_reason,omitempty"`    // 重点原因
	FocusedAt    *time.Time `gorm:"index" json:"focused_at,omitempty"`                  // 标记时间
	FocusedBy    string     `gorm:"type:varchar(64)" json:"focused_by,omitempty"`       // 标记人

	CreatedBy string         `gorm:"type:varchar(64)" json:"created_by,omitempty"` // 创建人
	UpdatedBy string         `gorm:"type:varchar(64)" json:"updated_by,omitempty"` // 最后修改人
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间

	Items         []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`          // 订单项
	Payments      []OrderPayment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"`       // 支付记录
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history,omitempty"` // 状态历史
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
