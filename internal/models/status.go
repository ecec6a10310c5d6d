package models

// OrderStatus 订单状态（封闭枚举，状态迁移仅通过迁移表校验）
type OrderStatus string

// 订单状态常量
const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusPreparing       OrderStatus = "preparing"
	OrderStatusReady           OrderStatus = "ready"
	OrderStatusOutForDelivery  OrderStatus = "out_for_delivery"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusPendingApproval OrderStatus = "pending_customer_approval"
)

// PaymentStatus 订单级支付状态
type PaymentStatus string

// 订单级支付状态常量
const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusCompleted     PaymentStatus = "completed"
	PaymentStatusOverpaid      PaymentStatus = "overpaid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// PaymentState 单笔支付记录状态
type PaymentState string

// 支付记录状态常量
const (
	PaymentStatePending           PaymentState = "pending"
	PaymentStateCompleted         PaymentState = "completed"
	PaymentStateFailed            PaymentState = "failed"
	PaymentStateRefunded          PaymentState = "refunded"
	PaymentStatePartiallyRefunded PaymentState = "partially_refunded"
)

// PaymentMethod 支付方式
type PaymentMethod string

// 支付方式常量
const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodMobile       PaymentMethod = "mobile"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// OrderType 订单类型
type OrderType string

// 订单类型常量
const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// allowedOrderTransitions 订单状态迁移表。取消单独处理（任意非终态可达）。
var allowedOrderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusConfirmed: true,
	},
	OrderStatusConfirmed: {
		OrderStatusPreparing:       true,
		OrderStatusPendingApproval: true,
	},
	OrderStatusPreparing: {
		OrderStatusReady:           true,
		OrderStatusPendingApproval: true,
	},
	OrderStatusReady: {
		OrderStatusOutForDelivery: true,
		OrderStatusDelivered:      true,
		OrderStatusCompleted:      true,
	},
	OrderStatusOutForDelivery: {
		OrderStatusDelivered: true,
	},
	OrderStatusDelivered: {
		OrderStatusCompleted: true,
	},
	OrderStatusPendingApproval: {
		OrderStatusConfirmed: true,
	},
}

// IsTerminal 判断是否终态
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// IsActive 判断是否活跃订单（厨房视角）
func (s OrderStatus) IsActive() bool {
	return !s.IsTerminal()
}

// CanTransitionTo 校验状态迁移是否允许
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCanceled {
		return !s.IsTerminal()
	}
	next, ok := allowedOrderTransitions[s]
	if !ok {
		return false
	}
	return next[target]
}

// Valid 判断订单状态是否属于枚举域
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCanceled, OrderStatusPendingApproval:
		return true
	}
	return false
}

// Valid 判断支付方式是否属于枚举域
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline,
		PaymentMethodMobile, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Valid 判断订单类型是否属于枚举域
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeDelivery, OrderTypePickup:
		return true
	}
	return false
}
