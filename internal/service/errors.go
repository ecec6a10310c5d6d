package service

import "errors"

// 订单相关错误
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderFetchFailed      = errors.New("order fetch failed")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrOrderUpdateFailed     = errors.New("order update failed")
	ErrOrderStatusInvalid    = errors.New("order status transition not allowed")
	ErrOrderTerminal         = errors.New("order already in terminal status")
	ErrOrderAlreadyCanceled  = errors.New("order already canceled")
	ErrOrderAlreadyDeleted   = errors.New("order already deleted")
	ErrInvalidOrderItem      = errors.New("invalid order item")
	ErrOrderTypeInvalid      = errors.New("invalid order type")
	ErrTableNumberRequired   = errors.New("table number required for dine-in order")
	ErrDeliveryAddressNeeded = errors.New("delivery address required for delivery order")
	ErrDelayNotPending       = errors.New("no delay proposal pending approval")
	ErrDelayTimeInvalid      = errors.New("proposed delivery time invalid")
	ErrPriorityInvalid       = errors.New("priority out of range")
)

// 支付相关错误
var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentAmountInvalid   = errors.New("payment amount must be positive")
	ErrPaymentMethodInvalid   = errors.New("invalid payment method")
	ErrPaymentAlreadyRefunded = errors.New("payment already fully refunded")
	ErrPaymentNotRefundable   = errors.New("payment not refundable")
	ErrRefundExceedsAmount    = errors.New("refund exceeds refundable amount")
	ErrNothingLeftToPay       = errors.New("order has no remaining amount to pay")
)

// 菜单与购物篮相关错误
var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryHasMenuItems = errors.New("category still has menu items")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrMenuItemUnavailable  = errors.New("menu item unavailable")
	ErrVariationNotFound    = errors.New("menu item variation not found")
	ErrVariationCodeInvalid = errors.New("menu item variation code invalid")
	ErrSlugExists           = errors.New("slug already exists")
	ErrBasketEmpty          = errors.New("basket is empty")
	ErrBasketItemInvalid    = errors.New("invalid basket item")
)

// 餐桌与预订相关错误
var (
	ErrTableNotFound           = errors.New("dining table not found")
	ErrTableNumberTaken        = errors.New("table number already in use")
	ErrTableInvalid            = errors.New("dining table details invalid")
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrReservationConflict     = errors.New("table already reserved for this time slot")
	ErrReservationStateInvalid = errors.New("reservation status transition not allowed")
	ErrReservationTimeInvalid  = errors.New("reservation time range invalid")
	ErrReservationInvalid      = errors.New("reservation details invalid")
)

// 地址相关错误
var (
	ErrAddressNotFound = errors.New("address not found")
)

// 仪表盘相关错误
var (
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
)

// 账号与认证相关错误
var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrWeakPassword         = errors.New("password too weak")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrUserDisabled         = errors.New("user disabled")
	ErrProfileEmpty         = errors.New("profile update empty")
	ErrUsernameExists       = errors.New("username already exists")
	ErrRoleInvalid          = errors.New("invalid staff role")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
)

// 邮件相关错误
var (
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrSMTPConfigInvalid         = errors.New("smtp config invalid")
)
