package constants

// 预订状态常量
const (
	ReservationStatusBooked    = "booked"
	ReservationStatusSeated    = "seated"
	ReservationStatusCompleted = "completed"
	ReservationStatusCanceled  = "canceled"
	ReservationStatusNoShow    = "no_show"
)

// 餐桌状态常量
const (
	TableStatusAvailable   = "available"
	TableStatusOccupied    = "occupied"
	TableStatusUnavailable = "unavailable"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 员工角色常量
const (
	StaffRoleManager = "manager"
	StaffRoleKitchen = "kitchen"
	StaffRoleWaiter  = "waiter"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin = "login"
)

// 队列常量
const (
	QueueDefault         = "default"
	TaskOrderStatusEmail = "order:status_email"
	TaskOrderDelayExpire = "order:delay_expire"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tavolo"
)

// 厨房事件推送频道（相对前缀）
const (
	OrderEventChannel = "orders:events"
)

// 设置键常量
const (
	SettingKeySiteConfig           = "site_config"
	SettingKeyOrderConfig          = "order_config"
	SettingKeySMTPConfig           = "smtp_config"
	SettingKeyCaptchaConfig        = "captcha_config"
	SettingFieldSiteCurrency       = "currency"
	SettingFieldTaxRate            = "tax_rate"
	SettingFieldDeliveryFee        = "delivery_fee"
	SettingFieldPrepTimeMinutes    = "prep_time_minutes"
	SettingFieldDelayExpireMinutes = "delay_approval_expire_minutes"
)

// 币种常量
const (
	SiteCurrencyDefault = "EUR"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}
