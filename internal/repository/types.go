package repository

import (
	"time"

	"github.com/tavolo-next/internal/models"
)

// MenuItemListFilter 查询菜品列表的过滤条件
type MenuItemListFilter struct {
	Page          int
	PageSize      int
	CategoryID    string
	Search        string
	OnlyAvailable bool
	WithCategory  bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Type          models.OrderType
	OrderNo       string
	TableNumber   *int
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// FocusOrderSort 重点单排序方式
type FocusOrderSort string

// 重点单排序常量
const (
	FocusOrderSortPriority  FocusOrderSort = "priority"
	FocusOrderSortOrderDate FocusOrderSort = "order_date"
	FocusOrderSortFocusedAt FocusOrderSort = "focused_at"
)

// FocusOrderFilter 查询重点单队列的过滤条件
type FocusOrderFilter struct {
	ActiveOnly bool
	Priority   *int
	Sort       FocusOrderSort
}

// ReservationListFilter 查询预订列表的过滤条件
type ReservationListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	TableID  uint
	Status   string
	From     *time.Time
	To       *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}
