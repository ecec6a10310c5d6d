package repository

import (
	"fmt"
	"time"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
	GetTopMenuItems(startAt, endAt time.Time, limit int) ([]DashboardMenuItemRankingRow, error)
	GetPaymentMethodStats(startAt, endAt time.Time) ([]DashboardPaymentMethodRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal      int64
	ActiveOrders     int64
	CompletedOrders  int64
	CanceledOrders   int64
	FocusOrders      int64
	UnpaidOrders     int64
	RevenueCollected float64
	RefundsIssued    float64
	NewUsers         int64
	ActiveMenuItems  int64
	UpcomingBookings int64
	Currency         string
}

// DashboardOrderTrendRow 订单趋势统计
type DashboardOrderTrendRow struct {
	Day             string
	OrdersTotal     int64
	OrdersCompleted int64
}

// DashboardMenuItemRankingRow 菜品排行原始行
type DashboardMenuItemRankingRow struct {
	MenuItemID uint
	Name       string
	Orders     int64
	Quantity   int64
	Amount     float64
}

// DashboardPaymentMethodRow 支付方式统计行
type DashboardPaymentMethodRow struct {
	Method        string
	PaymentCount  int64
	Amount        float64
	RefundedCount int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func activeOrderStatuses() []models.OrderStatus {
	return []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
		models.OrderStatusPendingApproval,
	}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status IN ?", activeOrderStatuses()).Count(&result.ActiveOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", models.OrderStatusCompleted).Count(&result.CompletedOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", models.OrderStatusCanceled).Count(&result.CanceledOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("is_focus_order = ? AND status IN ?", true, activeOrderStatuses()).Count(&result.FocusOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().
		Where("status IN ? AND payment_status IN ?", activeOrderStatuses(), []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusPartiallyPaid}).
		Count(&result.UnpaidOrders).Error; err != nil {
		return result, err
	}

	paymentBase := func() *gorm.DB {
		return r.db.Model(&models.OrderPayment{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := paymentBase().
		Where("status IN ?", []models.PaymentState{models.PaymentStateCompleted, models.PaymentStatePartiallyRefunded}).
		Select("COALESCE(SUM(amount - refunded_amount), 0)").
		Scan(&result.RevenueCollected).Error; err != nil {
		return result, err
	}
	if err := paymentBase().
		Select("COALESCE(SUM(refunded_amount), 0)").
		Scan(&result.RefundsIssued).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.MenuItem{}).
		Where("is_available = ?", true).
		Count(&result.ActiveMenuItems).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Reservation{}).
		Where("starts_at >= ? AND starts_at < ? AND status = ?", startAt, endAt, constants.ReservationStatusBooked).
		Count(&result.UpcomingBookings).Error; err != nil {
		return result, err
	}

	_ = r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ? AND currency <> ''", startAt, endAt).
		Order("id DESC").
		Limit(1).
		Pluck("currency", &result.Currency).Error

	return result, nil
}

// GetOrderTrends 获取订单趋势
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	type totalRow struct {
		Day   string
		Total int64
	}
	type completedRow struct {
		Day       string
		Completed int64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var totals []totalRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var completeds []completedRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as completed", dayExpr)).
		Where("created_at >= ? AND created_at < ? AND status = ?", startAt, endAt, models.OrderStatusCompleted).
		Group(dayExpr).
		Order("day asc").
		Scan(&completeds).Error; err != nil {
		return nil, err
	}

	completedMap := make(map[string]int64, len(completeds))
	for _, item := range completeds {
		completedMap[item.Day] = item.Completed
	}

	result := make([]DashboardOrderTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardOrderTrendRow{
			Day:             item.Day,
			OrdersTotal:     item.Total,
			OrdersCompleted: completedMap[item.Day],
		})
	}
	return result, nil
}

// GetTopMenuItems 获取菜品排行榜
func (r *GormDashboardRepository) GetTopMenuItems(startAt, endAt time.Time, limit int) ([]DashboardMenuItemRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardMenuItemRankingRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.menu_item_id as menu_item_id,
			order_items.name as name,
			COUNT(DISTINCT order_items.order_id) as orders,
			COALESCE(SUM(order_items.quantity), 0) as quantity,
			COALESCE(SUM(order_items.total_price), 0) as amount
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status <> ?", startAt, endAt, models.OrderStatusCanceled).
		Group("order_items.menu_item_id, order_items.name").
		Order("amount DESC, quantity DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPaymentMethodStats 获取支付方式统计
func (r *GormDashboardRepository) GetPaymentMethodStats(startAt, endAt time.Time) ([]DashboardPaymentMethodRow, error) {
	rows := make([]DashboardPaymentMethodRow, 0)
	if err := r.db.Model(&models.OrderPayment{}).
		Select(`
			method,
			COUNT(*) as payment_count,
			COALESCE(SUM(CASE WHEN status IN ('completed', 'partially_refunded') THEN amount - refunded_amount ELSE 0 END), 0) as amount,
			SUM(CASE WHEN is_refunded THEN 1 ELSE 0 END) as refunded_count
		`).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("method").
		Order("amount DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
