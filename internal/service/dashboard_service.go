package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/repository"
)

const (
	dashboardCacheTTL       = 45 * time.Second
	dashboardCustomMaxDays  = 90
	dashboardTopItemsLimit  = 5
	dashboardUnpaidAlertMin = 5
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心经营数据。
type DashboardService struct {
	repo           repository.DashboardRepository
	settingService *SettingService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, settingService *SettingService) *DashboardService {
	return &DashboardService{repo: repo, settingService: settingService}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range    string               `json:"range"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Timezone string               `json:"timezone"`
	Currency string               `json:"currency,omitempty"`
	KPI      DashboardKPI         `json:"kpi"`
	Alerts   []DashboardAlertItem `json:"alerts"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	OrdersTotal      int64  `json:"orders_total"`
	ActiveOrders     int64  `json:"active_orders"`
	CompletedOrders  int64  `json:"completed_orders"`
	CanceledOrders   int64  `json:"canceled_orders"`
	FocusOrders      int64  `json:"focus_orders"`
	UnpaidOrders     int64  `json:"unpaid_orders"`
	RevenueCollected string `json:"revenue_collected"`
	RefundsIssued    string `json:"refunds_issued"`
	CompletionRate   string `json:"completion_rate"`
	NewUsers         int64  `json:"new_users"`
	ActiveMenuItems  int64  `json:"active_menu_items"`
	UpcomingBookings int64  `json:"upcoming_bookings"`
}

// DashboardAlertItem 仪表盘告警项
type DashboardAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// DashboardTrendResponse 仪表盘趋势响应
type DashboardTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 趋势点
type DashboardTrendPoint struct {
	Date            string `json:"date"`
	OrdersTotal     int64  `json:"orders_total"`
	OrdersCompleted int64  `json:"orders_completed"`
}

// DashboardRankingsResponse 仪表盘排行榜响应
type DashboardRankingsResponse struct {
	Range          string                     `json:"range"`
	From           string                     `json:"from"`
	To             string                     `json:"to"`
	Timezone       string                     `json:"timezone"`
	TopMenuItems   []DashboardMenuItemRanking `json:"top_menu_items"`
	PaymentMethods []DashboardPaymentMethod   `json:"payment_methods"`
}

// DashboardMenuItemRanking 菜品排行项
type DashboardMenuItemRanking struct {
	MenuItemID uint   `json:"menu_item_id"`
	Name       string `json:"name"`
	Orders     int64  `json:"orders"`
	Quantity   int64  `json:"quantity"`
	Amount     string `json:"amount"`
}

// DashboardPaymentMethod 支付方式统计项
type DashboardPaymentMethod struct {
	Method        string `json:"method"`
	PaymentCount  int64  `json:"payment_count"`
	Amount        string `json:"amount"`
	RefundedCount int64  `json:"refunded_count"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d:%s",
		window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	completionRate := 0.0
	if overview.OrdersTotal > 0 {
		completionRate = float64(overview.CompletedOrders) / float64(overview.OrdersTotal) * 100
	}

	currency := strings.ToUpper(strings.TrimSpace(overview.Currency))
	if currency == "" && s.settingService != nil {
		currency = s.settingService.GetSiteCurrency()
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Currency: currency,
		KPI: DashboardKPI{
			OrdersTotal:      overview.OrdersTotal,
			ActiveOrders:     overview.ActiveOrders,
			CompletedOrders:  overview.CompletedOrders,
			CanceledOrders:   overview.CanceledOrders,
			FocusOrders:      overview.FocusOrders,
			UnpaidOrders:     overview.UnpaidOrders,
			RevenueCollected: formatMoneyValue(overview.RevenueCollected),
			RefundsIssued:    formatMoneyValue(overview.RefundsIssued),
			CompletionRate:   formatPercentValue(completionRate),
			NewUsers:         overview.NewUsers,
			ActiveMenuItems:  overview.ActiveMenuItems,
			UpcomingBookings: overview.UpcomingBookings,
		},
		Alerts: buildDashboardAlerts(overview),
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetTrends 获取仪表盘趋势
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	rows, err := s.repo.GetOrderTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	rowMap := make(map[string]repository.DashboardOrderTrendRow, len(rows))
	for _, item := range rows {
		rowMap[item.Day] = item
	}

	points := make([]DashboardTrendPoint, 0)
	for cursor := time.Date(window.startAt.Year(), window.startAt.Month(), window.startAt.Day(), 0, 0, 0, 0, window.startAt.Location()); cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		item := rowMap[day]
		points = append(points, DashboardTrendPoint{
			Date:            day,
			OrdersTotal:     item.OrdersTotal,
			OrdersCompleted: item.OrdersCompleted,
		})
	}

	response := &DashboardTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetRankings 获取仪表盘排行榜
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:rankings:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardRankingsResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	itemRows, err := s.repo.GetTopMenuItems(window.startAt, window.endAt, dashboardTopItemsLimit)
	if err != nil {
		return nil, err
	}
	methodRows, err := s.repo.GetPaymentMethodStats(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	topItems := make([]DashboardMenuItemRanking, 0, len(itemRows))
	for _, item := range itemRows {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = "-"
		}
		topItems = append(topItems, DashboardMenuItemRanking{
			MenuItemID: item.MenuItemID,
			Name:       name,
			Orders:     item.Orders,
			Quantity:   item.Quantity,
			Amount:     formatMoneyValue(item.Amount),
		})
	}

	methods := make([]DashboardPaymentMethod, 0, len(methodRows))
	for _, item := range methodRows {
		methods = append(methods, DashboardPaymentMethod{
			Method:        strings.TrimSpace(item.Method),
			PaymentCount:  item.PaymentCount,
			Amount:        formatMoneyValue(item.Amount),
			RefundedCount: item.RefundedCount,
		})
	}

	response := &DashboardRankingsResponse{
		Range:          window.rangeKey,
		From:           window.startAt.Format(time.RFC3339),
		To:             window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:       window.timezone,
		TopMenuItems:   topItems,
		PaymentMethods: methods,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}

	timezone := strings.TrimSpace(input.Timezone)
	location := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			location = parsed
		} else {
			timezone = ""
		}
	}
	if timezone == "" {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := dashboardWindow{rangeKey: rangeKey, timezone: timezone}

	switch rangeKey {
	case "today":
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.In(location)
		endAt := input.To.In(location)
		if endAt.Before(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if endAt.Sub(startAt) > time.Hour*24*dashboardCustomMaxDays {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt.Add(time.Second)
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

func formatMoneyValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func buildDashboardAlerts(overview repository.DashboardOverviewRow) []DashboardAlertItem {
	alerts := make([]DashboardAlertItem, 0, 2)
	if overview.FocusOrders > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "focus_orders", Level: "warning", Value: overview.FocusOrders})
	}
	if overview.UnpaidOrders >= dashboardUnpaidAlertMin {
		alerts = append(alerts, DashboardAlertItem{Type: "unpaid_orders", Level: "warning", Value: overview.UnpaidOrders})
	}
	return alerts
}
