package service

import (
	"time"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

// GetOrder 管理端获取订单详情
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNo 根据订单号获取订单
func (s *OrderService) GetOrderByNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByUser 获取顾客自己的订单详情
func (s *OrderService) GetOrderByUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser 顾客订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrOrderNotFound
	}
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// ListFocusOrders 重点单队列，按优先级与标记时间排序
func (s *OrderService) ListFocusOrders(filter repository.FocusOrderFilter) ([]models.Order, error) {
	return s.orderRepo.ListFocus(filter)
}

// ConfirmedOrdersSnapshot 轮询追赶结果，ServerTime 供下一次增量请求使用
type ConfirmedOrdersSnapshot struct {
	Orders     []models.Order
	ServerTime time.Time
}

// GetConfirmedOrdersSince 厨房轮询已确认订单的增量快照。
// 返回当前服务器 UTC 时间，调用方以它作为下一次的 since，避免时钟漂移漏单。
func (s *OrderService) GetConfirmedOrdersSince(since time.Time) (ConfirmedOrdersSnapshot, error) {
	serverTime := time.Now().UTC()
	orders, err := s.orderRepo.ListConfirmedSince(since)
	if err != nil {
		return ConfirmedOrdersSnapshot{}, err
	}
	return ConfirmedOrdersSnapshot{
		Orders:     orders,
		ServerTime: serverTime,
	}, nil
}
