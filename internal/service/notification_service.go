package service

import (
	"context"
	"time"

	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/queue"
)

// OrderEvent 厨房/前台实时推送的订单事件，携带变更前后状态与订单全量快照，
// 消费端掉线后可用 confirmed-since 查询追赶
type OrderEvent struct {
	Event          string        `json:"event"`
	OrderID        uint          `json:"order_id"`
	OrderNo        string        `json:"order_no"`
	PreviousStatus string        `json:"previous_status,omitempty"`
	Status         string        `json:"status"`
	IsFocus        bool          `json:"is_focus"`
	Priority       *int          `json:"priority,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
	Order          *models.Order `json:"order,omitempty"`
}

// 订单事件类型
const (
	OrderEventCreated         = "order_created"
	OrderEventStatusChanged   = "order_status_changed"
	OrderEventCanceled        = "order_canceled"
	OrderEventDelayRequested  = "order_delay_requested"
	OrderEventDelayResolved   = "order_delay_resolved"
	OrderEventFocusChanged    = "order_focus_changed"
	OrderEventPaymentRecorded = "order_payment_recorded"
	OrderEventPaymentRefunded = "order_payment_refunded"
)

// NotificationService 订单变更通知服务。
// 推送与邮件都是尽力而为，失败只记日志，不阻塞订单事务之外的主流程。
type NotificationService struct {
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient *queue.Client) *NotificationService {
	return &NotificationService{queueClient: queueClient}
}

// PublishOrderEvent 向 Redis 频道广播订单事件
func (s *NotificationService) PublishOrderEvent(ctx context.Context, order *models.Order, previous models.OrderStatus, event string) {
	if s == nil || order == nil {
		return
	}
	payload := OrderEvent{
		Event:          event,
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		PreviousStatus: string(previous),
		Status:         string(order.Status),
		IsFocus:        order.IsFocusOrder,
		Priority:       order.Priority,
		OccurredAt:     time.Now().UTC(),
		Order:          order,
	}
	if err := cache.Publish(ctx, constants.OrderEventChannel, payload); err != nil {
		logger.Warnw("order_event_publish_failed",
			"order_id", order.ID,
			"event", event,
			"error", err,
		)
	}
}

// EnqueueStatusEmail 入队订单状态邮件任务
func (s *NotificationService) EnqueueStatusEmail(order *models.Order) {
	if s == nil || s.queueClient == nil || order == nil {
		return
	}
	if order.CustomerEmail == "" {
		return
	}
	err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  string(order.Status),
	})
	if err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}

// EnqueueDelayExpire 入队延迟确认超时任务
func (s *NotificationService) EnqueueDelayExpire(orderID uint, delay time.Duration) {
	if s == nil || s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueOrderDelayExpire(queue.OrderDelayExpirePayload{OrderID: orderID}, delay)
	if err != nil {
		logger.Warnw("order_enqueue_delay_expire_failed",
			"order_id", orderID,
			"error", err,
		)
	}
}
