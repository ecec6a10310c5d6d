package queue

import (
	"encoding/json"

	"github.com/tavolo-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderDelayExpire 延迟确认超时任务
	TaskOrderDelayExpire = constants.TaskOrderDelayExpire
)

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderDelayExpirePayload 延迟确认超时任务载荷
type OrderDelayExpirePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewOrderDelayExpireTask 创建延迟确认超时任务
func NewOrderDelayExpireTask(payload OrderDelayExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderDelayExpire, body), nil
}
