package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 订单时间兜底常量
const (
	defaultPrepTimeMinutes    = 30
	defaultDelayExpireMinutes = 15
	delayFallbackMinutes      = 30
)

// 优先级取值范围，1 最高
const (
	priorityMin     = 1
	priorityMax     = 5
	priorityDefault = 3
)

// OrderService 订单生命周期服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	paymentRepo    repository.OrderPaymentRepository
	menuItemRepo   repository.MenuItemRepository
	settingService *SettingService
	notifier       *NotificationService
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, paymentRepo repository.OrderPaymentRepository, menuItemRepo repository.MenuItemRepository, settingService *SettingService, notifier *NotificationService) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		paymentRepo:    paymentRepo,
		menuItemRepo:   menuItemRepo,
		settingService: settingService,
		notifier:       notifier,
	}
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	MenuItemID          uint
	VariationCode       string
	Quantity            int
	SpecialInstructions string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID             uint
	Type               models.OrderType
	TableNumber        *int
	CustomerEmail      string
	DeliveryAddress    string
	Tip                decimal.Decimal
	DiscountPercentage decimal.Decimal
	Items              []CreateOrderItem
	Actor              models.Actor
}

// CreateOrder 创建订单，金额在服务端基于菜单快照计算
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if !input.Type.Valid() {
		return nil, ErrOrderTypeInvalid
	}
	if input.Type == models.OrderTypeDineIn && input.TableNumber == nil {
		return nil, ErrTableNumberRequired
	}
	if input.Type == models.OrderTypeDelivery && strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, ErrDeliveryAddressNeeded
	}

	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrInvalidOrderItem
	}

	orderItems, subTotal, err := s.buildOrderItems(items)
	if err != nil {
		return nil, err
	}

	taxRate := s.settingService.GetTaxRate(decimal.Zero)
	tax := subTotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	deliveryFee := decimal.Zero
	if input.Type == models.OrderTypeDelivery {
		deliveryFee = s.settingService.GetDeliveryFee(decimal.Zero).Round(2)
	}

	discountPct := input.DiscountPercentage
	if discountPct.IsNegative() {
		discountPct = decimal.Zero
	}
	discount := subTotal.Mul(discountPct).Div(decimal.NewFromInt(100)).Round(2)

	tip := input.Tip
	if tip.IsNegative() {
		tip = decimal.Zero
	}

	total := subTotal.Add(tax).Add(deliveryFee).Add(tip).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	now := time.Now()
	prepMinutes := s.settingService.GetPrepTimeMinutes(defaultPrepTimeMinutes)
	estimated := now.Add(time.Duration(prepMinutes) * time.Minute)

	order := &models.Order{
		OrderNo:               generateOrderNo(),
		UserID:                input.UserID,
		Type:                  input.Type,
		TableNumber:           input.TableNumber,
		CustomerEmail:         strings.TrimSpace(input.CustomerEmail),
		DeliveryAddress:       strings.TrimSpace(input.DeliveryAddress),
		Status:                models.OrderStatusPending,
		PaymentStatus:         models.PaymentStatusPending,
		Currency:              s.settingService.GetSiteCurrency(),
		SubTotal:              models.NewMoneyFromDecimal(subTotal),
		Tax:                   models.NewMoneyFromDecimal(tax),
		DeliveryFee:           models.NewMoneyFromDecimal(deliveryFee),
		Discount:              models.NewMoneyFromDecimal(discount),
		DiscountPercentage:    models.NewMoneyFromDecimal(discountPct),
		Tip:                   models.NewMoneyFromDecimal(tip),
		Total:                 models.NewMoneyFromDecimal(total),
		TotalPaid:             models.NewMoneyFromDecimal(decimal.Zero),
		RemainingAmount:       models.NewMoneyFromDecimal(total),
		IsFullyPaid:           false,
		OrderDate:             now,
		EstimatedDeliveryTime: &estimated,
		CreatedBy:             input.Actor.String(),
		UpdatedBy:             input.Actor.String(),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}
		return orderRepo.AppendHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: "",
			ToStatus:   models.OrderStatusPending,
			Notes:      "order created",
			ChangedBy:  input.Actor.String(),
			ChangedAt:  now,
		})
	})
	if err != nil {
		return nil, ErrOrderCreateFailed
	}
	order.Items = orderItems

	s.notifier.PublishOrderEvent(context.Background(), order, "", OrderEventCreated)
	s.notifier.EnqueueStatusEmail(order)
	return order, nil
}

func (s *OrderService) buildOrderItems(items []CreateOrderItem) ([]models.OrderItem, decimal.Decimal, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	subTotal := decimal.Zero
	for _, item := range items {
		menuItem, err := s.menuItemRepo.GetByID(item.MenuItemID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if menuItem == nil {
			return nil, decimal.Zero, ErrMenuItemNotFound
		}
		if !menuItem.IsAvailable {
			return nil, decimal.Zero, ErrMenuItemUnavailable
		}

		unitPrice := menuItem.PriceAmount.Decimal
		variationName := ""
		if item.VariationCode != "" {
			variation, err := s.menuItemRepo.GetVariation(menuItem.ID, item.VariationCode)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if variation == nil {
				return nil, decimal.Zero, ErrVariationNotFound
			}
			if !variation.IsAvailable {
				return nil, decimal.Zero, ErrMenuItemUnavailable
			}
			unitPrice = variation.PriceAmount.Decimal
			variationName = variation.NameJSON.Localized()
			if variationName == "" {
				variationName = variation.Code
			}
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		subTotal = subTotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.NameJSON.Localized(),
			Variation:           variationName,
			Quantity:            item.Quantity,
			UnitPrice:           models.NewMoneyFromDecimal(unitPrice),
			TotalPrice:          models.NewMoneyFromDecimal(lineTotal),
			SpecialInstructions: strings.TrimSpace(item.SpecialInstructions),
		})
	}
	return orderItems, subTotal, nil
}

// UpdateStatus 推进订单状态。取消走 CancelOrder，带退款语义。
func (s *OrderService) UpdateStatus(orderID uint, target models.OrderStatus, notes string, actor models.Actor) (*models.Order, error) {
	if !target.Valid() || target == models.OrderStatusCanceled {
		return nil, ErrOrderStatusInvalid
	}

	var order *models.Order
	var previous models.OrderStatus
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		previous = order.Status
		if order.Status == target {
			return nil
		}
		if order.Status.IsTerminal() {
			return ErrOrderTerminal
		}
		if !order.Status.CanTransitionTo(target) {
			return ErrOrderStatusInvalid
		}

		now := time.Now()
		updates := map[string]interface{}{
			"updated_at": now,
			"updated_by": actor.String(),
		}
		if target == models.OrderStatusDelivered {
			updates["actual_delivery_time"] = now
		}
		if err := orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   target,
			Notes:      strings.TrimSpace(notes),
			ChangedBy:  actor.String(),
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		order.Status = target
		order.UpdatedAt = now
		order.UpdatedBy = actor.String()
		if target == models.OrderStatusDelivered {
			order.ActualDeliveryTime = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PublishOrderEvent(context.Background(), order, previous, OrderEventStatusChanged)
	s.notifier.EnqueueStatusEmail(order)
	return order, nil
}

// CancelOrder 取消订单并自动退回已完成的支付
func (s *OrderService) CancelOrder(orderID uint, reason string, actor models.Actor) (*models.Order, error) {
	var order *models.Order
	var previous models.OrderStatus
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		previous = order.Status
		if order.Status == models.OrderStatusCanceled {
			return ErrOrderAlreadyCanceled
		}
		if order.Status.IsTerminal() {
			return ErrOrderTerminal
		}

		now := time.Now()
		cancelReason := strings.TrimSpace(reason)
		refundReason := cancelReason
		if refundReason == "" {
			refundReason = "order canceled"
		}

		if err := refundCapturedPayments(paymentRepo, order, refundReason, now); err != nil {
			return err
		}

		result := reconcilePayments(order.Total, order.Payments)
		updates := reconcileUpdates(result)
		updates["cancellation_reason"] = cancelReason
		updates["proposed_delivery_time"] = nil
		updates["updated_at"] = now
		updates["updated_by"] = actor.String()
		if err := orderRepo.UpdateStatus(order.ID, models.OrderStatusCanceled, updates); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   models.OrderStatusCanceled,
			Notes:      cancelReason,
			ChangedBy:  actor.String(),
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		order.Status = models.OrderStatusCanceled
		order.CancellationReason = cancelReason
		order.ProposedDeliveryTime = nil
		order.PaymentStatus = result.Status
		order.TotalPaid = result.TotalPaid
		order.RemainingAmount = result.Remaining
		order.IsFullyPaid = result.IsFullyPaid
		order.UpdatedAt = now
		order.UpdatedBy = actor.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PublishOrderEvent(context.Background(), order, previous, OrderEventCanceled)
	s.notifier.EnqueueStatusEmail(order)
	return order, nil
}

// RequestDelay 员工发起送达时间延迟，等待顾客确认
func (s *OrderService) RequestDelay(orderID uint, proposed time.Time, reason string, actor models.Actor) (*models.Order, error) {
	if !proposed.After(time.Now()) {
		return nil, ErrDelayTimeInvalid
	}

	var order *models.Order
	var previous models.OrderStatus
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		previous = order.Status
		if !order.Status.CanTransitionTo(models.OrderStatusPendingApproval) {
			return ErrOrderStatusInvalid
		}

		now := time.Now()
		updates := map[string]interface{}{
			"proposed_delivery_time": proposed,
			"updated_at":             now,
			"updated_by":             actor.String(),
		}
		if err := orderRepo.UpdateStatus(order.ID, models.OrderStatusPendingApproval, updates); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   models.OrderStatusPendingApproval,
			Notes:      strings.TrimSpace(reason),
			ChangedBy:  actor.String(),
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		order.Status = models.OrderStatusPendingApproval
		order.ProposedDeliveryTime = &proposed
		order.UpdatedAt = now
		order.UpdatedBy = actor.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	expireMinutes := s.settingService.GetDelayExpireMinutes(defaultDelayExpireMinutes)
	s.notifier.EnqueueDelayExpire(order.ID, time.Duration(expireMinutes)*time.Minute)
	s.notifier.PublishOrderEvent(context.Background(), order, previous, OrderEventDelayRequested)
	s.notifier.EnqueueStatusEmail(order)
	return order, nil
}

// ApproveDelay 顾客确认延迟，订单回到 confirmed，新送达时间生效
func (s *OrderService) ApproveDelay(orderID uint) (*models.Order, error) {
	return s.resolveDelay(orderID, true, "delay approved", models.ActorCustomer)
}

// RejectDelay 顾客拒绝延迟，订单取消并全额退款
func (s *OrderService) RejectDelay(orderID uint) (*models.Order, error) {
	return s.resolveDelay(orderID, false, "Customer rejected delay", models.ActorCustomer)
}

// ExpireDelay 延迟确认超时，视为默认同意
func (s *OrderService) ExpireDelay(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Status != models.OrderStatusPendingApproval {
		return order, nil
	}
	return s.resolveDelay(orderID, true, "delay auto-approved after timeout", models.ActorScheduler)
}

func (s *OrderService) resolveDelay(orderID uint, approve bool, notes string, actor models.Actor) (*models.Order, error) {
	var order *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		if order.Status != models.OrderStatusPendingApproval {
			return ErrDelayNotPending
		}

		now := time.Now()
		if !approve {
			// 拒绝延迟按取消流程处理，已收款整单退款
			if err := refundCapturedPayments(s.paymentRepo.WithTx(tx), order, notes, now); err != nil {
				return err
			}
			result := reconcilePayments(order.Total, order.Payments)
			updates := reconcileUpdates(result)
			updates["cancellation_reason"] = notes
			updates["proposed_delivery_time"] = nil
			updates["updated_at"] = now
			updates["updated_by"] = actor.String()
			if err := orderRepo.UpdateStatus(order.ID, models.OrderStatusCanceled, updates); err != nil {
				return err
			}
			if err := orderRepo.AppendHistory(&models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: models.OrderStatusPendingApproval,
				ToStatus:   models.OrderStatusCanceled,
				Notes:      notes,
				ChangedBy:  actor.String(),
				ChangedAt:  now,
			}); err != nil {
				return err
			}

			order.Status = models.OrderStatusCanceled
			order.CancellationReason = notes
			order.ProposedDeliveryTime = nil
			order.PaymentStatus = result.Status
			order.TotalPaid = result.TotalPaid
			order.RemainingAmount = result.Remaining
			order.IsFullyPaid = result.IsFullyPaid
			order.UpdatedAt = now
			order.UpdatedBy = actor.String()
			return nil
		}

		// 无提案时保留原送达估计，两者都缺失才兜底 now+30
		estimated := order.ProposedDeliveryTime
		if estimated == nil {
			estimated = order.EstimatedDeliveryTime
		}
		if estimated == nil {
			fallback := now.Add(delayFallbackMinutes * time.Minute)
			estimated = &fallback
		}
		updates := map[string]interface{}{
			"proposed_delivery_time":  nil,
			"estimated_delivery_time": *estimated,
			"updated_at":              now,
			"updated_by":              actor.String(),
		}
		if err := orderRepo.UpdateStatus(order.ID, models.OrderStatusConfirmed, updates); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: models.OrderStatusPendingApproval,
			ToStatus:   models.OrderStatusConfirmed,
			Notes:      notes,
			ChangedBy:  actor.String(),
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		order.Status = models.OrderStatusConfirmed
		order.ProposedDeliveryTime = nil
		order.EstimatedDeliveryTime = estimated
		order.UpdatedAt = now
		order.UpdatedBy = actor.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := OrderEventDelayResolved
	if order.Status == models.OrderStatusCanceled {
		event = OrderEventCanceled
	}
	s.notifier.PublishOrderEvent(context.Background(), order, models.OrderStatusPendingApproval, event)
	s.notifier.EnqueueStatusEmail(order)
	return order, nil
}

// refundCapturedPayments 已完成且未退满的支付记录整单退款
func refundCapturedPayments(paymentRepo repository.OrderPaymentRepository, order *models.Order, reason string, now time.Time) error {
	for i := range order.Payments {
		payment := &order.Payments[i]
		if payment.Status != models.PaymentStateCompleted && payment.Status != models.PaymentStatePartiallyRefunded {
			continue
		}
		if payment.RefundedAmount.Decimal.GreaterThanOrEqual(payment.Amount.Decimal) {
			continue
		}
		payment.RefundedAmount = payment.Amount
		payment.IsRefunded = true
		payment.Status = models.PaymentStateRefunded
		payment.RefundDate = &now
		payment.RefundReason = reason
		if err := paymentRepo.Update(payment); err != nil {
			return err
		}
	}
	return nil
}

// ExpireOverdueDelays 兜底扫描超时未确认的延迟请求
func (s *OrderService) ExpireOverdueDelays(now time.Time) error {
	expireMinutes := defaultDelayExpireMinutes
	if s.settingService != nil {
		expireMinutes = s.settingService.GetDelayExpireMinutes(defaultDelayExpireMinutes)
	}
	cutoff := now.Add(-time.Duration(expireMinutes) * time.Minute)
	ids, err := s.orderRepo.ListPendingDelayBefore(cutoff, 100)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.ExpireDelay(id); err != nil && !errors.Is(err, ErrDelayNotPending) {
			logger.Warnw("order_delay_expire_sweep_failed", "order_id", id, "error", err)
		}
	}
	return nil
}

// FocusInput 重点单标记输入
type FocusInput struct {
	Focus    bool
	Priority *int
	Reason   string
	Actor    models.Actor
}

// ToggleFocus 标记/取消重点单，重复操作幂等
func (s *OrderService) ToggleFocus(orderID uint, input FocusInput) (*models.Order, error) {
	if input.Priority != nil && (*input.Priority < priorityMin || *input.Priority > priorityMax) {
		return nil, ErrPriorityInvalid
	}

	var order *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked

		now := time.Now()
		updates := map[string]interface{}{
			"updated_at": now,
			"updated_by": input.Actor.String(),
		}
		if input.Focus {
			priority := priorityDefault
			if input.Priority != nil {
				priority = *input.Priority
			} else if order.Priority != nil {
				priority = *order.Priority
			}
			updates["is_focus_order"] = true
			updates["priority"] = priority
			updates["focus_reason"] = strings.TrimSpace(input.Reason)
			if !order.IsFocusOrder {
				updates["focused_at"] = now
				updates["focused_by"] = input.Actor.String()
				order.FocusedAt = &now
				order.FocusedBy = input.Actor.String()
			}
			order.IsFocusOrder = true
			order.Priority = &priority
			order.FocusReason = strings.TrimSpace(input.Reason)
		} else {
			updates["is_focus_order"] = false
			updates["priority"] = nil
			updates["focus_reason"] = ""
			updates["focused_at"] = nil
			updates["focused_by"] = ""
			order.IsFocusOrder = false
			order.Priority = nil
			order.FocusReason = ""
			order.FocusedAt = nil
			order.FocusedBy = ""
		}
		order.UpdatedAt = now
		order.UpdatedBy = input.Actor.String()
		return orderRepo.UpdateFields(order.ID, updates)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PublishOrderEvent(context.Background(), order, order.Status, OrderEventFocusChanged)
	return order, nil
}

// DeleteOrder 软删除订单，已删除的订单再次删除按已删除报错
func (s *OrderService) DeleteOrder(orderID uint) error {
	order, err := s.orderRepo.GetByIDUnscoped(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.DeletedAt.Valid {
		return ErrOrderAlreadyDeleted
	}
	return s.orderRepo.SoftDelete(orderID)
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("TN%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// mergeCreateOrderItems 合并重复菜品的下单项
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[string]int)
	for _, item := range items {
		if item.MenuItemID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		key := fmt.Sprintf("%d:%s", item.MenuItemID, item.VariationCode)
		if idx, ok := indexMap[key]; ok {
			merged[idx].Quantity += item.Quantity
			if merged[idx].SpecialInstructions == "" {
				merged[idx].SpecialInstructions = item.SpecialInstructions
			}
			continue
		}
		indexMap[key] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
