package service

import (
	"context"
	"strings"
	"time"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService 订单支付与退款服务。
// 订单上的支付派生字段永远由全量支付记录重算，不做增量修补。
type PaymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.OrderPaymentRepository
	notifier    *NotificationService
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.OrderPaymentRepository, notifier *NotificationService) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		notifier:    notifier,
	}
}

// AddPaymentInput 记录支付输入
type AddPaymentInput struct {
	OrderID        uint
	Method         models.PaymentMethod
	Amount         decimal.Decimal
	TransactionRef string
	Actor          models.Actor
}

// AddPayment 记录一笔支付，金额超出剩余应付时截断到剩余应付
func (s *PaymentService) AddPayment(input AddPaymentInput) (*models.Order, *models.OrderPayment, error) {
	if !input.Method.Valid() {
		return nil, nil, ErrPaymentMethodInvalid
	}
	if !input.Amount.IsPositive() {
		return nil, nil, ErrPaymentAmountInvalid
	}

	var order *models.Order
	var payment *models.OrderPayment
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		if order.Status.IsTerminal() {
			return ErrOrderTerminal
		}
		if !order.RemainingAmount.Decimal.IsPositive() {
			return ErrNothingLeftToPay
		}

		amount := input.Amount.Round(2)
		if amount.GreaterThan(order.RemainingAmount.Decimal) {
			amount = order.RemainingAmount.Decimal
		}

		now := time.Now()
		ref := strings.TrimSpace(input.TransactionRef)
		if ref == "" {
			ref = uuid.NewString()
		}
		payment = &models.OrderPayment{
			OrderID:        order.ID,
			Method:         input.Method,
			Amount:         models.NewMoneyFromDecimal(amount),
			Status:         models.PaymentStateCompleted,
			TransactionRef: ref,
			PaymentDate:    &now,
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}

		payments, err := paymentRepo.ListByOrder(order.ID)
		if err != nil {
			return err
		}
		result := reconcilePayments(order.Total, payments)
		updates := reconcileUpdates(result)
		updates["updated_at"] = now
		updates["updated_by"] = input.Actor.String()
		if err := orderRepo.UpdateFields(order.ID, updates); err != nil {
			return err
		}

		order.Payments = payments
		order.PaymentStatus = result.Status
		order.TotalPaid = result.TotalPaid
		order.RemainingAmount = result.Remaining
		order.IsFullyPaid = result.IsFullyPaid
		order.UpdatedAt = now
		order.UpdatedBy = input.Actor.String()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.PublishOrderEvent(context.Background(), order, order.Status, OrderEventPaymentRecorded)
	return order, payment, nil
}

// RefundPaymentInput 退款输入
type RefundPaymentInput struct {
	OrderID   uint
	PaymentID uint
	Amount    decimal.Decimal
	Reason    string
	Actor     models.Actor
}

// RefundPayment 对单笔支付退款，支持部分退款
func (s *PaymentService) RefundPayment(input RefundPaymentInput) (*models.Order, *models.OrderPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, nil, ErrPaymentAmountInvalid
	}

	var order *models.Order
	var payment *models.OrderPayment
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked

		payment, err = paymentRepo.GetByIDForOrder(input.PaymentID, order.ID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if payment.Status != models.PaymentStateCompleted && payment.Status != models.PaymentStatePartiallyRefunded {
			if payment.Status == models.PaymentStateRefunded {
				return ErrPaymentAlreadyRefunded
			}
			return ErrPaymentNotRefundable
		}

		amount := input.Amount.Round(2)
		refundable := payment.Amount.Decimal.Sub(payment.RefundedAmount.Decimal)
		if amount.GreaterThan(refundable) {
			return ErrRefundExceedsAmount
		}

		now := time.Now()
		refunded := payment.RefundedAmount.Decimal.Add(amount)
		payment.RefundedAmount = models.NewMoneyFromDecimal(refunded)
		payment.RefundDate = &now
		payment.RefundReason = strings.TrimSpace(input.Reason)
		if refunded.GreaterThanOrEqual(payment.Amount.Decimal) {
			payment.IsRefunded = true
			payment.Status = models.PaymentStateRefunded
		} else {
			payment.Status = models.PaymentStatePartiallyRefunded
		}
		if err := paymentRepo.Update(payment); err != nil {
			return err
		}

		payments, err := paymentRepo.ListByOrder(order.ID)
		if err != nil {
			return err
		}
		result := reconcilePayments(order.Total, payments)
		updates := reconcileUpdates(result)
		updates["updated_at"] = now
		updates["updated_by"] = input.Actor.String()
		if err := orderRepo.UpdateFields(order.ID, updates); err != nil {
			return err
		}

		order.Payments = payments
		order.PaymentStatus = result.Status
		order.TotalPaid = result.TotalPaid
		order.RemainingAmount = result.Remaining
		order.IsFullyPaid = result.IsFullyPaid
		order.UpdatedAt = now
		order.UpdatedBy = input.Actor.String()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.PublishOrderEvent(context.Background(), order, order.Status, OrderEventPaymentRefunded)
	return order, payment, nil
}

// ListPayments 获取订单支付记录
func (s *PaymentService) ListPayments(orderID uint) ([]models.OrderPayment, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.paymentRepo.ListByOrder(orderID)
}
