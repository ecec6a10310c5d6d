package service

import (
	"testing"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/shopspring/decimal"
)

func newTestPaymentService(t *testing.T) (*PaymentService, *OrderService) {
	t.Helper()
	setupServiceTestDB(t)
	orderRepo := repository.NewOrderRepository(models.DB)
	paymentRepo := repository.NewOrderPaymentRepository(models.DB)
	orderSvc := NewOrderService(
		orderRepo,
		paymentRepo,
		repository.NewMenuItemRepository(models.DB),
		NewSettingService(repository.NewSettingRepository(models.DB)),
		nil,
	)
	return NewPaymentService(orderRepo, paymentRepo, nil), orderSvc
}

func TestAddPaymentValidation(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, orderSvc, item, 1)

	if _, _, err := svc.AddPayment(AddPaymentInput{OrderID: order.ID, Method: "crypto", Amount: decimal.NewFromInt(10)}); err != ErrPaymentMethodInvalid {
		t.Fatalf("expected method invalid, got %v", err)
	}
	if _, _, err := svc.AddPayment(AddPaymentInput{OrderID: order.ID, Method: models.PaymentMethodCash, Amount: decimal.Zero}); err != ErrPaymentAmountInvalid {
		t.Fatalf("expected amount invalid, got %v", err)
	}
	if _, _, err := svc.AddPayment(AddPaymentInput{OrderID: 99999, Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(10)}); err != ErrOrderNotFound {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestAddPaymentPartialThenCompleted(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1) // total 20.00

	updated, payment, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(8),
		Actor:   models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("add payment failed: %v", err)
	}
	if payment.Status != models.PaymentStateCompleted {
		t.Fatalf("expected payment completed, got %s", payment.Status)
	}
	if payment.TransactionRef == "" {
		t.Fatalf("expected generated transaction ref")
	}
	if updated.PaymentStatus != models.PaymentStatusPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", updated.PaymentStatus)
	}
	if !updated.RemainingAmount.Decimal.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected remaining=12, got %s", updated.RemainingAmount.Decimal)
	}

	updated, _, err = svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCard,
		Amount:  decimal.NewFromInt(12),
		Actor:   models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentStatusCompleted || !updated.IsFullyPaid {
		t.Fatalf("expected completed and fully paid, got %s", updated.PaymentStatus)
	}

	if _, _, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(1),
		Actor:   models.ActorUser(1),
	}); err != ErrNothingLeftToPay {
		t.Fatalf("expected nothing left to pay, got %v", err)
	}
}

func TestAddPaymentClampsToRemaining(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)

	updated, payment, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(50),
		Actor:   models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("add payment failed: %v", err)
	}
	if !payment.Amount.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected clamped amount=20, got %s", payment.Amount.Decimal)
	}
	if updated.PaymentStatus != models.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.PaymentStatus)
	}
	if !updated.RemainingAmount.Decimal.IsZero() {
		t.Fatalf("expected remaining=0, got %s", updated.RemainingAmount.Decimal)
	}
}

func TestAddPaymentOnCanceledOrder(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)
	if _, err := orderSvc.CancelOrder(order.ID, "changed mind", models.ActorCustomer); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, _, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(5),
	}); err != ErrOrderTerminal {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestAddPaymentOnCompletedOrder(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)
	for _, status := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
	} {
		if _, err := orderSvc.UpdateStatus(order.ID, status, "", models.ActorUser(1)); err != nil {
			t.Fatalf("walk to %s failed: %v", status, err)
		}
	}

	// 尾款未结清也不允许再入账
	if _, _, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(5),
	}); err != ErrOrderTerminal {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestRefundPayment(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)

	_, payment, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCard,
		Amount:  decimal.NewFromInt(20),
		Actor:   models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("add payment failed: %v", err)
	}

	if _, _, err := svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(30),
	}); err != ErrRefundExceedsAmount {
		t.Fatalf("expected refund exceeds amount, got %v", err)
	}

	updated, refunded, err := svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(5),
		Reason:    "cold dish",
		Actor:     models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if refunded.Status != models.PaymentStatePartiallyRefunded {
		t.Fatalf("expected partially_refunded, got %s", refunded.Status)
	}
	if refunded.IsRefunded {
		t.Fatalf("expected is_refunded=false after partial refund")
	}
	if updated.PaymentStatus != models.PaymentStatusPartiallyPaid {
		t.Fatalf("expected order partially_paid, got %s", updated.PaymentStatus)
	}
	if !updated.RemainingAmount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected remaining=5, got %s", updated.RemainingAmount.Decimal)
	}

	updated, refunded, err = svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(15),
		Actor:     models.ActorUser(1),
	})
	if err != nil {
		t.Fatalf("full refund failed: %v", err)
	}
	if refunded.Status != models.PaymentStateRefunded || !refunded.IsRefunded {
		t.Fatalf("expected fully refunded, got %s", refunded.Status)
	}
	// 存在支付且全部退款，整单记为 refunded
	if updated.PaymentStatus != models.PaymentStatusRefunded {
		t.Fatalf("expected order refunded, got %s", updated.PaymentStatus)
	}

	if _, _, err := svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(1),
	}); err != ErrPaymentAlreadyRefunded {
		t.Fatalf("expected already refunded, got %v", err)
	}
}

func TestRefundPaymentNotFound(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)

	if _, _, err := svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: 12345,
		Amount:    decimal.NewFromInt(1),
	}); err != ErrPaymentNotFound {
		t.Fatalf("expected payment not found, got %v", err)
	}
	if _, _, err := svc.RefundPayment(RefundPaymentInput{
		OrderID:   order.ID,
		PaymentID: 1,
		Amount:    decimal.Zero,
	}); err != ErrPaymentAmountInvalid {
		t.Fatalf("expected amount invalid, got %v", err)
	}
}

func TestCancelOrderAutoRefundsPayments(t *testing.T) {
	svc, orderSvc := newTestPaymentService(t)
	item := seedTestMenuItem(t, "salmon", 20, true)
	order := createTestOrder(t, orderSvc, item, 1)

	if _, _, err := svc.AddPayment(AddPaymentInput{
		OrderID: order.ID,
		Method:  models.PaymentMethodCash,
		Amount:  decimal.NewFromInt(20),
		Actor:   models.ActorUser(1),
	}); err != nil {
		t.Fatalf("add payment failed: %v", err)
	}

	canceled, err := orderSvc.CancelOrder(order.ID, "kitchen closed", models.ActorUser(1))
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != models.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if canceled.PaymentStatus != models.PaymentStatusRefunded {
		t.Fatalf("expected payments refunded, got %s", canceled.PaymentStatus)
	}

	payments, err := svc.ListPayments(order.ID)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].Status != models.PaymentStateRefunded || !payments[0].IsRefunded {
		t.Fatalf("expected payment refunded, got %s", payments[0].Status)
	}
	if payments[0].RefundReason != "kitchen closed" {
		t.Fatalf("expected cancel reason on refund, got %q", payments[0].RefundReason)
	}

	// 已取消订单重复取消报错
	if _, err := orderSvc.CancelOrder(order.ID, "again", models.ActorUser(1)); err != ErrOrderAlreadyCanceled {
		t.Fatalf("expected already canceled, got %v", err)
	}
}
