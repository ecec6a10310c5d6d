package service

import (
	"testing"

	"github.com/tavolo-next/internal/models"

	"github.com/shopspring/decimal"
)

func money(value float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(value))
}

func completedPayment(amount float64) models.OrderPayment {
	return models.OrderPayment{
		Method: models.PaymentMethodCash,
		Amount: money(amount),
		Status: models.PaymentStateCompleted,
	}
}

func TestReconcilePaymentsNoPayments(t *testing.T) {
	result := reconcilePayments(money(50), nil)
	if result.Status != models.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", result.Status)
	}
	if result.IsFullyPaid {
		t.Fatalf("expected is_fully_paid=false")
	}
	if !result.Remaining.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected remaining=50, got %s", result.Remaining.Decimal)
	}
}

func TestReconcilePaymentsPartial(t *testing.T) {
	result := reconcilePayments(money(50), []models.OrderPayment{completedPayment(20)})
	if result.Status != models.PaymentStatusPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", result.Status)
	}
	if !result.TotalPaid.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total_paid=20, got %s", result.TotalPaid.Decimal)
	}
	if !result.Remaining.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected remaining=30, got %s", result.Remaining.Decimal)
	}
}

func TestReconcilePaymentsWithinTolerance(t *testing.T) {
	// 差 0.01 视为已付清
	result := reconcilePayments(money(50), []models.OrderPayment{completedPayment(49.99)})
	if result.Status != models.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
	if !result.IsFullyPaid {
		t.Fatalf("expected is_fully_paid=true")
	}

	// 多 0.01 同样视为已付清而不是超付
	result = reconcilePayments(money(50), []models.OrderPayment{completedPayment(50.01)})
	if result.Status != models.PaymentStatusCompleted {
		t.Fatalf("expected completed for +0.01, got %s", result.Status)
	}

	// 差 0.02 仍是部分支付
	result = reconcilePayments(money(50), []models.OrderPayment{completedPayment(49.98)})
	if result.Status != models.PaymentStatusPartiallyPaid {
		t.Fatalf("expected partially_paid for -0.02, got %s", result.Status)
	}
}

func TestReconcilePaymentsOverpaid(t *testing.T) {
	// 两笔并发入账未经拦截，净已付超过总额
	result := reconcilePayments(money(100), []models.OrderPayment{completedPayment(60), completedPayment(45)})
	if result.Status != models.PaymentStatusOverpaid {
		t.Fatalf("expected overpaid, got %s", result.Status)
	}
	if !result.IsFullyPaid {
		t.Fatalf("expected is_fully_paid=true")
	}
	if !result.TotalPaid.Decimal.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("expected total_paid=105, got %s", result.TotalPaid.Decimal)
	}
	if !result.Remaining.Decimal.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("expected remaining=-5, got %s", result.Remaining.Decimal)
	}
}

func TestReconcilePaymentsSkipsPendingAndFailed(t *testing.T) {
	payments := []models.OrderPayment{
		{Method: models.PaymentMethodCard, Amount: money(40), Status: models.PaymentStatePending},
		{Method: models.PaymentMethodCard, Amount: money(40), Status: models.PaymentStateFailed},
	}
	result := reconcilePayments(money(50), payments)
	if result.Status != models.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", result.Status)
	}
	if !result.TotalPaid.Decimal.IsZero() {
		t.Fatalf("expected total_paid=0, got %s", result.TotalPaid.Decimal)
	}
}

func TestReconcilePaymentsAllRefunded(t *testing.T) {
	payment := completedPayment(50)
	payment.Status = models.PaymentStateRefunded
	payment.IsRefunded = true
	payment.RefundedAmount = money(50)

	result := reconcilePayments(money(50), []models.OrderPayment{payment})
	if result.Status != models.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", result.Status)
	}
	if result.IsFullyPaid {
		t.Fatalf("expected is_fully_paid=false after full refund")
	}
	if !result.TotalPaid.Decimal.IsZero() {
		t.Fatalf("expected total_paid=0, got %s", result.TotalPaid.Decimal)
	}
	if !result.Remaining.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected remaining=50, got %s", result.Remaining.Decimal)
	}
}

func TestReconcilePaymentsPartialRefundNet(t *testing.T) {
	payment := completedPayment(50)
	payment.Status = models.PaymentStatePartiallyRefunded
	payment.RefundedAmount = money(10)

	result := reconcilePayments(money(50), []models.OrderPayment{payment})
	if result.Status != models.PaymentStatusPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", result.Status)
	}
	if !result.TotalPaid.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total_paid=40, got %s", result.TotalPaid.Decimal)
	}
	if !result.Remaining.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected remaining=10, got %s", result.Remaining.Decimal)
	}
}
