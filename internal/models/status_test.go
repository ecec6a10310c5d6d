package models

import "testing"

func TestOrderStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from  OrderStatus
		to    OrderStatus
		allow bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusPendingApproval, true},
		{OrderStatusConfirmed, OrderStatusReady, false},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusPendingApproval, true},
		{OrderStatusPreparing, OrderStatusConfirmed, false},
		{OrderStatusReady, OrderStatusOutForDelivery, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusCompleted, false},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusPendingApproval, OrderStatusConfirmed, true},
		{OrderStatusPendingApproval, OrderStatusPreparing, false},
		{OrderStatusCompleted, OrderStatusConfirmed, false},
		{OrderStatusCanceled, OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allow {
			t.Fatalf("%s -> %s: expected allow=%v, got %v", tc.from, tc.to, tc.allow, got)
		}
	}
}

func TestOrderStatusCancelFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusPendingApproval,
	}
	for _, status := range nonTerminal {
		if !status.CanTransitionTo(OrderStatusCanceled) {
			t.Fatalf("%s should allow cancel", status)
		}
	}
	if OrderStatusCompleted.CanTransitionTo(OrderStatusCanceled) {
		t.Fatalf("completed should not allow cancel")
	}
	if OrderStatusCanceled.CanTransitionTo(OrderStatusCanceled) {
		t.Fatalf("canceled should not allow cancel")
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if !OrderStatusCompleted.IsTerminal() || !OrderStatusCanceled.IsTerminal() {
		t.Fatalf("completed and canceled should be terminal")
	}
	if OrderStatusReady.IsTerminal() {
		t.Fatalf("ready should not be terminal")
	}
	if !OrderStatusPendingApproval.IsActive() {
		t.Fatalf("pending_customer_approval should be active")
	}
}

func TestOrderStatusValid(t *testing.T) {
	if !OrderStatusPendingApproval.Valid() {
		t.Fatalf("pending_customer_approval should be valid")
	}
	if OrderStatus("shipped").Valid() {
		t.Fatalf("shipped should not be valid")
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline, PaymentMethodMobile, PaymentMethodBankTransfer} {
		if !m.Valid() {
			t.Fatalf("%s should be valid", m)
		}
	}
	if PaymentMethod("crypto").Valid() {
		t.Fatalf("crypto should not be valid")
	}
}

func TestOrderTypeValid(t *testing.T) {
	if !OrderTypeDineIn.Valid() || !OrderTypeDelivery.Valid() || !OrderTypePickup.Valid() {
		t.Fatalf("known order types should be valid")
	}
	if OrderType("drive_thru").Valid() {
		t.Fatalf("drive_thru should not be valid")
	}
}
