package service

import (
	"testing"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/shopspring/decimal"
)

func newTestBasketService(t *testing.T) *BasketService {
	t.Helper()
	setupServiceTestDB(t)
	menuItemRepo := repository.NewMenuItemRepository(models.DB)
	orderSvc := NewOrderService(
		repository.NewOrderRepository(models.DB),
		repository.NewOrderPaymentRepository(models.DB),
		menuItemRepo,
		NewSettingService(repository.NewSettingRepository(models.DB)),
		nil,
	)
	return NewBasketService(repository.NewBasketRepository(models.DB), menuItemRepo, orderSvc)
}

func TestBasketListComputesLineTotals(t *testing.T) {
	svc := newTestBasketService(t)
	item := seedTestMenuItem(t, "pizza", 9.50, true)
	seedTestVariation(t, item.ID, "large", 13.50, true)

	if err := svc.UpsertItem(UpsertBasketItemInput{UserID: 1, MenuItemID: item.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := svc.UpsertItem(UpsertBasketItemInput{UserID: 1, MenuItemID: item.ID, VariationCode: "large", Quantity: 3}); err != nil {
		t.Fatalf("upsert variation failed: %v", err)
	}

	details, err := svc.ListByUser(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 basket items, got %d", len(details))
	}
	totals := map[string]decimal.Decimal{}
	for _, d := range details {
		totals[d.VariationCode] = d.LineTotal.Decimal
	}
	if !totals[""].Equal(decimal.NewFromFloat(19)) {
		t.Fatalf("expected base line total 19, got %s", totals[""])
	}
	if !totals["large"].Equal(decimal.NewFromFloat(40.5)) {
		t.Fatalf("expected variation line total 40.5, got %s", totals["large"])
	}
}

func TestBasketRejectsUnavailableItem(t *testing.T) {
	svc := newTestBasketService(t)
	item := seedTestMenuItem(t, "special", 16.50, false)

	// 下架状态必须原样落库
	stored, err := repository.NewMenuItemRepository(models.DB).GetByID(item.ID)
	if err != nil {
		t.Fatalf("get menu item failed: %v", err)
	}
	if stored == nil || stored.IsAvailable {
		t.Fatalf("expected stored item unavailable, got %+v", stored)
	}

	if err := svc.UpsertItem(UpsertBasketItemInput{UserID: 1, MenuItemID: item.ID, Quantity: 1}); err != ErrMenuItemUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
