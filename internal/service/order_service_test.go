package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
}

func newTestOrderService(t *testing.T) *OrderService {
	t.Helper()
	setupServiceTestDB(t)
	return NewOrderService(
		repository.NewOrderRepository(models.DB),
		repository.NewOrderPaymentRepository(models.DB),
		repository.NewMenuItemRepository(models.DB),
		NewSettingService(repository.NewSettingRepository(models.DB)),
		nil,
	)
}

func seedTestMenuItem(t *testing.T, slug string, price float64, available bool) *models.MenuItem {
	t.Helper()
	var category models.Category
	if err := models.DB.Where("slug = ?", "mains").First(&category).Error; err != nil {
		category = models.Category{
			Slug:     "mains",
			NameJSON: models.JSON(map[string]interface{}{"en-US": "Mains"}),
		}
		if err := models.DB.Create(&category).Error; err != nil {
			t.Fatalf("seed category failed: %v", err)
		}
	}
	item := &models.MenuItem{
		CategoryID:  category.ID,
		Slug:        slug,
		NameJSON:    models.JSON(map[string]interface{}{"en-US": slug}),
		PriceAmount: money(price),
		IsAvailable: available,
	}
	if err := models.DB.Create(item).Error; err != nil {
		t.Fatalf("seed menu item failed: %v", err)
	}
	return item
}

func seedTestVariation(t *testing.T, menuItemID uint, code string, price float64, available bool) {
	t.Helper()
	variation := &models.MenuItemVariation{
		MenuItemID:  menuItemID,
		Code:        code,
		NameJSON:    models.JSON(map[string]interface{}{"en-US": code}),
		PriceAmount: money(price),
		IsAvailable: available,
	}
	if err := models.DB.Create(variation).Error; err != nil {
		t.Fatalf("seed variation failed: %v", err)
	}
}

func seedOrderConfig(t *testing.T, values map[string]interface{}) {
	t.Helper()
	setting := &models.Setting{
		Key:       constants.SettingKeyOrderConfig,
		ValueJSON: models.JSON(values),
	}
	if err := models.DB.Create(setting).Error; err != nil {
		t.Fatalf("seed order config failed: %v", err)
	}
}

func intPtr(v int) *int {
	return &v
}

func createTestOrder(t *testing.T, svc *OrderService, item *models.MenuItem, quantity int) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:      1,
		Type:        models.OrderTypeDineIn,
		TableNumber: intPtr(5),
		Items: []CreateOrderItem{
			{MenuItemID: item.ID, Quantity: quantity},
		},
		Actor: models.ActorCustomer,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCreateOrderComputesTotals(t *testing.T) {
	svc := newTestOrderService(t)
	seedOrderConfig(t, map[string]interface{}{
		constants.SettingFieldTaxRate:     10,
		constants.SettingFieldDeliveryFee: 3.5,
	})
	item := seedTestMenuItem(t, "salmon", 18.90, true)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          1,
		Type:            models.OrderTypeDelivery,
		DeliveryAddress: "Via Roma 1, Milano",
		Tip:             decimal.NewFromFloat(2),
		Items: []CreateOrderItem{
			{MenuItemID: item.ID, Quantity: 2},
		},
		Actor: models.ActorCustomer,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected status pending, got %s", order.Status)
	}
	if !order.SubTotal.Decimal.Equal(decimal.NewFromFloat(37.80)) {
		t.Fatalf("expected sub_total=37.80, got %s", order.SubTotal.Decimal)
	}
	if !order.Tax.Decimal.Equal(decimal.NewFromFloat(3.78)) {
		t.Fatalf("expected tax=3.78, got %s", order.Tax.Decimal)
	}
	if !order.DeliveryFee.Decimal.Equal(decimal.NewFromFloat(3.5)) {
		t.Fatalf("expected delivery_fee=3.5, got %s", order.DeliveryFee.Decimal)
	}
	// 37.80 + 3.78 + 3.50 + 2.00
	if !order.Total.Decimal.Equal(decimal.NewFromFloat(47.08)) {
		t.Fatalf("expected total=47.08, got %s", order.Total.Decimal)
	}
	if !order.RemainingAmount.Decimal.Equal(order.Total.Decimal) {
		t.Fatalf("expected remaining=total, got %s", order.RemainingAmount.Decimal)
	}
	if order.EstimatedDeliveryTime == nil {
		t.Fatalf("expected estimated delivery time set")
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
}

func TestCreateOrderVariationPrice(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "pizza", 9.50, true)
	seedTestVariation(t, item.ID, "large", 13.50, true)

	order := createTestOrderWithVariation(t, svc, item.ID, "large", 2)
	if !order.SubTotal.Decimal.Equal(decimal.NewFromFloat(27)) {
		t.Fatalf("expected sub_total=27, got %s", order.SubTotal.Decimal)
	}
	if order.Items[0].Variation == "" {
		t.Fatalf("expected variation name recorded")
	}
}

func createTestOrderWithVariation(t *testing.T, svc *OrderService, menuItemID uint, code string, quantity int) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:      1,
		Type:        models.OrderTypeDineIn,
		TableNumber: intPtr(3),
		Items: []CreateOrderItem{
			{MenuItemID: menuItemID, VariationCode: code, Quantity: quantity},
		},
		Actor: models.ActorCustomer,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "soup", 5.90, true)
	unavailable := seedTestMenuItem(t, "special", 16.50, false)

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{
			name: "invalid type",
			input: CreateOrderInput{
				Type:  models.OrderType("drive_thru"),
				Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
			},
			want: ErrOrderTypeInvalid,
		},
		{
			name: "dine in without table",
			input: CreateOrderInput{
				Type:  models.OrderTypeDineIn,
				Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
			},
			want: ErrTableNumberRequired,
		},
		{
			name: "delivery without address",
			input: CreateOrderInput{
				Type:  models.OrderTypeDelivery,
				Items: []CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
			},
			want: ErrDeliveryAddressNeeded,
		},
		{
			name: "no items",
			input: CreateOrderInput{
				Type:        models.OrderTypeDineIn,
				TableNumber: intPtr(1),
			},
			want: ErrInvalidOrderItem,
		},
		{
			name: "zero quantity",
			input: CreateOrderInput{
				Type:        models.OrderTypeDineIn,
				TableNumber: intPtr(1),
				Items:       []CreateOrderItem{{MenuItemID: item.ID, Quantity: 0}},
			},
			want: ErrInvalidOrderItem,
		},
		{
			name: "unavailable item",
			input: CreateOrderInput{
				Type:        models.OrderTypeDineIn,
				TableNumber: intPtr(1),
				Items:       []CreateOrderItem{{MenuItemID: unavailable.ID, Quantity: 1}},
			},
			want: ErrMenuItemUnavailable,
		},
		{
			name: "unknown variation",
			input: CreateOrderInput{
				Type:        models.OrderTypeDineIn,
				TableNumber: intPtr(1),
				Items:       []CreateOrderItem{{MenuItemID: item.ID, VariationCode: "xl", Quantity: 1}},
			},
			want: ErrVariationNotFound,
		},
	}
	for _, tc := range cases {
		if _, err := svc.CreateOrder(tc.input); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateOrderMergesDuplicateItems(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "burger", 12.90, true)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:      1,
		Type:        models.OrderTypeDineIn,
		TableNumber: intPtr(2),
		Items: []CreateOrderItem{
			{MenuItemID: item.ID, Quantity: 1},
			{MenuItemID: item.ID, Quantity: 2},
		},
		Actor: models.ActorCustomer,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected merged single item, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity=3, got %d", order.Items[0].Quantity)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusReady, "", models.ActorUser(1)); err != ErrOrderStatusInvalid {
		t.Fatalf("expected status invalid for pending->ready, got %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusCanceled, "", models.ActorUser(1)); err != ErrOrderStatusInvalid {
		t.Fatalf("canceled target should be rejected, got %v", err)
	}

	updated, err := svc.UpdateStatus(order.ID, models.OrderStatusConfirmed, "confirmed by kitchen", models.ActorUser(1))
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if updated.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	// 同状态重复提交幂等
	again, err := svc.UpdateStatus(order.ID, models.OrderStatusConfirmed, "", models.ActorUser(1))
	if err != nil {
		t.Fatalf("idempotent confirm failed: %v", err)
	}
	if again.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", again.Status)
	}

	for _, target := range []models.OrderStatus{models.OrderStatusPreparing, models.OrderStatusReady, models.OrderStatusCompleted} {
		if _, err := svc.UpdateStatus(order.ID, target, "", models.ActorUser(1)); err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}

	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusPreparing, "", models.ActorUser(1)); err != ErrOrderTerminal {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestUpdateStatusDeliveredSetsActualTime(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	for _, target := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusPreparing, models.OrderStatusReady} {
		if _, err := svc.UpdateStatus(order.ID, target, "", models.ActorUser(1)); err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}
	delivered, err := svc.UpdateStatus(order.ID, models.OrderStatusDelivered, "", models.ActorUser(1))
	if err != nil {
		t.Fatalf("delivered failed: %v", err)
	}
	if delivered.ActualDeliveryTime == nil {
		t.Fatalf("expected actual delivery time set")
	}
}

func TestRequestDelayApproveAndReject(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)
	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusConfirmed, "", models.ActorUser(1)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusPreparing, "", models.ActorUser(1)); err != nil {
		t.Fatalf("preparing failed: %v", err)
	}

	if _, err := svc.RequestDelay(order.ID, time.Now().Add(-time.Minute), "", models.ActorUser(1)); err != ErrDelayTimeInvalid {
		t.Fatalf("expected delay time invalid, got %v", err)
	}

	proposed := time.Now().Add(45 * time.Minute)
	delayed, err := svc.RequestDelay(order.ID, proposed, "kitchen backlog", models.ActorUser(1))
	if err != nil {
		t.Fatalf("request delay failed: %v", err)
	}
	if delayed.Status != models.OrderStatusPendingApproval {
		t.Fatalf("expected pending_customer_approval, got %s", delayed.Status)
	}
	if delayed.ProposedDeliveryTime == nil {
		t.Fatalf("expected proposed delivery time set")
	}

	approved, err := svc.ApproveDelay(order.ID)
	if err != nil {
		t.Fatalf("approve delay failed: %v", err)
	}
	if approved.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected confirmed after approval, got %s", approved.Status)
	}
	if approved.ProposedDeliveryTime != nil {
		t.Fatalf("expected proposed time cleared")
	}
	if approved.EstimatedDeliveryTime == nil || approved.EstimatedDeliveryTime.Unix() != proposed.Unix() {
		t.Fatalf("expected estimated time updated to proposal")
	}

	// 无待确认延迟时重复确认报错
	if _, err := svc.ApproveDelay(order.ID); err != ErrDelayNotPending {
		t.Fatalf("expected delay not pending, got %v", err)
	}

	// 再次发起并拒绝，订单取消
	if _, err := svc.RequestDelay(order.ID, time.Now().Add(90*time.Minute), "", models.ActorUser(1)); err != nil {
		t.Fatalf("second delay failed: %v", err)
	}
	rejected, err := svc.RejectDelay(order.ID)
	if err != nil {
		t.Fatalf("reject delay failed: %v", err)
	}
	if rejected.Status != models.OrderStatusCanceled {
		t.Fatalf("expected canceled after rejection, got %s", rejected.Status)
	}
	if rejected.CancellationReason != "Customer rejected delay" {
		t.Fatalf("unexpected cancellation reason %q", rejected.CancellationReason)
	}
	if rejected.ProposedDeliveryTime != nil {
		t.Fatalf("expected proposed time cleared after reject")
	}

	final, err := svc.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	last := final.StatusHistory[len(final.StatusHistory)-1]
	if last.ToStatus != models.OrderStatusCanceled || last.ChangedBy != models.ActorCustomer.String() {
		t.Fatalf("unexpected history tail: %+v", last)
	}
}

func TestApproveDelayWithoutProposalKeepsEstimate(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	// 历史数据可能只有送达估计而没有延迟提案
	existing := time.Now().Add(40 * time.Minute).Round(time.Second)
	if err := models.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":                  models.OrderStatusPendingApproval,
		"estimated_delivery_time": existing,
		"proposed_delivery_time":  nil,
	}).Error; err != nil {
		t.Fatalf("seed legacy state failed: %v", err)
	}

	approved, err := svc.ApproveDelay(order.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", approved.Status)
	}
	if approved.EstimatedDeliveryTime == nil || approved.EstimatedDeliveryTime.Unix() != existing.Unix() {
		t.Fatalf("expected estimate untouched, got %v", approved.EstimatedDeliveryTime)
	}
}

func TestApproveDelayWithoutAnyEstimateDefaults(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	if err := models.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":                  models.OrderStatusPendingApproval,
		"estimated_delivery_time": nil,
		"proposed_delivery_time":  nil,
	}).Error; err != nil {
		t.Fatalf("seed legacy state failed: %v", err)
	}

	before := time.Now()
	approved, err := svc.ApproveDelay(order.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.EstimatedDeliveryTime == nil {
		t.Fatalf("expected fallback estimate set")
	}
	got := approved.EstimatedDeliveryTime.Sub(before)
	if got < 29*time.Minute || got > 31*time.Minute {
		t.Fatalf("expected estimate about 30 minutes out, got %s", got)
	}
}

func TestExpireDelaySkipsNonPending(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	expired, err := svc.ExpireDelay(order.ID)
	if err != nil {
		t.Fatalf("expire on non-pending should be no-op, got %v", err)
	}
	if expired.Status != models.OrderStatusPending {
		t.Fatalf("expected pending untouched, got %s", expired.Status)
	}
}

func TestExpireDelayAutoApproves(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)
	if _, err := svc.UpdateStatus(order.ID, models.OrderStatusConfirmed, "", models.ActorUser(1)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	proposed := time.Now().Add(time.Hour)
	if _, err := svc.RequestDelay(order.ID, proposed, "", models.ActorUser(1)); err != nil {
		t.Fatalf("request delay failed: %v", err)
	}

	expired, err := svc.ExpireDelay(order.ID)
	if err != nil {
		t.Fatalf("expire delay failed: %v", err)
	}
	if expired.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected return to confirmed, got %s", expired.Status)
	}
	if expired.EstimatedDeliveryTime == nil || expired.EstimatedDeliveryTime.Unix() != proposed.Unix() {
		t.Fatalf("expected proposal applied on timeout")
	}
}

func TestToggleFocus(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	if _, err := svc.ToggleFocus(order.ID, FocusInput{Focus: true, Priority: intPtr(9), Actor: models.ActorUser(1)}); err != ErrPriorityInvalid {
		t.Fatalf("expected priority invalid, got %v", err)
	}

	focused, err := svc.ToggleFocus(order.ID, FocusInput{Focus: true, Priority: intPtr(2), Reason: "vip table", Actor: models.ActorUser(1)})
	if err != nil {
		t.Fatalf("focus failed: %v", err)
	}
	if !focused.IsFocusOrder || focused.Priority == nil || *focused.Priority != 2 {
		t.Fatalf("unexpected focus state: %+v", focused)
	}
	if focused.FocusedAt == nil {
		t.Fatalf("expected focused_at set")
	}
	firstFocusedAt := *focused.FocusedAt

	// 重复标记幂等，保留首次标记时间与既有优先级
	again, err := svc.ToggleFocus(order.ID, FocusInput{Focus: true, Actor: models.ActorUser(2)})
	if err != nil {
		t.Fatalf("refocus failed: %v", err)
	}
	if again.Priority == nil || *again.Priority != 2 {
		t.Fatalf("expected priority retained, got %v", again.Priority)
	}
	if again.FocusedAt == nil || !again.FocusedAt.Equal(firstFocusedAt) {
		t.Fatalf("expected focused_at unchanged")
	}

	cleared, err := svc.ToggleFocus(order.ID, FocusInput{Focus: false, Actor: models.ActorUser(1)})
	if err != nil {
		t.Fatalf("unfocus failed: %v", err)
	}
	if cleared.IsFocusOrder || cleared.Priority != nil || cleared.FocusedAt != nil {
		t.Fatalf("expected focus cleared: %+v", cleared)
	}
}

func TestToggleFocusDefaultPriority(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	focused, err := svc.ToggleFocus(order.ID, FocusInput{Focus: true, Actor: models.ActorUser(1)})
	if err != nil {
		t.Fatalf("focus failed: %v", err)
	}
	if focused.Priority == nil || *focused.Priority != priorityDefault {
		t.Fatalf("expected default priority %d, got %v", priorityDefault, focused.Priority)
	}
}

func TestDeleteOrder(t *testing.T) {
	svc := newTestOrderService(t)
	item := seedTestMenuItem(t, "salmon", 18.90, true)
	order := createTestOrder(t, svc, item, 1)

	if err := svc.DeleteOrder(order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteOrder(order.ID); err != ErrOrderAlreadyDeleted {
		t.Fatalf("expected already deleted, got %v", err)
	}
	if err := svc.DeleteOrder(99999); err != ErrOrderNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
