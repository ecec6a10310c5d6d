package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tavolo-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupOrderRepoTest(t *testing.T) *GormOrderRepository {
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
	return NewOrderRepository(db)
}

func seedOrder(t *testing.T, orderNo string, status models.OrderStatus, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        1,
		Type:          models.OrderTypeDineIn,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
		Currency:      "EUR",
		OrderDate:     time.Now(),
	}
	if mutate != nil {
		mutate(order)
	}
	if err := models.DB.Create(order).Error; err != nil {
		t.Fatalf("seed order %s failed: %v", orderNo, err)
	}
	return order
}

func focusOrder(priority *int, focusedAt time.Time) func(*models.Order) {
	return func(o *models.Order) {
		o.IsFocusOrder = true
		o.Priority = priority
		o.FocusedAt = &focusedAt
	}
}

func priorityPtr(v int) *int {
	return &v
}

func TestListFocusPriorityOrdering(t *testing.T) {
	repo := setupOrderRepoTest(t)
	base := time.Now().Add(-time.Hour)

	// 未设优先级的排在最后，同优先级先标记的在前
	seedOrder(t, "TN-NOPRIO", models.OrderStatusPreparing, focusOrder(nil, base))
	seedOrder(t, "TN-P3", models.OrderStatusConfirmed, focusOrder(priorityPtr(3), base.Add(time.Minute)))
	seedOrder(t, "TN-P1-LATE", models.OrderStatusPreparing, focusOrder(priorityPtr(1), base.Add(10*time.Minute)))
	seedOrder(t, "TN-P1-EARLY", models.OrderStatusPreparing, focusOrder(priorityPtr(1), base.Add(2*time.Minute)))
	seedOrder(t, "TN-PLAIN", models.OrderStatusPreparing, nil)

	orders, err := repo.ListFocus(FocusOrderFilter{})
	if err != nil {
		t.Fatalf("list focus failed: %v", err)
	}
	got := make([]string, 0, len(orders))
	for _, order := range orders {
		got = append(got, order.OrderNo)
	}
	want := []string{"TN-P1-EARLY", "TN-P1-LATE", "TN-P3", "TN-NOPRIO"}
	if len(got) != len(want) {
		t.Fatalf("expected %d focus orders, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %v", i, want[i], got)
		}
	}
}

func TestListFocusActiveOnly(t *testing.T) {
	repo := setupOrderRepoTest(t)
	now := time.Now()
	seedOrder(t, "TN-ACTIVE", models.OrderStatusPreparing, focusOrder(priorityPtr(1), now))
	seedOrder(t, "TN-DONE", models.OrderStatusCompleted, focusOrder(priorityPtr(1), now))
	seedOrder(t, "TN-GONE", models.OrderStatusCanceled, focusOrder(priorityPtr(2), now))

	orders, err := repo.ListFocus(FocusOrderFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list focus failed: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderNo != "TN-ACTIVE" {
		t.Fatalf("expected only active focus order, got %+v", orders)
	}
}

func TestListConfirmedSince(t *testing.T) {
	repo := setupOrderRepoTest(t)
	watermark := time.Now().Add(-10 * time.Minute)
	old := watermark.Add(-time.Hour)

	seedOrder(t, "TN-OLD", models.OrderStatusConfirmed, func(o *models.Order) {
		o.OrderDate = old
	})
	seedOrder(t, "TN-NEW", models.OrderStatusConfirmed, nil)
	seedOrder(t, "TN-PENDING", models.OrderStatusPending, nil)

	// 水位线之前的行需要显式回拨时间戳，gorm 建行时会写 now
	if err := models.DB.Model(&models.Order{}).Where("order_no = ?", "TN-OLD").
		Updates(map[string]interface{}{"created_at": old, "updated_at": old}).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	orders, err := repo.ListConfirmedSince(watermark)
	if err != nil {
		t.Fatalf("list confirmed since failed: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderNo != "TN-NEW" {
		t.Fatalf("expected only TN-NEW, got %+v", orders)
	}

	// 旧确认单被更新后重新越过水位线
	if err := models.DB.Model(&models.Order{}).Where("order_no = ?", "TN-OLD").
		Update("updated_at", time.Now()).Error; err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	orders, err = repo.ListConfirmedSince(watermark)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders after touch, got %d", len(orders))
	}
}

func TestListPendingDelayBefore(t *testing.T) {
	repo := setupOrderRepoTest(t)
	cutoff := time.Now().Add(-15 * time.Minute)
	stale := cutoff.Add(-5 * time.Minute)

	overdue := seedOrder(t, "TN-OVERDUE", models.OrderStatusPendingApproval, nil)
	seedOrder(t, "TN-FRESH", models.OrderStatusPendingApproval, nil)
	seedOrder(t, "TN-OTHER", models.OrderStatusPreparing, nil)

	if err := models.DB.Model(&models.Order{}).Where("id = ?", overdue.ID).
		Update("updated_at", stale).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	ids, err := repo.ListPendingDelayBefore(cutoff, 10)
	if err != nil {
		t.Fatalf("list pending delay failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != overdue.ID {
		t.Fatalf("expected only overdue order, got %v", ids)
	}
}

func TestGetByIDUnscopedSeesSoftDeleted(t *testing.T) {
	repo := setupOrderRepoTest(t)
	order := seedOrder(t, "TN-DEL", models.OrderStatusPending, nil)

	if err := repo.SoftDelete(order.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected soft-deleted order hidden")
	}
	unscoped, err := repo.GetByIDUnscoped(order.ID)
	if err != nil {
		t.Fatalf("get unscoped failed: %v", err)
	}
	if unscoped == nil || !unscoped.DeletedAt.Valid {
		t.Fatalf("expected soft-deleted order visible unscoped")
	}
}
