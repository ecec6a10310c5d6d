package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// prioritySentinel 未设置优先级的排序兜底值（排在所有显式优先级之后）
const prioritySentinel = 999

// confirmedSinceLimit 确认订单追赶查询的行数上限
const confirmedSinceLimit = 100

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByIDUnscoped(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListFocus(filter FocusOrderFilter) ([]models.Order, error)
	ListConfirmedSince(since time.Time) ([]models.Order, error)
	ListPendingDelayBefore(cutoff time.Time, limit int) ([]uint, error)
	UpdateStatus(id uint, status models.OrderStatus, updates map[string]interface{}) error
	UpdateFields(id uint, updates map[string]interface{}) error
	AppendHistory(entry *models.OrderStatusHistory) error
	SoftDelete(id uint) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withRelations(query *gorm.DB) *gorm.DB {
	return query.Preload("Items").Preload("Payments").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at asc, id asc")
		})
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单（含订单项、支付、历史）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withRelations(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 行锁读取订单，必须在事务内调用。
// sqlite 不支持 FOR UPDATE，写事务本身已串行化，跳过锁子句。
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	db := r.db
	if dbDialectName(db) != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := r.withRelations(db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDUnscoped 含软删除行的读取，用于区分“已删除”与“不存在”
func (r *GormOrderRepository) GetByIDUnscoped(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Unscoped().First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单编号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.withRelations(r.db).Where("order_no = ?", orderNo).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func applyOrderListFilter(query *gorm.DB, filter OrderListFilter) *gorm.DB {
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.TableNumber != nil {
		query = query.Where("table_number = ?", *filter.TableNumber)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// ListByUser 顾客订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return []models.Order{}, 0, nil
	}
	return r.list(filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	return r.list(filter)
}

func (r *GormOrderRepository) list(filter OrderListFilter) ([]models.Order, int64, error) {
	query := applyOrderListFilter(r.db.Model(&models.Order{}), filter)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]models.Order, 0)
	query = applyPagination(query.Order("order_date desc"), filter.Page, filter.PageSize)
	if err := r.withRelations(query).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListFocus 重点单队列查询
func (r *GormOrderRepository) ListFocus(filter FocusOrderFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{}).Where("is_focus_order = ?", true)
	if filter.ActiveOnly {
		query = query.Where("status NOT IN ?", []models.OrderStatus{
			models.OrderStatusCompleted,
			models.OrderStatusCanceled,
		})
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	switch filter.Sort {
	case FocusOrderSortOrderDate:
		query = query.Order("order_date desc")
	case FocusOrderSortFocusedAt:
		query = query.Order("focused_at desc")
	default:
		// 未设优先级的排在最后，同优先级先标记的在前
		query = query.Order(fmt.Sprintf("COALESCE(priority, %d) asc, focused_at asc", prioritySentinel))
	}
	orders := make([]models.Order, 0)
	if err := r.withRelations(query).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListConfirmedSince 确认订单追赶查询（created_at 或 updated_at 晚于水位线）
func (r *GormOrderRepository) ListConfirmedSince(since time.Time) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.withRelations(
		r.db.Model(&models.Order{}).
			Where("status = ?", models.OrderStatusConfirmed).
			Where("created_at > ? OR updated_at > ?", since, since).
			Order("order_date asc").
			Limit(confirmedSinceLimit),
	).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPendingDelayBefore 查询延迟确认超时的订单ID（updated_at 早于截止时间）
func (r *GormOrderRepository) ListPendingDelayBefore(cutoff time.Time, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = 100
	}
	ids := make([]uint, 0)
	err := r.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPendingApproval).
		Where("updated_at < ?", cutoff).
		Order("updated_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatus 更新订单状态及附带字段
func (r *GormOrderRepository) UpdateStatus(id uint, status models.OrderStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateFields 更新订单字段
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// AppendHistory 追加状态历史（只增不改）
func (r *GormOrderRepository) AppendHistory(entry *models.OrderStatusHistory) error {
	return r.db.Create(entry).Error
}

// SoftDelete 软删除订单
func (r *GormOrderRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Order{}, id).Error
}
