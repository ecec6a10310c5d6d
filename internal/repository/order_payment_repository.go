package repository

import (
	"errors"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// OrderPaymentRepository 支付记录数据访问接口
type OrderPaymentRepository interface {
	Create(payment *models.OrderPayment) error
	GetByID(id uint) (*models.OrderPayment, error)
	GetByIDForOrder(id, orderID uint) (*models.OrderPayment, error)
	ListByOrder(orderID uint) ([]models.OrderPayment, error)
	Update(payment *models.OrderPayment) error
	WithTx(tx *gorm.DB) *GormOrderPaymentRepository
}

// GormOrderPaymentRepository GORM 实现
type GormOrderPaymentRepository struct {
	db *gorm.DB
}

// NewOrderPaymentRepository 创建支付记录仓库
func NewOrderPaymentRepository(db *gorm.DB) *GormOrderPaymentRepository {
	return &GormOrderPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderPaymentRepository) WithTx(tx *gorm.DB) *GormOrderPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormOrderPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormOrderPaymentRepository) Create(payment *models.OrderPayment) error {
	return r.db.Create(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *GormOrderPaymentRepository) GetByID(id uint) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByIDForOrder 获取归属指定订单的支付记录
func (r *GormOrderPaymentRepository) GetByIDForOrder(id, orderID uint) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	if err := r.db.Where("id = ? AND order_id = ?", id, orderID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ListByOrder 获取订单全部支付记录
func (r *GormOrderPaymentRepository) ListByOrder(orderID uint) ([]models.OrderPayment, error) {
	payments := make([]models.OrderPayment, 0)
	if err := r.db.Where("order_id = ?", orderID).
		Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Update 更新支付记录
func (r *GormOrderPaymentRepository) Update(payment *models.OrderPayment) error {
	return r.db.Save(payment).Error
}
