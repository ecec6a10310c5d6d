package repository

import (
	"errors"
	"time"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// ReservationRepository 预订数据访问接口
type ReservationRepository interface {
	List(filter ReservationListFilter) ([]models.Reservation, int64, error)
	ListByUser(userID uint) ([]models.Reservation, error)
	GetByID(id uint) (*models.Reservation, error)
	CountOverlapping(tableID uint, startsAt, endsAt time.Time, excludeID uint) (int64, error)
	Create(reservation *models.Reservation) error
	Update(reservation *models.Reservation) error
	WithTx(tx *gorm.DB) *GormReservationRepository
}

// GormReservationRepository GORM 实现
type GormReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预订仓库
func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReservationRepository) WithTx(tx *gorm.DB) *GormReservationRepository {
	if tx == nil {
		return r
	}
	return &GormReservationRepository{db: tx}
}

// List 按条件分页查询预订
func (r *GormReservationRepository) List(filter ReservationListFilter) ([]models.Reservation, int64, error) {
	query := r.db.Model(&models.Reservation{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.TableID > 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("starts_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("starts_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.Reservation
	query = applyPagination(query.Preload("Table").Order("starts_at asc"), filter.Page, filter.PageSize)
	if err := query.Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// ListByUser 获取顾客自己的预订
func (r *GormReservationRepository) ListByUser(userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.db.Preload("Table").Where("user_id = ?", userID).Order("starts_at desc").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetByID 根据ID获取预订
func (r *GormReservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.Preload("Table").First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountOverlapping 统计指定餐桌在时间段内的有效预订数
func (r *GormReservationRepository) CountOverlapping(tableID uint, startsAt, endsAt time.Time, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Reservation{}).
		Where("table_id = ?", tableID).
		Where("status IN ?", []string{constants.ReservationStatusBooked, constants.ReservationStatusSeated}).
		Where("starts_at < ? AND ends_at > ?", endsAt, startsAt)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建预订
func (r *GormReservationRepository) Create(reservation *models.Reservation) error {
	return r.db.Create(reservation).Error
}

// Update 更新预订
func (r *GormReservationRepository) Update(reservation *models.Reservation) error {
	return r.db.Save(reservation).Error
}
