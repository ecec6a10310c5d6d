package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

const defaultReservationDuration = 2 * time.Hour

// ReservationService 预订服务
type ReservationService struct {
	reservationRepo repository.ReservationRepository
	tableRepo       repository.DiningTableRepository
}

// NewReservationService 创建预订服务
func NewReservationService(reservationRepo repository.ReservationRepository, tableRepo repository.DiningTableRepository) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		tableRepo:       tableRepo,
	}
}

// CreateReservationInput 创建预订输入
type CreateReservationInput struct {
	UserID        uint
	TableID       *uint
	CustomerName  string
	CustomerPhone string
	PartySize     int
	StartsAt      time.Time
	EndsAt        time.Time
	Notes         string
}

// List 后台按条件查询预订
func (s *ReservationService) List(filter repository.ReservationListFilter) ([]models.Reservation, int64, error) {
	return s.reservationRepo.List(filter)
}

// ListByUser 顾客端预订列表
func (s *ReservationService) ListByUser(userID uint) ([]models.Reservation, error) {
	return s.reservationRepo.ListByUser(userID)
}

// Get 获取预订详情
func (s *ReservationService) Get(id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

// Create 创建预订，指定餐桌时检查时段冲突
func (s *ReservationService) Create(input CreateReservationInput) (*models.Reservation, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" || input.PartySize <= 0 {
		return nil, ErrReservationInvalid
	}
	startsAt := input.StartsAt.UTC()
	endsAt := input.EndsAt.UTC()
	if endsAt.IsZero() || !endsAt.After(startsAt) {
		endsAt = startsAt.Add(defaultReservationDuration)
	}
	if startsAt.Before(time.Now().UTC()) {
		return nil, ErrReservationTimeInvalid
	}

	if input.TableID != nil {
		table, err := s.tableRepo.GetByID(*input.TableID)
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, ErrTableNotFound
		}
		if table.Status == constants.TableStatusUnavailable {
			return nil, ErrReservationConflict
		}
		count, err := s.reservationRepo.CountOverlapping(*input.TableID, startsAt, endsAt, 0)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrReservationConflict
		}
	}

	reservation := models.Reservation{
		UserID:        input.UserID,
		TableID:       input.TableID,
		CustomerName:  name,
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		PartySize:     input.PartySize,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Status:        constants.ReservationStatusBooked,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if err := s.reservationRepo.Create(&reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// AssignTable 为预订分配或更换餐桌
func (s *ReservationService) AssignTable(id, tableID uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != constants.ReservationStatusBooked {
		return nil, ErrReservationStateInvalid
	}
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	count, err := s.reservationRepo.CountOverlapping(tableID, reservation.StartsAt, reservation.EndsAt, reservation.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrReservationConflict
	}
	reservation.TableID = &tableID
	if err := s.reservationRepo.Update(reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// Seat 顾客到店入座，餐桌同步置为占用
func (s *ReservationService) Seat(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != constants.ReservationStatusBooked {
		return nil, ErrReservationStateInvalid
	}
	if reservation.TableID == nil {
		return nil, ErrTableNotFound
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		reservation.Status = constants.ReservationStatusSeated
		if err := s.reservationRepo.WithTx(tx).Update(reservation); err != nil {
			return err
		}
		return s.tableRepo.WithTx(tx).UpdateStatus(*reservation.TableID, constants.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Complete 用餐结束，释放餐桌
func (s *ReservationService) Complete(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != constants.ReservationStatusSeated {
		return nil, ErrReservationStateInvalid
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		reservation.Status = constants.ReservationStatusCompleted
		if err := s.reservationRepo.WithTx(tx).Update(reservation); err != nil {
			return err
		}
		if reservation.TableID != nil {
			return s.tableRepo.WithTx(tx).UpdateStatus(*reservation.TableID, constants.TableStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Cancel 取消预订
func (s *ReservationService) Cancel(id uint, userID uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if userID > 0 && reservation.UserID != userID {
		return nil, ErrReservationNotFound
	}
	if reservation.Status != constants.ReservationStatusBooked {
		return nil, ErrReservationStateInvalid
	}
	reservation.Status = constants.ReservationStatusCanceled
	if err := s.reservationRepo.Update(reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// MarkNoShow 标记未到店
func (s *ReservationService) MarkNoShow(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != constants.ReservationStatusBooked {
		return nil, ErrReservationStateInvalid
	}
	reservation.Status = constants.ReservationStatusNoShow
	if err := s.reservationRepo.Update(reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}
