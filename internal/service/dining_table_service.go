package service

import (
	"strings"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

// DiningTableService 餐桌服务
type DiningTableService struct {
	repo repository.DiningTableRepository
}

// NewDiningTableService 创建餐桌服务
func NewDiningTableService(repo repository.DiningTableRepository) *DiningTableService {
	return &DiningTableService{repo: repo}
}

// DiningTableInput 创建/更新餐桌输入
type DiningTableInput struct {
	Number int
	Seats  int
	Zone   string
	Status string
}

// List 获取餐桌列表
func (s *DiningTableService) List(status string) ([]models.DiningTable, error) {
	return s.repo.List(status)
}

// Get 获取餐桌详情
func (s *DiningTableService) Get(id uint) (*models.DiningTable, error) {
	table, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	return table, nil
}

// Create 创建餐桌
func (s *DiningTableService) Create(input DiningTableInput) (*models.DiningTable, error) {
	if input.Number <= 0 || input.Seats <= 0 {
		return nil, ErrTableInvalid
	}
	existing, err := s.repo.GetByNumber(input.Number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTableNumberTaken
	}

	table := models.DiningTable{
		Number: input.Number,
		Seats:  input.Seats,
		Zone:   strings.TrimSpace(input.Zone),
		Status: normalizeTableStatus(input.Status),
	}
	if err := s.repo.Create(&table); err != nil {
		return nil, err
	}
	return &table, nil
}

// Update 更新餐桌
func (s *DiningTableService) Update(id uint, input DiningTableInput) (*models.DiningTable, error) {
	table, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.Number != table.Number {
		existing, err := s.repo.GetByNumber(input.Number)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrTableNumberTaken
		}
	}

	table.Number = input.Number
	table.Seats = input.Seats
	table.Zone = strings.TrimSpace(input.Zone)
	table.Status = normalizeTableStatus(input.Status)
	if err := s.repo.Update(table); err != nil {
		return nil, err
	}
	return table, nil
}

// SetStatus 更新餐桌状态
func (s *DiningTableService) SetStatus(id uint, status string) (*models.DiningTable, error) {
	table, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	table.Status = normalizeTableStatus(status)
	if err := s.repo.UpdateStatus(id, table.Status); err != nil {
		return nil, err
	}
	return table, nil
}

// Delete 删除餐桌
func (s *DiningTableService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func normalizeTableStatus(status string) string {
	switch strings.TrimSpace(status) {
	case constants.TableStatusOccupied:
		return constants.TableStatusOccupied
	case constants.TableStatusUnavailable:
		return constants.TableStatusUnavailable
	default:
		return constants.TableStatusAvailable
	}
}
