package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

// AddressService 配送地址服务
type AddressService struct {
	repo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// AddressInput 创建/更新地址输入
type AddressInput struct {
	Label      string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Phone      string
	IsDefault  bool
}

// ListByUser 获取顾客地址列表
func (s *AddressService) ListByUser(userID uint) ([]models.Address, error) {
	return s.repo.ListByUser(userID)
}

// Get 获取顾客地址
func (s *AddressService) Get(id, userID uint) (*models.Address, error) {
	address, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// Create 创建地址，设为默认时清除原默认
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	address := models.Address{
		UserID:     userID,
		Label:      strings.TrimSpace(input.Label),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      strings.TrimSpace(input.Line2),
		City:       strings.TrimSpace(input.City),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Phone:      strings.TrimSpace(input.Phone),
		IsDefault:  input.IsDefault,
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefault(userID); err != nil {
				return err
			}
		}
		return repo.Create(&address)
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Update 更新地址
func (s *AddressService) Update(id, userID uint, input AddressInput) (*models.Address, error) {
	address, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	address.Label = strings.TrimSpace(input.Label)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Phone = strings.TrimSpace(input.Phone)

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(userID); err != nil {
				return err
			}
		}
		address.IsDefault = input.IsDefault
		return repo.Update(address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefault 设置默认地址
func (s *AddressService) SetDefault(id, userID uint) (*models.Address, error) {
	address, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if address.IsDefault {
		return address, nil
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefault(userID); err != nil {
			return err
		}
		address.IsDefault = true
		return repo.Update(address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Delete 删除地址
func (s *AddressService) Delete(id, userID uint) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}
	return s.repo.Delete(id, userID)
}
