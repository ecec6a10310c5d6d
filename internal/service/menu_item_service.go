package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

// MenuItemService 菜品服务
type MenuItemService struct {
	repo         repository.MenuItemRepository
	categoryRepo repository.CategoryRepository
}

// NewMenuItemService 创建菜品服务
func NewMenuItemService(repo repository.MenuItemRepository, categoryRepo repository.CategoryRepository) *MenuItemService {
	return &MenuItemService{repo: repo, categoryRepo: categoryRepo}
}

// MenuItemVariationInput 菜品规格输入
type MenuItemVariationInput struct {
	Code        string
	NameJSON    map[string]interface{}
	Price       decimal.Decimal
	IsAvailable bool
	SortOrder   int
}

// MenuItemInput 创建/更新菜品输入
type MenuItemInput struct {
	CategoryID  uint
	Slug        string
	NameJSON    map[string]interface{}
	Description map[string]interface{}
	Price       decimal.Decimal
	Images      []string
	Tags        []string
	Allergens   []string
	IsAvailable bool
	SortOrder   int
	Variations  []MenuItemVariationInput
}

// ListPublic 顾客端菜品列表，只返回供应中的菜品
func (s *MenuItemService) ListPublic(categoryID, search string, page, pageSize int) ([]models.MenuItem, int64, error) {
	return s.repo.List(repository.MenuItemListFilter{
		Page:          page,
		PageSize:      pageSize,
		CategoryID:    categoryID,
		Search:        search,
		OnlyAvailable: true,
		WithCategory:  true,
	})
}

// ListAdmin 后台菜品列表
func (s *MenuItemService) ListAdmin(categoryID, search string, page, pageSize int) ([]models.MenuItem, int64, error) {
	return s.repo.List(repository.MenuItemListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		WithCategory: true,
	})
}

// GetPublicBySlug 顾客端菜品详情
func (s *MenuItemService) GetPublicBySlug(slug string) (*models.MenuItem, error) {
	item, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsAvailable {
		return nil, ErrMenuItemNotFound
	}
	return item, nil
}

// GetAdminByID 后台菜品详情
func (s *MenuItemService) GetAdminByID(id uint) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}
	return item, nil
}

// Create 创建菜品
func (s *MenuItemService) Create(input MenuItemInput) (*models.MenuItem, error) {
	if err := s.validateInput(input, nil); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		CategoryID:      input.CategoryID,
		Slug:            input.Slug,
		NameJSON:        models.JSON(input.NameJSON),
		DescriptionJSON: models.JSON(input.Description),
		PriceAmount:     models.NewMoneyFromDecimal(input.Price),
		Images:          input.Images,
		Tags:            input.Tags,
		Allergens:       input.Allergens,
		IsAvailable:     input.IsAvailable,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(&item); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceVariations(item.ID, buildVariations(item.ID, input.Variations)); err != nil {
		return nil, err
	}
	return s.GetAdminByID(item.ID)
}

// Update 更新菜品（规格整体替换）
func (s *MenuItemService) Update(id uint, input MenuItemInput) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}
	if err := s.validateInput(input, &id); err != nil {
		return nil, err
	}

	item.CategoryID = input.CategoryID
	item.Slug = input.Slug
	item.NameJSON = models.JSON(input.NameJSON)
	item.DescriptionJSON = models.JSON(input.Description)
	item.PriceAmount = models.NewMoneyFromDecimal(input.Price)
	item.Images = input.Images
	item.Tags = input.Tags
	item.Allergens = input.Allergens
	item.IsAvailable = input.IsAvailable
	item.SortOrder = input.SortOrder

	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceVariations(id, buildVariations(id, input.Variations)); err != nil {
		return nil, err
	}
	return s.GetAdminByID(id)
}

// Delete 删除菜品
func (s *MenuItemService) Delete(id uint) error {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrMenuItemNotFound
	}
	return s.repo.Delete(id)
}

// SetAvailability 上下架菜品
func (s *MenuItemService) SetAvailability(id uint, available bool) (*models.MenuItem, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}
	item.IsAvailable = available
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuItemService) validateInput(input MenuItemInput, excludeID *uint) error {
	count, err := s.repo.CountBySlug(input.Slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugExists
	}

	category, err := s.categoryRepo.GetByID(strconv.FormatUint(uint64(input.CategoryID), 10))
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	seen := make(map[string]struct{}, len(input.Variations))
	for _, v := range input.Variations {
		code := strings.TrimSpace(v.Code)
		if code == "" {
			return ErrVariationCodeInvalid
		}
		if _, ok := seen[code]; ok {
			return ErrVariationCodeInvalid
		}
		seen[code] = struct{}{}
	}
	return nil
}

func buildVariations(menuItemID uint, inputs []MenuItemVariationInput) []models.MenuItemVariation {
	variations := make([]models.MenuItemVariation, 0, len(inputs))
	for _, v := range inputs {
		variations = append(variations, models.MenuItemVariation{
			MenuItemID:  menuItemID,
			Code:        strings.TrimSpace(v.Code),
			NameJSON:    models.JSON(v.NameJSON),
			PriceAmount: models.NewMoneyFromDecimal(v.Price),
			IsAvailable: v.IsAvailable,
			SortOrder:   v.SortOrder,
		})
	}
	return variations
}
