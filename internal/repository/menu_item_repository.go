package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tavolo-next/internal/models"

	"gorm.io/gorm"
)

// MenuItemRepository 菜品数据访问接口
type MenuItemRepository interface {
	List(filter MenuItemListFilter) ([]models.MenuItem, int64, error)
	GetByID(id uint) (*models.MenuItem, error)
	GetBySlug(slug string) (*models.MenuItem, error)
	CountBySlug(slug string, excludeID *uint) (int64, error)
	Create(item *models.MenuItem) error
	Update(item *models.MenuItem) error
	Delete(id uint) error
	GetVariation(menuItemID uint, code string) (*models.MenuItemVariation, error)
	ReplaceVariations(menuItemID uint, variations []models.MenuItemVariation) error
	WithTx(tx *gorm.DB) *GormMenuItemRepository
}

// GormMenuItemRepository GORM 实现
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewMenuItemRepository 创建菜品仓库
func NewMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMenuItemRepository) WithTx(tx *gorm.DB) *GormMenuItemRepository {
	if tx == nil {
		return r
	}
	return &GormMenuItemRepository{db: tx}
}

// List 菜品列表
func (r *GormMenuItemRepository) List(filter MenuItemListFilter) ([]models.MenuItem, int64, error) {
	query := r.db.Model(&models.MenuItem{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		expr := localizedJSONCoalesceExpr(r.db, "name_json")
		query = query.Where(fmt.Sprintf("slug LIKE ? OR %s LIKE ?", expr), pattern, pattern)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query.Order("sort_order asc, id asc"), filter.Page, filter.PageSize)
	query = query.Preload("Variations", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order asc, id asc")
	})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	items := make([]models.MenuItem, 0)
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID 根据 ID 获取菜品（含规格）
func (r *GormMenuItemRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.Preload("Variations").Preload("Category").
		First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetBySlug 根据 slug 获取菜品
func (r *GormMenuItemRepository) GetBySlug(slug string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.Preload("Variations").Preload("Category").
		Where("slug = ?", slug).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CountBySlug 统计同 slug 菜品数量（可排除自身）
func (r *GormMenuItemRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	query := r.db.Model(&models.MenuItem{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建菜品
func (r *GormMenuItemRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

// Update 更新菜品
func (r *GormMenuItemRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

// Delete 删除菜品
func (r *GormMenuItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.MenuItem{}, id).Error
}

// GetVariation 获取菜品规格
func (r *GormMenuItemRepository) GetVariation(menuItemID uint, code string) (*models.MenuItemVariation, error) {
	var variation models.MenuItemVariation
	if err := r.db.Where("menu_item_id = ? AND code = ?", menuItemID, code).
		First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variation, nil
}

// ReplaceVariations 整体替换菜品规格
func (r *GormMenuItemRepository) ReplaceVariations(menuItemID uint, variations []models.MenuItemVariation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", menuItemID).
			Delete(&models.MenuItemVariation{}).Error; err != nil {
			return err
		}
		for i := range variations {
			variations[i].ID = 0
			variations[i].MenuItemID = menuItemID
		}
		if len(variations) == 0 {
			return nil
		}
		return tx.Create(&variations).Error
	})
}
