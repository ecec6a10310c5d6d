package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ====================  分类管理  ====================

// CategoryRequest 创建/更新分类请求
type CategoryRequest struct {
	Slug      string                 `json:"slug" binding:"required"`
	NameJSON  map[string]interface{} `json:"name" binding:"required"`
	Icon      string                 `json:"icon"`
	SortOrder int                    `json:"sort_order"`
}

// GetAdminCategories 分类列表
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category, err := h.CategoryService.Create(service.CreateCategoryInput{
		Slug:      strings.TrimSpace(req.Slug),
		NameJSON:  req.NameJSON,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrSlugExists) {
			respondError(c, response.CodeBadRequest, "slug already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "category create failed", err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category, err := h.CategoryService.Update(c.Param("id"), service.CreateCategoryInput{
		Slug:      strings.TrimSpace(req.Slug),
		NameJSON:  req.NameJSON,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrSlugExists):
			respondError(c, response.CodeBadRequest, "slug already exists", nil)
		default:
			respondError(c, response.CodeInternal, "category update failed", err)
		}
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（仍挂有菜品时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.CategoryService.Delete(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategoryHasMenuItems):
			respondError(c, response.CodeBadRequest, "category still has menu items", nil)
		default:
			respondError(c, response.CodeInternal, "category delete failed", err)
		}
		return
	}
	response.Success(c, nil)
}

// ====================  菜品管理  ====================

// MenuItemVariationRequest 菜品规格请求
type MenuItemVariationRequest struct {
	Code        string                 `json:"code" binding:"required"`
	NameJSON    map[string]interface{} `json:"name"`
	Price       decimal.Decimal        `json:"price"`
	IsAvailable *bool                  `json:"is_available"`
	SortOrder   int                    `json:"sort_order"`
}

// MenuItemRequest 创建/更新菜品请求
type MenuItemRequest struct {
	CategoryID  uint                       `json:"category_id" binding:"required"`
	Slug        string                     `json:"slug" binding:"required"`
	NameJSON    map[string]interface{}     `json:"name" binding:"required"`
	Description map[string]interface{}     `json:"description"`
	Price       decimal.Decimal            `json:"price" binding:"required"`
	Images      []string                   `json:"images"`
	Tags        []string                   `json:"tags"`
	Allergens   []string                   `json:"allergens"`
	IsAvailable *bool                      `json:"is_available"`
	SortOrder   int                        `json:"sort_order"`
	Variations  []MenuItemVariationRequest `json:"variations"`
}

func (r MenuItemRequest) toServiceInput() service.MenuItemInput {
	input := service.MenuItemInput{
		CategoryID:  r.CategoryID,
		Slug:        strings.TrimSpace(r.Slug),
		NameJSON:    r.NameJSON,
		Description: r.Description,
		Price:       r.Price,
		Images:      r.Images,
		Tags:        r.Tags,
		Allergens:   r.Allergens,
		IsAvailable: r.IsAvailable == nil || *r.IsAvailable,
		SortOrder:   r.SortOrder,
	}
	for _, variation := range r.Variations {
		input.Variations = append(input.Variations, service.MenuItemVariationInput{
			Code:        strings.TrimSpace(variation.Code),
			NameJSON:    variation.NameJSON,
			Price:       variation.Price,
			IsAvailable: variation.IsAvailable == nil || *variation.IsAvailable,
			SortOrder:   variation.SortOrder,
		})
	}
	return input
}

func parseMenuItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "menu item id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func respondMenuItemError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMenuItemNotFound):
		respondError(c, response.CodeNotFound, "menu item not found", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "category not found", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeBadRequest, "slug already exists", nil)
	case errors.Is(err, service.ErrVariationCodeInvalid):
		respondError(c, response.CodeBadRequest, "variation code invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// GetAdminMenuItems 管理端菜品列表（含下架菜品）
func (h *Handler) GetAdminMenuItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	items, total, err := h.MenuItemService.ListAdmin(
		strings.TrimSpace(c.Query("category_id")),
		strings.TrimSpace(c.Query("search")),
		page, pageSize,
	)
	if err != nil {
		respondError(c, response.CodeInternal, "menu fetch failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetAdminMenuItem 管理端菜品详情
func (h *Handler) GetAdminMenuItem(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}
	item, err := h.MenuItemService.GetAdminByID(id)
	if err != nil {
		respondMenuItemError(c, err, "menu fetch failed")
		return
	}
	response.Success(c, item)
}

// CreateMenuItem 创建菜品
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.MenuItemService.Create(req.toServiceInput())
	if err != nil {
		respondMenuItemError(c, err, "menu item create failed")
		return
	}
	response.Success(c, item)
}

// UpdateMenuItem 更新菜品
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.MenuItemService.Update(id, req.toServiceInput())
	if err != nil {
		respondMenuItemError(c, err, "menu item update failed")
		return
	}
	response.Success(c, item)
}

// DeleteMenuItem 删除菜品
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}
	if err := h.MenuItemService.Delete(id); err != nil {
		respondMenuItemError(c, err, "menu item delete failed")
		return
	}
	response.Success(c, nil)
}

// SetMenuItemAvailabilityRequest 菜品上下架请求
type SetMenuItemAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetMenuItemAvailability 菜品上下架
func (h *Handler) SetMenuItemAvailability(c *gin.Context) {
	id, ok := parseMenuItemID(c)
	if !ok {
		return
	}

	var req SetMenuItemAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.MenuItemService.SetAvailability(id, *req.IsAvailable)
	if err != nil {
		respondMenuItemError(c, err, "menu item update failed")
		return
	}
	response.Success(c, item)
}
