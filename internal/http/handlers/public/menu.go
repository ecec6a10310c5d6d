package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, categories)
}

// GetMenuItems 获取菜单列表（仅在售）
func (h *Handler) GetMenuItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	categoryID := c.Query("category_id")
	search := strings.TrimSpace(c.Query("search"))

	items, total, err := h.MenuItemService.ListPublic(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "menu fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetMenuItem 按 slug 获取菜品详情
func (h *Handler) GetMenuItem(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "slug required", nil)
		return
	}

	item, err := h.MenuItemService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			respondError(c, response.CodeNotFound, "menu item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "menu fetch failed", err)
		return
	}

	response.Success(c, item)
}
