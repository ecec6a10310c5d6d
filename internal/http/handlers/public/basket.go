package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BasketItemRequest 购物篮项请求
type BasketItemRequest struct {
	MenuItemID          uint   `json:"menu_item_id" binding:"required"`
	VariationCode       string `json:"variation_code"`
	Quantity            int    `json:"quantity" binding:"required"`
	SpecialInstructions string `json:"special_instructions"`
}

// GetBasket 获取购物篮
func (h *Handler) GetBasket(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.BasketService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "basket fetch failed", err)
		return
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal.Decimal)
	}

	response.Success(c, gin.H{
		"items": items,
		"total": models.NewMoneyFromDecimal(total),
	})
}

// UpsertBasketItem 添加/修改购物篮项
func (h *Handler) UpsertBasketItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req BasketItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	err := h.BasketService.UpsertItem(service.UpsertBasketItemInput{
		UserID:              uid,
		MenuItemID:          req.MenuItemID,
		VariationCode:       req.VariationCode,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBasketItemInvalid):
			respondError(c, response.CodeBadRequest, "basket item invalid", nil)
		case errors.Is(err, service.ErrMenuItemNotFound):
			respondError(c, response.CodeNotFound, "menu item not found", nil)
		case errors.Is(err, service.ErrMenuItemUnavailable):
			respondError(c, response.CodeBadRequest, "menu item unavailable", nil)
		case errors.Is(err, service.ErrVariationNotFound):
			respondError(c, response.CodeBadRequest, "variation not found", nil)
		default:
			respondError(c, response.CodeInternal, "basket update failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// RemoveBasketItem 删除购物篮项
func (h *Handler) RemoveBasketItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	menuItemID, err := strconv.ParseUint(c.Param("menu_item_id"), 10, 64)
	if err != nil || menuItemID == 0 {
		respondError(c, response.CodeBadRequest, "menu item id invalid", nil)
		return
	}
	variationCode := strings.TrimSpace(c.Query("variation_code"))

	if err := h.BasketService.RemoveItem(uid, uint(menuItemID), variationCode); err != nil {
		respondError(c, response.CodeInternal, "basket update failed", err)
		return
	}

	response.Success(c, nil)
}

// ClearBasket 清空购物篮
func (h *Handler) ClearBasket(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.BasketService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "basket update failed", err)
		return
	}

	response.Success(c, nil)
}

// BasketCheckoutRequest 购物篮下单请求
type BasketCheckoutRequest struct {
	Type               string          `json:"type" binding:"required"`
	TableNumber        *int            `json:"table_number"`
	CustomerEmail      string          `json:"customer_email"`
	DeliveryAddress    string          `json:"delivery_address"`
	Tip                decimal.Decimal `json:"tip"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// CheckoutBasket 购物篮结算下单
func (h *Handler) CheckoutBasket(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req BasketCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.BasketService.Checkout(service.BasketCheckoutInput{
		UserID:             uid,
		Type:               models.OrderType(req.Type),
		TableNumber:        req.TableNumber,
		CustomerEmail:      req.CustomerEmail,
		DeliveryAddress:    req.DeliveryAddress,
		Tip:                req.Tip,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		respondCreateOrderError(c, err)
		return
	}

	response.Success(c, order)
}
