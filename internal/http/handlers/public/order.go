package public

import (
	"errors"
	"io"
	"strconv"
	"strings"

	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// getOwnedOrder 校验订单归属当前顾客
func (h *Handler) getOwnedOrder(c *gin.Context, orderID uint) (*models.Order, bool) {
	uid, ok := getUserID(c)
	if !ok {
		return nil, false
	}
	order, err := h.OrderService.GetOrderByUser(orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return nil, false
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return nil, false
	}
	return order, true
}

func respondCreateOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderTypeInvalid):
		respondError(c, response.CodeBadRequest, "order type invalid", nil)
	case errors.Is(err, service.ErrTableNumberRequired):
		respondError(c, response.CodeBadRequest, "table number required for dine-in order", nil)
	case errors.Is(err, service.ErrDeliveryAddressNeeded):
		respondError(c, response.CodeBadRequest, "delivery address required for delivery order", nil)
	case errors.Is(err, service.ErrInvalidOrderItem):
		respondError(c, response.CodeBadRequest, "order item invalid", nil)
	case errors.Is(err, service.ErrBasketEmpty):
		respondError(c, response.CodeBadRequest, "basket is empty", nil)
	case errors.Is(err, service.ErrMenuItemNotFound):
		respondError(c, response.CodeNotFound, "menu item not found", nil)
	case errors.Is(err, service.ErrMenuItemUnavailable):
		respondError(c, response.CodeBadRequest, "menu item unavailable", nil)
	case errors.Is(err, service.ErrVariationNotFound):
		respondError(c, response.CodeBadRequest, "variation not found", nil)
	default:
		respondError(c, response.CodeInternal, "order create failed", err)
	}
}

// OrderItemRequest 下单菜品项
type OrderItemRequest struct {
	MenuItemID          uint   `json:"menu_item_id" binding:"required"`
	VariationCode       string `json:"variation_code"`
	Quantity            int    `json:"quantity" binding:"required"`
	SpecialInstructions string `json:"special_instructions"`
}

// CreateOrderRequest 直接下单请求
type CreateOrderRequest struct {
	Type               string             `json:"type" binding:"required"`
	TableNumber        *int               `json:"table_number"`
	CustomerEmail      string             `json:"customer_email"`
	DeliveryAddress    string             `json:"delivery_address"`
	Tip                decimal.Decimal    `json:"tip"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	Items              []OrderItemRequest `json:"items" binding:"required"`
}

// CreateOrder 顾客直接下单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			MenuItemID:          item.MenuItemID,
			VariationCode:       item.VariationCode,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:             uid,
		Type:               models.OrderType(req.Type),
		TableNumber:        req.TableNumber,
		CustomerEmail:      req.CustomerEmail,
		DeliveryAddress:    req.DeliveryAddress,
		Tip:                req.Tip,
		DiscountPercentage: req.DiscountPercentage,
		Items:              items,
		Actor:              models.ActorCustomer,
	})
	if err != nil {
		respondCreateOrderError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取当前顾客订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   models.OrderStatus(status),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取订单详情（仅限本人）
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, ok := h.getOwnedOrder(c, orderID)
	if !ok {
		return
	}

	response.Success(c, order)
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder 顾客取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	if _, ok := h.getOwnedOrder(c, orderID); !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CancelOrder(orderID, req.Reason, models.ActorCustomer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderAlreadyCanceled):
			respondError(c, response.CodeBadRequest, "order already canceled", nil)
		case errors.Is(err, service.ErrOrderTerminal):
			respondError(c, response.CodeBadRequest, "order already in terminal status", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order cannot be canceled in current status", nil)
		default:
			respondError(c, response.CodeInternal, "order cancel failed", err)
		}
		return
	}

	response.Success(c, order)
}

// ApproveOrderDelay 顾客同意延迟送达
func (h *Handler) ApproveOrderDelay(c *gin.Context) {
	h.resolveOrderDelay(c, true)
}

// RejectOrderDelay 顾客拒绝延迟送达
func (h *Handler) RejectOrderDelay(c *gin.Context) {
	h.resolveOrderDelay(c, false)
}

func (h *Handler) resolveOrderDelay(c *gin.Context, approve bool) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	if _, ok := h.getOwnedOrder(c, orderID); !ok {
		return
	}

	var (
		order *models.Order
		err   error
	)
	if approve {
		order, err = h.OrderService.ApproveDelay(orderID)
	} else {
		order, err = h.OrderService.RejectDelay(orderID)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrDelayNotPending):
			respondError(c, response.CodeBadRequest, "no delay proposal pending approval", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}
