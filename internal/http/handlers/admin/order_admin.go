package admin

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// AdminOrderListItem 管理端订单列表项
type AdminOrderListItem struct {
	models.Order
	UserEmail       string `json:"user_email,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        models.OrderStatus(strings.TrimSpace(c.Query("status"))),
		PaymentStatus: models.PaymentStatus(strings.TrimSpace(c.Query("payment_status"))),
		Type:          models.OrderType(strings.TrimSpace(c.Query("type"))),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
	}
	if userIDStr := strings.TrimSpace(c.Query("user_id")); userIDStr != "" {
		if parsed, err := strconv.ParseUint(userIDStr, 10, 64); err == nil {
			filter.UserID = uint(parsed)
		}
	}
	if tableStr := strings.TrimSpace(c.Query("table_number")); tableStr != "" {
		if parsed, err := strconv.Atoi(tableStr); err == nil {
			filter.TableNumber = &parsed
		}
	}

	var err error
	filter.CreatedFrom, err = parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_from invalid", err)
		return
	}
	filter.CreatedTo, err = parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_to invalid", err)
		return
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	userMap := map[uint]models.User{}
	userIDs := make([]uint, 0, len(orders))
	seen := map[uint]struct{}{}
	for _, order := range orders {
		if order.UserID == 0 {
			continue
		}
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		userIDs = append(userIDs, order.UserID)
	}
	if len(userIDs) > 0 {
		users, err := h.UserRepo.ListByIDs(userIDs)
		if err != nil {
			respondError(c, response.CodeInternal, "order fetch failed", err)
			return
		}
		for _, user := range users {
			userMap[user.ID] = user
		}
	}

	items := make([]AdminOrderListItem, 0, len(orders))
	for _, order := range orders {
		var email, nickname string
		if user, ok := userMap[order.UserID]; ok {
			email = user.Email
			nickname = user.DisplayName
		}
		items = append(items, AdminOrderListItem{
			Order:           order,
			UserEmail:       email,
			UserDisplayName: nickname,
		})
	}

	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AdminListFocusOrders 重点单队列
func (h *Handler) AdminListFocusOrders(c *gin.Context) {
	filter := repository.FocusOrderFilter{
		ActiveOnly: c.DefaultQuery("active_only", "true") != "false",
		Sort:       repository.FocusOrderSort(strings.TrimSpace(c.Query("sort"))),
	}
	if priorityStr := strings.TrimSpace(c.Query("priority")); priorityStr != "" {
		priority, err := strconv.Atoi(priorityStr)
		if err != nil {
			respondError(c, response.CodeBadRequest, "priority invalid", nil)
			return
		}
		filter.Priority = &priority
	}

	orders, err := h.OrderService.ListFocusOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, orders)
}

// AdminListConfirmedOrders 厨房增量轮询已确认订单
// 返回 server_time，调用方以它作为下一次 since，规避时钟漂移
func (h *Handler) AdminListConfirmedOrders(c *gin.Context) {
	var since time.Time
	if sinceStr := strings.TrimSpace(c.Query("since")); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			respondError(c, response.CodeBadRequest, "since invalid", err)
			return
		}
		since = parsed
	}

	snapshot, err := h.OrderService.GetConfirmedOrdersSince(since)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"orders":      snapshot.Orders,
		"server_time": snapshot.ServerTime.Format(time.RFC3339),
	})
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	var email, nickname string
	if order.UserID != 0 {
		user, err := h.UserRepo.GetByID(order.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "order fetch failed", err)
			return
		}
		if user != nil {
			email = user.Email
			nickname = user.DisplayName
		}
	}

	response.Success(c, AdminOrderListItem{
		Order:           *order,
		UserEmail:       email,
		UserDisplayName: nickname,
	})
}

// AdminUpdateOrderStatusRequest 更新订单状态请求
type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// AdminUpdateOrderStatus 按迁移表推进订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminUpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	target := models.OrderStatus(strings.TrimSpace(req.Status))
	if !target.Valid() {
		respondError(c, response.CodeBadRequest, "order status unknown", nil)
		return
	}

	order, err := h.OrderService.UpdateStatus(orderID, target, req.Notes, models.ActorUser(adminID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}
	response.Success(c, order)
}

// AdminCancelOrderRequest 取消订单请求
type AdminCancelOrderRequest struct {
	Reason string `json:"reason"`
}

// AdminCancelOrder 取消订单并自动退款已完成支付
func (h *Handler) AdminCancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminCancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CancelOrder(orderID, req.Reason, models.ActorUser(adminID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderAlreadyCanceled):
			respondError(c, response.CodeBadRequest, "order already canceled", nil)
		case errors.Is(err, service.ErrOrderTerminal):
			respondError(c, response.CodeBadRequest, "order already in terminal status", nil)
		default:
			respondError(c, response.CodeInternal, "order cancel failed", err)
		}
		return
	}
	response.Success(c, order)
}

// AdminRequestDelayRequest 厨房请求延迟出餐
type AdminRequestDelayRequest struct {
	ProposedTime time.Time `json:"proposed_time" binding:"required"`
	Reason       string    `json:"reason"`
}

// AdminRequestOrderDelay 发起延迟请求，转入待顾客确认
func (h *Handler) AdminRequestOrderDelay(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminRequestDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.RequestDelay(orderID, req.ProposedTime, req.Reason, models.ActorUser(adminID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "delay not allowed in current status", nil)
		case errors.Is(err, service.ErrDelayTimeInvalid):
			respondError(c, response.CodeBadRequest, "proposed time invalid", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}
	response.Success(c, order)
}

// AdminFocusOrderRequest 标记重点单请求
type AdminFocusOrderRequest struct {
	Priority *int   `json:"priority"`
	Reason   string `json:"reason"`
}

// AdminFocusOrder 标记重点单（幂等）
func (h *Handler) AdminFocusOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminFocusOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.ToggleFocus(orderID, service.FocusInput{
		Focus:    true,
		Priority: req.Priority,
		Reason:   req.Reason,
		Actor:    models.ActorUser(adminID),
	})
	if err != nil {
		respondFocusError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminUnfocusOrder 取消重点单（幂等）
func (h *Handler) AdminUnfocusOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.ToggleFocus(orderID, service.FocusInput{
		Focus: false,
		Actor: models.ActorUser(adminID),
	})
	if err != nil {
		respondFocusError(c, err)
		return
	}
	response.Success(c, order)
}

func respondFocusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrPriorityInvalid):
		respondError(c, response.CodeBadRequest, "priority out of range", nil)
	default:
		respondError(c, response.CodeInternal, "order update failed", err)
	}
}

// AdminDeleteOrder 软删除订单
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	if err := h.OrderService.DeleteOrder(orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderAlreadyDeleted):
			respondError(c, response.CodeBadRequest, "order already deleted", nil)
		default:
			respondError(c, response.CodeInternal, "order delete failed", err)
		}
		return
	}
	response.Success(c, nil)
}
