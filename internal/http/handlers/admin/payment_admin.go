package admin

import (
	"errors"
	"strings"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminListOrderPayments 订单支付记录列表
func (h *Handler) AdminListOrderPayments(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	payments, err := h.PaymentService.ListPayments(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	response.Success(c, payments)
}

// AdminAddPaymentRequest 记录支付请求
type AdminAddPaymentRequest struct {
	Method         string          `json:"method" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	TransactionRef string          `json:"transaction_ref"`
}

// AdminAddOrderPayment 记录一笔支付并重算订单支付状态
func (h *Handler) AdminAddOrderPayment(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminAddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, payment, err := h.PaymentService.AddPayment(service.AddPaymentInput{
		OrderID:        orderID,
		Method:         models.PaymentMethod(strings.TrimSpace(req.Method)),
		Amount:         req.Amount,
		TransactionRef: strings.TrimSpace(req.TransactionRef),
		Actor:          models.ActorUser(adminID),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrPaymentMethodInvalid):
			respondError(c, response.CodeBadRequest, "payment method invalid", nil)
		case errors.Is(err, service.ErrPaymentAmountInvalid):
			respondError(c, response.CodeBadRequest, "payment amount must be positive", nil)
		case errors.Is(err, service.ErrOrderTerminal):
			respondError(c, response.CodeBadRequest, "order already in terminal status", nil)
		case errors.Is(err, service.ErrNothingLeftToPay):
			respondError(c, response.CodeBadRequest, "order has no remaining amount to pay", nil)
		default:
			respondError(c, response.CodeInternal, "payment record failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"order":   order,
		"payment": payment,
	})
}

// AdminRefundPaymentRequest 退款请求
type AdminRefundPaymentRequest struct {
	PaymentID uint            `json:"payment_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason"`
}

// AdminRefundOrderPayment 对单笔支付退款（支持部分退款）
func (h *Handler) AdminRefundOrderPayment(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AdminRefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, payment, err := h.PaymentService.RefundPayment(service.RefundPaymentInput{
		OrderID:   orderID,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Reason:    req.Reason,
		Actor:     models.ActorUser(adminID),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "payment not found", nil)
		case errors.Is(err, service.ErrPaymentAmountInvalid):
			respondError(c, response.CodeBadRequest, "refund amount must be positive", nil)
		case errors.Is(err, service.ErrPaymentAlreadyRefunded):
			respondError(c, response.CodeBadRequest, "payment already fully refunded", nil)
		case errors.Is(err, service.ErrPaymentNotRefundable):
			respondError(c, response.CodeBadRequest, "payment not refundable", nil)
		case errors.Is(err, service.ErrRefundExceedsAmount):
			respondError(c, response.CodeBadRequest, "refund exceeds refundable amount", nil)
		default:
			respondError(c, response.CodeInternal, "refund failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"order":   order,
		"payment": payment,
	})
}
