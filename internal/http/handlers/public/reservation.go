package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListMyReservations 获取当前顾客的预订列表
func (h *Handler) ListMyReservations(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	reservations, err := h.ReservationService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "reservation fetch failed", err)
		return
	}
	response.Success(c, reservations)
}

// CreateReservationRequest 顾客创建预订请求
type CreateReservationRequest struct {
	TableID       *uint     `json:"table_id"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerPhone string    `json:"customer_phone"`
	PartySize     int       `json:"party_size" binding:"required"`
	StartsAt      time.Time `json:"starts_at" binding:"required"`
	EndsAt        time.Time `json:"ends_at" binding:"required"`
	Notes         string    `json:"notes"`
}

// CreateReservation 顾客创建预订
func (h *Handler) CreateReservation(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reservation, err := h.ReservationService.Create(service.CreateReservationInput{
		UserID:        uid,
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PartySize:     req.PartySize,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationInvalid):
			respondError(c, response.CodeBadRequest, "reservation details invalid", nil)
		case errors.Is(err, service.ErrReservationTimeInvalid):
			respondError(c, response.CodeBadRequest, "reservation time range invalid", nil)
		case errors.Is(err, service.ErrTableNotFound):
			respondError(c, response.CodeNotFound, "dining table not found", nil)
		case errors.Is(err, service.ErrReservationConflict):
			respondError(c, response.CodeBadRequest, "table already reserved for this time slot", nil)
		default:
			respondError(c, response.CodeInternal, "reservation create failed", err)
		}
		return
	}

	response.Success(c, reservation)
}

// CancelReservation 顾客取消预订
func (h *Handler) CancelReservation(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "reservation id invalid", nil)
		return
	}

	reservation, err := h.ReservationService.Cancel(uint(id), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			respondError(c, response.CodeNotFound, "reservation not found", nil)
		case errors.Is(err, service.ErrReservationStateInvalid):
			respondError(c, response.CodeBadRequest, "reservation cannot be canceled in current status", nil)
		default:
			respondError(c, response.CodeInternal, "reservation cancel failed", err)
		}
		return
	}

	response.Success(c, reservation)
}
