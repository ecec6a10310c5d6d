package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/repository"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

func parseReservationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "reservation id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func respondReservationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrReservationNotFound):
		respondError(c, response.CodeNotFound, "reservation not found", nil)
	case errors.Is(err, service.ErrReservationConflict):
		respondError(c, response.CodeBadRequest, "table already reserved for this time slot", nil)
	case errors.Is(err, service.ErrReservationStateInvalid):
		respondError(c, response.CodeBadRequest, "reservation status transition not allowed", nil)
	case errors.Is(err, service.ErrReservationTimeInvalid):
		respondError(c, response.CodeBadRequest, "reservation time range invalid", nil)
	case errors.Is(err, service.ErrReservationInvalid):
		respondError(c, response.CodeBadRequest, "reservation details invalid", nil)
	case errors.Is(err, service.ErrTableNotFound):
		respondError(c, response.CodeBadRequest, "dining table not found", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// AdminListReservations 预订列表
func (h *Handler) AdminListReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.ReservationListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if tableIDStr := strings.TrimSpace(c.Query("table_id")); tableIDStr != "" {
		if parsed, err := strconv.ParseUint(tableIDStr, 10, 64); err == nil {
			filter.TableID = uint(parsed)
		}
	}
	var err error
	filter.From, err = parseTimeNullable(strings.TrimSpace(c.Query("from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "from invalid", err)
		return
	}
	filter.To, err = parseTimeNullable(strings.TrimSpace(c.Query("to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "to invalid", err)
		return
	}

	reservations, total, err := h.ReservationService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "reservation fetch failed", err)
		return
	}

	response.SuccessWithPage(c, reservations, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AdminGetReservation 预订详情
func (h *Handler) AdminGetReservation(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	reservation, err := h.ReservationService.Get(id)
	if err != nil {
		respondReservationError(c, err, "reservation fetch failed")
		return
	}
	response.Success(c, reservation)
}

// AdminCreateReservationRequest 创建预订请求（电话/walk-in 代客录入）
type AdminCreateReservationRequest struct {
	TableID       *uint     `json:"table_id"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerPhone string    `json:"customer_phone"`
	PartySize     int       `json:"party_size" binding:"required"`
	StartsAt      time.Time `json:"starts_at" binding:"required"`
	EndsAt        time.Time `json:"ends_at"`
	Notes         string    `json:"notes"`
}

// AdminCreateReservation 代客创建预订
func (h *Handler) AdminCreateReservation(c *gin.Context) {
	var req AdminCreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reservation, err := h.ReservationService.Create(service.CreateReservationInput{
		TableID:       req.TableID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		PartySize:     req.PartySize,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Notes:         req.Notes,
	})
	if err != nil {
		respondReservationError(c, err, "reservation create failed")
		return
	}
	response.Success(c, reservation)
}

// AssignReservationTableRequest 分配桌台请求
type AssignReservationTableRequest struct {
	TableID uint `json:"table_id" binding:"required"`
}

// AdminAssignReservationTable 为预订分配桌台
func (h *Handler) AdminAssignReservationTable(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}

	var req AssignReservationTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reservation, err := h.ReservationService.AssignTable(id, req.TableID)
	if err != nil {
		respondReservationError(c, err, "reservation update failed")
		return
	}
	response.Success(c, reservation)
}

// AdminSeatReservation 顾客到店入座
func (h *Handler) AdminSeatReservation(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	reservation, err := h.ReservationService.Seat(id)
	if err != nil {
		respondReservationError(c, err, "reservation update failed")
		return
	}
	response.Success(c, reservation)
}

// AdminCompleteReservation 用餐结束释放桌台
func (h *Handler) AdminCompleteReservation(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	reservation, err := h.ReservationService.Complete(id)
	if err != nil {
		respondReservationError(c, err, "reservation update failed")
		return
	}
	response.Success(c, reservation)
}

// AdminCancelReservation 取消预订
func (h *Handler) AdminCancelReservation(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	reservation, err := h.ReservationService.Cancel(id, 0)
	if err != nil {
		respondReservationError(c, err, "reservation update failed")
		return
	}
	response.Success(c, reservation)
}

// AdminMarkReservationNoShow 标记未到店
func (h *Handler) AdminMarkReservationNoShow(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	reservation, err := h.ReservationService.MarkNoShow(id)
	if err != nil {
		respondReservationError(c, err, "reservation update failed")
		return
	}
	response.Success(c, reservation)
}
