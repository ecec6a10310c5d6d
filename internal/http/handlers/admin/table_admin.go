package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// DiningTableRequest 创建/更新桌台请求
type DiningTableRequest struct {
	Number int    `json:"number" binding:"required"`
	Seats  int    `json:"seats" binding:"required"`
	Zone   string `json:"zone"`
	Status string `json:"status"`
}

func parseTableID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "table id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func respondTableError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTableNotFound):
		respondError(c, response.CodeNotFound, "dining table not found", nil)
	case errors.Is(err, service.ErrTableNumberTaken):
		respondError(c, response.CodeBadRequest, "table number already in use", nil)
	case errors.Is(err, service.ErrTableInvalid):
		respondError(c, response.CodeBadRequest, "table details invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// GetAdminTables 桌台列表
func (h *Handler) GetAdminTables(c *gin.Context) {
	tables, err := h.DiningTableService.List(strings.TrimSpace(c.Query("status")))
	if err != nil {
		respondError(c, response.CodeInternal, "table fetch failed", err)
		return
	}
	response.Success(c, tables)
}

// CreateTable 创建桌台
func (h *Handler) CreateTable(c *gin.Context) {
	var req DiningTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	table, err := h.DiningTableService.Create(service.DiningTableInput{
		Number: req.Number,
		Seats:  req.Seats,
		Zone:   strings.TrimSpace(req.Zone),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		respondTableError(c, err, "table create failed")
		return
	}
	response.Success(c, table)
}

// UpdateTable 更新桌台
func (h *Handler) UpdateTable(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}

	var req DiningTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	table, err := h.DiningTableService.Update(id, service.DiningTableInput{
		Number: req.Number,
		Seats:  req.Seats,
		Zone:   strings.TrimSpace(req.Zone),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		respondTableError(c, err, "table update failed")
		return
	}
	response.Success(c, table)
}

// SetTableStatusRequest 桌台状态请求
type SetTableStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetTableStatus 设置桌台状态
func (h *Handler) SetTableStatus(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}

	var req SetTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	table, err := h.DiningTableService.SetStatus(id, strings.TrimSpace(req.Status))
	if err != nil {
		respondTableError(c, err, "table update failed")
		return
	}
	response.Success(c, table)
}

// DeleteTable 删除桌台
func (h *Handler) DeleteTable(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	if err := h.DiningTableService.Delete(id); err != nil {
		respondTableError(c, err, "table delete failed")
		return
	}
	response.Success(c, nil)
}
