package public

import (
	"errors"
	"strconv"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

func parseAddressID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "address id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// AddressRequest 地址请求
type AddressRequest struct {
	Label      string `json:"label"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) toServiceInput() service.AddressInput {
	return service.AddressInput{
		Label:      r.Label,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		PostalCode: r.PostalCode,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

func respondAddressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		respondError(c, response.CodeNotFound, "address not found", nil)
	default:
		respondError(c, response.CodeInternal, "address save failed", err)
	}
}

// ListAddresses 获取地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	addresses, err := h.AddressService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "address fetch failed", err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress 新增地址
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	address, err := h.AddressService.Create(uid, req.toServiceInput())
	if err != nil {
		respondAddressError(c, err)
		return
	}

	response.Success(c, address)
}

// UpdateAddress 更新地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseAddressID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	address, err := h.AddressService.Update(id, uid, req.toServiceInput())
	if err != nil {
		respondAddressError(c, err)
		return
	}

	response.Success(c, address)
}

// SetDefaultAddress 设为默认地址
func (h *Handler) SetDefaultAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseAddressID(c)
	if !ok {
		return
	}

	address, err := h.AddressService.SetDefault(id, uid)
	if err != nil {
		respondAddressError(c, err)
		return
	}

	response.Success(c, address)
}

// DeleteAddress 删除地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseAddressID(c)
	if !ok {
		return
	}

	if err := h.AddressService.Delete(id, uid); err != nil {
		respondAddressError(c, err)
		return
	}

	response.Success(c, nil)
}
