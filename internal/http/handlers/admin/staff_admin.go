package admin

import (
	"errors"
	"strconv"

	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

func parseStaffID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "staff id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// GetStaffList 获取员工列表
func (h *Handler) GetStaffList(c *gin.Context) {
	staff, err := h.StaffService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "staff fetch failed", err)
		return
	}
	response.Success(c, staff)
}

// GetStaff 获取员工详情
func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := parseStaffID(c)
	if !ok {
		return
	}

	staff, err := h.StaffService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "staff not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "staff fetch failed", err)
		return
	}
	response.Success(c, staff)
}

// CreateStaffRequest 创建员工请求
type CreateStaffRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// CreateStaff 创建员工账号
func (h *Handler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	staff, err := h.StaffService.Create(service.CreateStaffInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "username required", nil)
		case errors.Is(err, service.ErrRoleInvalid):
			respondError(c, response.CodeBadRequest, "staff role invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrUsernameExists):
			respondError(c, response.CodeBadRequest, "username already exists", nil)
		default:
			respondError(c, response.CodeInternal, "staff create failed", err)
		}
		return
	}

	response.Success(c, staff)
}

// UpdateStaffRoleRequest 更新员工角色请求
type UpdateStaffRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStaffRole 调整员工角色（会使其现有登录态失效）
func (h *Handler) UpdateStaffRole(c *gin.Context) {
	id, ok := parseStaffID(c)
	if !ok {
		return
	}

	var req UpdateStaffRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	staff, err := h.StaffService.UpdateRole(id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleInvalid):
			respondError(c, response.CodeBadRequest, "staff role invalid", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "staff not found", nil)
		default:
			respondError(c, response.CodeInternal, "staff update failed", err)
		}
		return
	}

	response.Success(c, staff)
}

// ResetStaffPasswordRequest 重置员工密码请求
type ResetStaffPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetStaffPassword 重置员工密码
func (h *Handler) ResetStaffPassword(c *gin.Context) {
	id, ok := parseStaffID(c)
	if !ok {
		return
	}

	var req ResetStaffPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.StaffService.ResetPassword(id, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "staff not found", nil)
		default:
			respondError(c, response.CodeInternal, "staff update failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// DeleteStaff 删除员工账号
func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := parseStaffID(c)
	if !ok {
		return
	}

	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	if adminID == id {
		respondError(c, response.CodeBadRequest, "cannot delete current account", nil)
		return
	}

	if err := h.StaffService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "staff not found", nil)
		case errors.Is(err, service.ErrRoleInvalid):
			respondError(c, response.CodeBadRequest, "cannot delete super admin", nil)
		default:
			respondError(c, response.CodeInternal, "staff delete failed", err)
		}
		return
	}

	response.Success(c, nil)
}
