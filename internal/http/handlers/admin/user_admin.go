package admin

import (
	"strconv"
	"strings"

	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/constants"
	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	keyword := strings.TrimSpace(c.Query("keyword"))
	status := strings.TrimSpace(c.Query("status"))

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	lastLoginFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("last_login_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	lastLoginTo, err := parseTimeNullable(strings.TrimSpace(c.Query("last_login_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       keyword,
		Status:        status,
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
		LastLoginFrom: lastLoginFrom,
		LastLoginTo:   lastLoginTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, users, pagination)
}

// GetAdminUser 获取用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "user id invalid", nil)
		return
	}

	user, err := h.UserRepo.GetByID(uint(rawID))
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	response.Success(c, user)
}

// BatchUpdateUserStatusRequest 批量更新用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// BatchUpdateUserStatus 批量启用/禁用用户
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if len(req.UserIDs) == 0 {
		respondError(c, response.CodeBadRequest, "user ids required", nil)
		return
	}
	if req.Status != constants.UserStatusActive && req.Status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "user status invalid", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, req.Status); err != nil {
		respondError(c, response.CodeInternal, "user update failed", err)
		return
	}

	// 被禁用的用户立即失效登录态
	if req.Status == constants.UserStatusDisabled {
		for _, userID := range req.UserIDs {
			_ = cache.DelUserAuthState(c.Request.Context(), userID)
		}
	}

	response.Success(c, gin.H{"updated": len(req.UserIDs), "status": req.Status})
}
