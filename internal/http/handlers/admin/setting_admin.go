package admin

import (
	"errors"
	"strings"

	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 与 public 包内的缓存键保持一致，站点配置更新后需要失效公共配置缓存
const publicConfigCacheKey = "public:config"

// GetSettings 获取设置
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeySiteConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}

	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 更新设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "settings save failed", err)
		return
	}

	if req.Key == constants.SettingKeySiteConfig {
		_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	}
	response.Success(c, value)
}

// GetSMTPSettings 获取 SMTP 配置（脱敏）
func (h *Handler) GetSMTPSettings(c *gin.Context) {
	setting, err := h.SettingService.GetSMTPSetting(h.Config.Email)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, service.MaskSMTPSettingForAdmin(setting))
}

// UpdateSMTPSettings 更新 SMTP 配置
func (h *Handler) UpdateSMTPSettings(c *gin.Context) {
	var req service.SMTPSettingPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	setting, err := h.SettingService.PatchSMTPSetting(h.Config.Email, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSMTPConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "settings save failed", err)
		}
		return
	}

	h.Config.Email = service.SMTPSettingToConfig(setting)
	if h.EmailService != nil {
		h.EmailService.SetConfig(&h.Config.Email)
	}

	response.Success(c, service.MaskSMTPSettingForAdmin(setting))
}

// SMTPTestSendRequest SMTP 测试发送请求
type SMTPTestSendRequest struct {
	ToEmail string `json:"to_email" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TestSMTPSettings 测试 SMTP 配置发送
func (h *Handler) TestSMTPSettings(c *gin.Context) {
	var req SMTPTestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	toEmail := strings.TrimSpace(req.ToEmail)
	if toEmail == "" {
		respondError(c, response.CodeBadRequest, "email invalid", nil)
		return
	}

	setting, err := h.SettingService.GetSMTPSetting(h.Config.Email)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}

	configForSend := service.SMTPSettingToConfig(setting)
	configForSend.Enabled = true
	tempEmailService := service.NewEmailService(&configForSend)

	if err := tempEmailService.SendCustomEmail(toEmail, req.Subject, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "email recipient rejected", nil)
		case errors.Is(err, service.ErrEmailServiceDisabled),
			errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "email service not configured", err)
		default:
			respondError(c, response.CodeInternal, "email send failed", err)
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, service.CaptchaSettingToMap(setting))
}

// UpdateCaptchaSettings 更新验证码配置
func (h *Handler) UpdateCaptchaSettings(c *gin.Context) {
	var req service.CaptchaSettingPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	setting, err := h.SettingService.PatchCaptchaSetting(h.Config.Captcha, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "settings save failed", err)
		}
		return
	}

	h.Config.Captcha = service.CaptchaSettingToConfig(setting)
	if h.CaptchaService != nil {
		h.CaptchaService.SetDefaultConfig(h.Config.Captcha)
		h.CaptchaService.InvalidateCache()
	}
	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)

	response.Success(c, service.CaptchaSettingToMap(setting))
}
