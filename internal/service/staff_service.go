package service

import (
	"context"
	"strings"
	"time"

	"github.com/tavolo-next/internal/authz"
	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

// StaffService 员工账号管理服务
// 角色变更会同步到授权策略，并使已签发的 Token 失效
type StaffService struct {
	adminRepo    repository.AdminRepository
	authService  *AuthService
	authzService *authz.Service
}

// NewStaffService 创建员工管理服务
func NewStaffService(adminRepo repository.AdminRepository, authService *AuthService, authzService *authz.Service) *StaffService {
	return &StaffService{
		adminRepo:    adminRepo,
		authService:  authService,
		authzService: authzService,
	}
}

// CreateStaffInput 创建员工输入
type CreateStaffInput struct {
	Username string
	Password string
	Role     string
}

// List 员工列表
func (s *StaffService) List() ([]models.Admin, error) {
	return s.adminRepo.List()
}

// Get 员工详情
func (s *StaffService) Get(id uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

// Create 创建员工账号并绑定角色
func (s *StaffService) Create(input CreateStaffInput) (*models.Admin, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	role, ok := normalizeStaffRole(input.Role)
	if !ok {
		return nil, ErrRoleInvalid
	}
	if err := s.authService.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}

	if err := s.authzService.SetAdminRoles(admin.ID, []string{role}); err != nil {
		logger.Warnw("staff_bind_role_failed", "admin_id", admin.ID, "role", role, "error", err)
	}
	return admin, nil
}

// UpdateRole 变更员工角色并作废旧 Token
func (s *StaffService) UpdateRole(id uint, role string) (*models.Admin, error) {
	normalized, ok := normalizeStaffRole(role)
	if !ok {
		return nil, ErrRoleInvalid
	}
	admin, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin.Role = normalized
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}

	if err := s.authzService.SetAdminRoles(admin.ID, []string{normalized}); err != nil {
		logger.Warnw("staff_bind_role_failed", "admin_id", admin.ID, "role", normalized, "error", err)
	}
	if err := cache.DelAdminAuthState(context.Background(), admin.ID); err != nil {
		logger.Warnw("staff_invalidate_auth_state_failed", "admin_id", admin.ID, "error", err)
	}
	return admin, nil
}

// ResetPassword 重置员工密码并作废旧 Token
func (s *StaffService) ResetPassword(id uint, newPassword string) error {
	if err := s.authService.ValidatePassword(newPassword); err != nil {
		return err
	}
	admin, err := s.Get(id)
	if err != nil {
		return err
	}

	hash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	admin.PasswordHash = hash
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	if err := cache.DelAdminAuthState(context.Background(), admin.ID); err != nil {
		logger.Warnw("staff_invalidate_auth_state_failed", "admin_id", admin.ID, "error", err)
	}
	return nil
}

// Delete 删除员工账号并清理角色绑定
func (s *StaffService) Delete(id uint) error {
	admin, err := s.Get(id)
	if err != nil {
		return err
	}
	if admin.IsSuper {
		return ErrRoleInvalid
	}
	if err := s.adminRepo.Delete(id); err != nil {
		return err
	}
	if err := s.authzService.SetAdminRoles(id, nil); err != nil {
		logger.Warnw("staff_unbind_role_failed", "admin_id", id, "error", err)
	}
	if err := cache.DelAdminAuthState(context.Background(), id); err != nil {
		logger.Warnw("staff_invalidate_auth_state_failed", "admin_id", id, "error", err)
	}
	return nil
}

func normalizeStaffRole(role string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	switch normalized {
	case constants.StaffRoleManager, constants.StaffRoleKitchen, constants.StaffRoleWaiter:
		return normalized, true
	default:
		return "", false
	}
}
