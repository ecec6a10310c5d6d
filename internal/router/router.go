package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tavolo-next/internal/authz"
	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/config"
	adminhandlers "github.com/tavolo-next/internal/http/handlers/admin"
	publichandlers "github.com/tavolo-next/internal/http/handlers/public"
	"github.com/tavolo-next/internal/http/response"
	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组)
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tavolo"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, retry in %ds",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, retry in %ds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）- 必须放在最前面
	r.Static("/uploads", "./uploads")

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/menu-items", publicHandler.GetMenuItems)
			public.GET("/menu-items/:slug", publicHandler.GetMenuItem)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 顾客认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 顾客接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/basket", publicHandler.GetBasket)
			user.POST("/basket/items", publicHandler.UpsertBasketItem)
			user.DELETE("/basket/items/:menu_item_id", publicHandler.RemoveBasketItem)
			user.DELETE("/basket", publicHandler.ClearBasket)
			user.POST("/basket/checkout", publicHandler.CheckoutBasket)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.POST("/orders/:id/delay/approve", publicHandler.ApproveOrderDelay)
			user.POST("/orders/:id/delay/reject", publicHandler.RejectOrderDelay)

			user.GET("/reservations", publicHandler.ListMyReservations)
			user.POST("/reservations", publicHandler.CreateReservation)
			user.POST("/reservations/:id/cancel", publicHandler.CancelReservation)

			user.GET("/addresses", publicHandler.ListAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.POST("/addresses/:id/default", publicHandler.SetDefaultAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)
		}

		// 员工/管理端接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				// 仪表盘
				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				authorized.GET("/dashboard/trends", adminHandler.GetDashboardTrends)
				authorized.GET("/dashboard/rankings", adminHandler.GetDashboardRankings)

				// 个人信息
				authorized.GET("/profile", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 订单管理
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/focus", adminHandler.AdminListFocusOrders)
				authorized.GET("/orders/confirmed", adminHandler.AdminListConfirmedOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.POST("/orders/:id/status", adminHandler.AdminUpdateOrderStatus)
				authorized.POST("/orders/:id/cancel", adminHandler.AdminCancelOrder)
				authorized.POST("/orders/:id/delay", adminHandler.AdminRequestOrderDelay)
				authorized.POST("/orders/:id/focus", adminHandler.AdminFocusOrder)
				authorized.DELETE("/orders/:id/focus", adminHandler.AdminUnfocusOrder)
				authorized.DELETE("/orders/:id", adminHandler.AdminDeleteOrder)

				// 收款与退款
				authorized.GET("/orders/:id/payments", adminHandler.AdminListOrderPayments)
				authorized.POST("/orders/:id/payments", adminHandler.AdminAddOrderPayment)
				authorized.POST("/orders/:id/payments/refund", adminHandler.AdminRefundOrderPayment)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 菜单管理
				authorized.GET("/menu-items", adminHandler.GetAdminMenuItems)
				authorized.GET("/menu-items/:id", adminHandler.GetAdminMenuItem)
				authorized.POST("/menu-items", adminHandler.CreateMenuItem)
				authorized.PUT("/menu-items/:id", adminHandler.UpdateMenuItem)
				authorized.DELETE("/menu-items/:id", adminHandler.DeleteMenuItem)
				authorized.POST("/menu-items/:id/availability", adminHandler.SetMenuItemAvailability)

				// 餐桌管理
				authorized.GET("/tables", adminHandler.GetAdminTables)
				authorized.POST("/tables", adminHandler.CreateTable)
				authorized.PUT("/tables/:id", adminHandler.UpdateTable)
				authorized.POST("/tables/:id/status", adminHandler.SetTableStatus)
				authorized.DELETE("/tables/:id", adminHandler.DeleteTable)

				// 预订管理
				authorized.GET("/reservations", adminHandler.AdminListReservations)
				authorized.GET("/reservations/:id", adminHandler.AdminGetReservation)
				authorized.POST("/reservations", adminHandler.AdminCreateReservation)
				authorized.POST("/reservations/:id/table", adminHandler.AdminAssignReservationTable)
				authorized.POST("/reservations/:id/seat", adminHandler.AdminSeatReservation)
				authorized.POST("/reservations/:id/complete", adminHandler.AdminCompleteReservation)
				authorized.POST("/reservations/:id/cancel", adminHandler.AdminCancelReservation)
				authorized.POST("/reservations/:id/no-show", adminHandler.AdminMarkReservationNoShow)

				// 顾客管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)

				// 员工管理
				authorized.GET("/staff", adminHandler.GetStaffList)
				authorized.GET("/staff/:id", adminHandler.GetStaff)
				authorized.POST("/staff", adminHandler.CreateStaff)
				authorized.PUT("/staff/:id/role", adminHandler.UpdateStaffRole)
				authorized.PUT("/staff/:id/password", adminHandler.ResetStaffPassword)
				authorized.DELETE("/staff/:id", adminHandler.DeleteStaff)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})

				// 设置管理
				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)
				authorized.GET("/settings/smtp", adminHandler.GetSMTPSettings)
				authorized.PUT("/settings/smtp", adminHandler.UpdateSMTPSettings)
				authorized.POST("/settings/smtp/test", adminHandler.TestSMTPSettings)
				authorized.GET("/settings/captcha", adminHandler.GetCaptchaSettings)
				authorized.PUT("/settings/captcha", adminHandler.UpdateCaptchaSettings)

				// 文件上传
				authorized.POST("/upload", adminHandler.UploadFile)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
