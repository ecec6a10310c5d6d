package provider

import (
	"github.com/tavolo-next/internal/authz"
	"github.com/tavolo-next/internal/cache"
	"github.com/tavolo-next/internal/config"
	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/queue"
	"github.com/tavolo-next/internal/repository"
	"github.com/tavolo-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.OrderPaymentRepository
	CategoryRepo    repository.CategoryRepository
	MenuItemRepo    repository.MenuItemRepository
	BasketRepo      repository.BasketRepository
	AddressRepo     repository.AddressRepository
	DiningTableRepo repository.DiningTableRepository
	ReservationRepo repository.ReservationRepository
	SettingRepo     repository.SettingRepository
	DashboardRepo   repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	StaffService        *service.StaffService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	UploadService       *service.UploadService
	SettingService      *service.SettingService
	CategoryService     *service.CategoryService
	MenuItemService     *service.MenuItemService
	BasketService       *service.BasketService
	AddressService      *service.AddressService
	DiningTableService  *service.DiningTableService
	ReservationService  *service.ReservationService
	NotificationService *service.NotificationService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	DashboardService    *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewOrderPaymentRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.MenuItemRepo = repository.NewMenuItemRepository(db)
	c.BasketRepo = repository.NewBasketRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.DiningTableRepo = repository.NewDiningTableRepository(db)
	c.ReservationRepo = repository.NewReservationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	smtpSetting, err := c.SettingService.GetSMTPSetting(c.Config.Email)
	if err != nil {
		logger.Warnw("provider_load_smtp_setting_failed", "error", err)
	} else {
		c.Config.Email = service.SMTPSettingToConfig(smtpSetting)
	}

	captchaSetting, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha)
	if err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
	} else {
		c.Config.Captcha = service.CaptchaSettingToConfig(captchaSetting)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.StaffService = service.NewStaffService(c.AdminRepo, c.AuthService, c.AuthzService)
	c.UploadService = service.NewUploadService(c.Config)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.MenuItemService = service.NewMenuItemService(c.MenuItemRepo, c.CategoryRepo)
	c.NotificationService = service.NewNotificationService(c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.PaymentRepo, c.MenuItemRepo, c.SettingService, c.NotificationService)
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.PaymentRepo, c.NotificationService)
	c.BasketService = service.NewBasketService(c.BasketRepo, c.MenuItemRepo, c.OrderService)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.DiningTableService = service.NewDiningTableService(c.DiningTableRepo)
	c.ReservationService = service.NewReservationService(c.ReservationRepo, c.DiningTableRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.SettingService)
}
