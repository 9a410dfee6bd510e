package provider

import (
	"github.com/payhub-next/internal/cache"
	"github.com/payhub-next/internal/config"
	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"
	"github.com/payhub-next/internal/payment/manual"
	"github.com/payhub-next/internal/payment/redsys"
	"github.com/payhub-next/internal/payment/stripe"
	"github.com/payhub-next/internal/queue"
	"github.com/payhub-next/internal/repository"
	"github.com/payhub-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Gateways
	Gateways []payment.Gateway

	// Repositories
	TransactionRepo     repository.TransactionRepository
	PaymentLinkRepo     repository.PaymentLinkRepository
	GatewaySettingsRepo repository.GatewaySettingsRepository
	DashboardRepo       repository.DashboardRepository

	// Services
	PaymentService   *service.PaymentService
	LinkService      *service.LinkService
	SettingsService  *service.SettingsService
	DashboardService *service.DashboardService
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
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.PaymentLinkRepo = repository.NewPaymentLinkRepository(db)
	c.GatewaySettingsRepo = repository.NewGatewaySettingsRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.Gateways = []payment.Gateway{
		stripe.New(),
		redsys.New(),
		manual.New(),
	}
	c.PaymentService = service.NewPaymentService(
		c.TransactionRepo,
		c.PaymentLinkRepo,
		c.GatewaySettingsRepo,
		c.QueueClient,
		c.Gateways...,
	)
	c.LinkService = service.NewLinkService(c.PaymentLinkRepo, c.GatewaySettingsRepo)
	c.SettingsService = service.NewSettingsService(c.GatewaySettingsRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.PaymentLinkRepo)
}
