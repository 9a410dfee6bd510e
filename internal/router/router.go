package router

import (
	"fmt"
	"strings"

	"github.com/payhub-next/internal/cache"
	"github.com/payhub-next/internal/config"
	adminhandlers "github.com/payhub-next/internal/http/handlers/admin"
	publichandlers "github.com/payhub-next/internal/http/handlers/public"
	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/员工端分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ph"
	}
	redisClient := cache.Client()
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Webhook.RateLimitWindowSeconds,
		MaxRequests:   cfg.Webhook.RateLimitMaxRequests,
		Message:       "too many webhook requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口：网关回调与 checkout，无认证
		public := apiV1.Group("/public")
		{
			public.POST("/webhooks/payments",
				RateLimitMiddleware(redisClient, webhookRule, KeyByIP),
				publicHandler.PaymentWebhook,
			)
			public.GET("/checkout/:slug", publicHandler.GetCheckout)
		}

		// 员工端接口（JWT 鉴权，hub_id 声明限定租户范围）
		staff := apiV1.Group("")
		staff.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey))
		{
			staff.GET("/dashboard", adminHandler.GetDashboard)

			staff.POST("/payments/sessions", adminHandler.CreatePaymentSession)
			staff.GET("/payments", adminHandler.ListTransactions)
			staff.GET("/payments/:id", adminHandler.GetTransaction)
			staff.POST("/payments/:id/refund", adminHandler.RefundTransaction)

			staff.GET("/payment-links", adminHandler.ListPaymentLinks)
			staff.POST("/payment-links", adminHandler.CreatePaymentLink)
			staff.GET("/payment-links/:id", adminHandler.GetPaymentLink)
			staff.PUT("/payment-links/:id", adminHandler.UpdatePaymentLink)
			staff.POST("/payment-links/:id/deactivate", adminHandler.DeactivatePaymentLink)
			staff.DELETE("/payment-links/:id", adminHandler.DeletePaymentLink)

			staff.GET("/settings/gateway", adminHandler.GetGatewaySettings)
			staff.PUT("/settings/gateway", adminHandler.UpdateGatewaySettings)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
