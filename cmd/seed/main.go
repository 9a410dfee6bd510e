package main

import (
	"time"

	"github.com/payhub-next/internal/config"
	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/service"

	"github.com/shopspring/decimal"
)

const demoHubID uint = 1

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示 hub 网关配置
	var settings models.GatewaySettings
	if err := models.DB.Where("hub_id = ?", demoHubID).First(&settings).Error; err != nil {
		settings = models.GatewaySettings{
			HubID:             demoHubID,
			ActiveGateway:     constants.GatewayManual,
			RedsysTerminal:    "001",
			RedsysEnvironment: constants.RedsysEnvironmentTest,
			Currency:          "EUR",
			NotificationEmail: "payments@demo-hub.example",
		}
		if err := models.DB.Create(&settings).Error; err != nil {
			stdLog.Fatalf("Failed to create demo gateway settings: %v", err)
		}
		stdLog.Printf("Created gateway settings for hub %d (active_gateway=%s)", demoHubID, settings.ActiveGateway)
	} else {
		stdLog.Printf("Gateway settings already exist for hub %d", demoHubID)
	}

	// 示例收款链接
	links := []models.PaymentLink{
		{
			HubModel:    models.HubModel{HubID: demoHubID},
			Title:       "Consultation deposit",
			Description: "50% deposit for a consultation session",
			Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
			Currency:    "EUR",
			Slug:        "demo-deposit",
			IsActive:    true,
			MaxUses:     1,
		},
		{
			HubModel:    models.HubModel{HubID: demoHubID},
			Title:       "Gift voucher",
			Description: "Reusable voucher link",
			Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			Currency:    "EUR",
			Slug:        "demo-voucher",
			IsActive:    true,
			MaxUses:     0,
		},
	}
	for _, link := range links {
		var existing models.PaymentLink
		if err := models.DB.Where("slug = ?", link.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&link).Error; err != nil {
				stdLog.Printf("Failed to create payment link %s: %v", link.Slug, err)
			} else {
				stdLog.Printf("Created payment link: %s", link.Slug)
			}
		} else {
			stdLog.Printf("Payment link already exists: %s", link.Slug)
		}
	}

	// 演示员工 token，便于本地调试员工端接口
	token, err := service.IssueStaffToken(cfg.JWT.SecretKey, demoHubID, "staff@demo-hub.example", 24*time.Hour)
	if err != nil {
		stdLog.Printf("Failed to issue demo staff token: %v", err)
	} else {
		stdLog.Printf("Demo staff token (hub %d): %s", demoHubID, token)
	}

	stdLog.Printf("Seed finished")
}
