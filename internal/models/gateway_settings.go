package models

import "time"

// GatewaySettings 每个 hub 的支付网关配置。
// 单例行：hub_id 唯一约束，由 repository 的 GetOrCreate 保障每 hub 一条。
type GatewaySettings struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	HubID     uint      `gorm:"uniqueIndex;not null" json:"hub_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ActiveGateway string `gorm:"size:20;not null;default:none" json:"active_gateway"`

	// Stripe
	StripePublicKey     string `gorm:"size:255" json:"stripe_public_key"`
	StripeSecretKey     string `gorm:"size:255" json:"-"`
	StripeWebhookSecret string `gorm:"size:255" json:"-"`

	// Redsys
	RedsysMerchantCode string `gorm:"size:20" json:"redsys_merchant_code"`
	RedsysSecretKey    string `gorm:"size:255" json:"-"`
	RedsysTerminal     string `gorm:"size:5;not null;default:001" json:"redsys_terminal"`
	RedsysEnvironment  string `gorm:"size:20;not null;default:test" json:"redsys_environment"`

	// 通用
	Currency          string `gorm:"size:3;not null;default:EUR" json:"currency"`
	RequireDeposit    bool   `gorm:"not null;default:false" json:"require_deposit"`
	DepositPercentage Money  `gorm:"type:decimal(5,2);not null;default:0" json:"deposit_percentage"`

	// 跳转地址
	SuccessURL string `gorm:"size:500" json:"success_url"`
	CancelURL  string `gorm:"size:500" json:"cancel_url"`

	// 通知
	NotificationEmail string `gorm:"size:255" json:"notification_email"`
}

// TableName 指定表名
func (GatewaySettings) TableName() string {
	return "payment_gateway_settings"
}
