package manual

import (
	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"
)

// Gateway 手工收款伪网关：没有外部通知，会话创建后等待人工确认。
type Gateway struct{}

// New 创建 manual 方言
func New() *Gateway {
	return &Gateway{}
}

// Name 网关标识
func (g *Gateway) Name() string {
	return constants.GatewayManual
}

// ParseNotification manual 网关不投递 webhook
func (g *Gateway) ParseNotification(body models.JSON) (*payment.Notification, error) {
	return nil, payment.ErrNoWebhook
}

// BuildSessionDescriptor 构建 manual 会话描述符
func (g *Gateway) BuildSessionDescriptor(settings *models.GatewaySettings) payment.SessionFields {
	return payment.SessionFields{
		"message": "Manual payment pending confirmation.",
	}
}
