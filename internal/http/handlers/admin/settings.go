package admin

import (
	"errors"

	"github.com/payhub-next/internal/http/response"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetGatewaySettings 获取当前 hub 的网关配置。
// 密钥字段不回显（模型序列化时剔除），仅返回是否已配置的标记。
func (h *Handler) GetGatewaySettings(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	settings, err := h.SettingsService.GetSettings(hubID)
	if err != nil {
		respondError(c, response.CodeInternal, "gateway settings fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"settings":                  settings,
		"stripe_secret_key_set":     settings.StripeSecretKey != "",
		"stripe_webhook_secret_set": settings.StripeWebhookSecret != "",
		"redsys_secret_key_set":     settings.RedsysSecretKey != "",
	})
}

// UpdateGatewaySettingsRequest 网关配置部分更新请求。
// 密钥类字段提交空串表示保留现有密钥。
type UpdateGatewaySettingsRequest struct {
	ActiveGateway *string `json:"active_gateway"`

	StripePublicKey     *string `json:"stripe_public_key"`
	StripeSecretKey     *string `json:"stripe_secret_key"`
	StripeWebhookSecret *string `json:"stripe_webhook_secret"`

	RedsysMerchantCode *string `json:"redsys_merchant_code"`
	RedsysSecretKey    *string `json:"redsys_secret_key"`
	RedsysTerminal     *string `json:"redsys_terminal"`
	RedsysEnvironment  *string `json:"redsys_environment"`

	Currency          *string       `json:"currency"`
	RequireDeposit    *bool         `json:"require_deposit"`
	DepositPercentage *models.Money `json:"deposit_percentage"`

	SuccessURL *string `json:"success_url"`
	CancelURL  *string `json:"cancel_url"`

	NotificationEmail *string `json:"notification_email"`
}

// UpdateGatewaySettings 部分更新网关配置
func (h *Handler) UpdateGatewaySettings(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	var req UpdateGatewaySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	settings, err := h.SettingsService.UpdateSettings(hubID, service.UpdateSettingsInput{
		ActiveGateway:       req.ActiveGateway,
		StripePublicKey:     req.StripePublicKey,
		StripeSecretKey:     req.StripeSecretKey,
		StripeWebhookSecret: req.StripeWebhookSecret,
		RedsysMerchantCode:  req.RedsysMerchantCode,
		RedsysSecretKey:     req.RedsysSecretKey,
		RedsysTerminal:      req.RedsysTerminal,
		RedsysEnvironment:   req.RedsysEnvironment,
		Currency:            req.Currency,
		RequireDeposit:      req.RequireDeposit,
		DepositPercentage:   req.DepositPercentage,
		SuccessURL:          req.SuccessURL,
		CancelURL:           req.CancelURL,
		NotificationEmail:   req.NotificationEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSettingsInvalidGateway),
			errors.Is(err, service.ErrSettingsInvalidEnvironment):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "gateway settings update failed", err)
		}
		return
	}
	response.Success(c, settings)
}
