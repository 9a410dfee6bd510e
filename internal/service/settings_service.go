package service

import (
	"errors"
	"strings"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"
)

// 网关配置服务级错误
var (
	// ErrSettingsInvalidGateway active_gateway 取值非法
	ErrSettingsInvalidGateway = errors.New("invalid active gateway")
	// ErrSettingsInvalidEnvironment redsys_environment 取值非法
	ErrSettingsInvalidEnvironment = errors.New("invalid redsys environment")
	// ErrSettingsUpdateFailed 配置读写失败
	ErrSettingsUpdateFailed = errors.New("gateway settings update failed")
)

// SettingsService 网关配置服务
type SettingsService struct {
	settingsRepo repository.GatewaySettingsRepository
}

// NewSettingsService 创建网关配置服务
func NewSettingsService(settingsRepo repository.GatewaySettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// GetSettings 获取 hub 配置（不存在时按默认值创建）
func (s *SettingsService) GetSettings(hubID uint) (*models.GatewaySettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(hubID)
	if err != nil {
		logger.S().Errorw("gateway_settings_fetch_failed", "hub_id", hubID, "error", err)
		return nil, ErrSettingsUpdateFailed
	}
	return settings, nil
}

// UpdateSettingsInput 部分更新请求：nil 字段保持原值。
// 密钥类字段仅在提交非空值时覆盖，空串表示"保留现有密钥"。
type UpdateSettingsInput struct {
	ActiveGateway *string

	StripePublicKey     *string
	StripeSecretKey     *string
	StripeWebhookSecret *string

	RedsysMerchantCode *string
	RedsysSecretKey    *string
	RedsysTerminal     *string
	RedsysEnvironment  *string

	Currency          *string
	RequireDeposit    *bool
	DepositPercentage *models.Money

	SuccessURL *string
	CancelURL  *string

	NotificationEmail *string
}

// UpdateSettings 部分更新 hub 配置
func (s *SettingsService) UpdateSettings(hubID uint, input UpdateSettingsInput) (*models.GatewaySettings, error) {
	log := logger.S().With("hub_id", hubID)

	settings, err := s.settingsRepo.GetOrCreate(hubID)
	if err != nil {
		log.Errorw("gateway_settings_fetch_failed", "error", err)
		return nil, ErrSettingsUpdateFailed
	}

	if input.ActiveGateway != nil {
		gateway := strings.ToLower(strings.TrimSpace(*input.ActiveGateway))
		if !constants.IsGatewayValid(gateway) {
			return nil, ErrSettingsInvalidGateway
		}
		settings.ActiveGateway = gateway
	}

	if input.StripePublicKey != nil {
		settings.StripePublicKey = strings.TrimSpace(*input.StripePublicKey)
	}
	if input.StripeSecretKey != nil && strings.TrimSpace(*input.StripeSecretKey) != "" {
		settings.StripeSecretKey = strings.TrimSpace(*input.StripeSecretKey)
	}
	if input.StripeWebhookSecret != nil && strings.TrimSpace(*input.StripeWebhookSecret) != "" {
		settings.StripeWebhookSecret = strings.TrimSpace(*input.StripeWebhookSecret)
	}

	if input.RedsysMerchantCode != nil {
		settings.RedsysMerchantCode = strings.TrimSpace(*input.RedsysMerchantCode)
	}
	if input.RedsysSecretKey != nil && strings.TrimSpace(*input.RedsysSecretKey) != "" {
		settings.RedsysSecretKey = strings.TrimSpace(*input.RedsysSecretKey)
	}
	if input.RedsysTerminal != nil && strings.TrimSpace(*input.RedsysTerminal) != "" {
		settings.RedsysTerminal = strings.TrimSpace(*input.RedsysTerminal)
	}
	if input.RedsysEnvironment != nil {
		env := strings.ToLower(strings.TrimSpace(*input.RedsysEnvironment))
		if env != constants.RedsysEnvironmentTest && env != constants.RedsysEnvironmentProduction {
			return nil, ErrSettingsInvalidEnvironment
		}
		settings.RedsysEnvironment = env
	}

	if input.Currency != nil && strings.TrimSpace(*input.Currency) != "" {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.RequireDeposit != nil {
		settings.RequireDeposit = *input.RequireDeposit
	}
	if input.DepositPercentage != nil {
		settings.DepositPercentage = *input.DepositPercentage
	}

	if input.SuccessURL != nil {
		settings.SuccessURL = strings.TrimSpace(*input.SuccessURL)
	}
	if input.CancelURL != nil {
		settings.CancelURL = strings.TrimSpace(*input.CancelURL)
	}
	if input.NotificationEmail != nil {
		settings.NotificationEmail = strings.TrimSpace(*input.NotificationEmail)
	}

	if err := s.settingsRepo.Update(settings); err != nil {
		log.Errorw("gateway_settings_update_failed", "error", err)
		return nil, ErrSettingsUpdateFailed
	}
	log.Infow("gateway_settings_updated", "active_gateway", settings.ActiveGateway)
	return settings, nil
}
