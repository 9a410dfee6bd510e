package service

import (
	"errors"
	"strings"
	"time"

	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"

	"github.com/shopspring/decimal"
)

// 支付链接服务级错误
var (
	// ErrLinkTitleRequired 链接标题为空
	ErrLinkTitleRequired = errors.New("title is required")
	// ErrLinkNotFound 链接不存在
	ErrLinkNotFound = errors.New("payment link not found")
	// ErrLinkSlugTaken slug 已被占用
	ErrLinkSlugTaken = errors.New("slug already in use")
	// ErrLinkUpdateFailed 链接读写失败
	ErrLinkUpdateFailed = errors.New("payment link update failed")
)

// LinkService 收款链接服务
type LinkService struct {
	linkRepo     repository.PaymentLinkRepository
	settingsRepo repository.GatewaySettingsRepository
}

// NewLinkService 创建收款链接服务
func NewLinkService(
	linkRepo repository.PaymentLinkRepository,
	settingsRepo repository.GatewaySettingsRepository,
) *LinkService {
	return &LinkService{
		linkRepo:     linkRepo,
		settingsRepo: settingsRepo,
	}
}

// CreateLinkInput 创建链接请求
type CreateLinkInput struct {
	HubID         uint
	Title         string
	Description   string
	Amount        models.Money
	Currency      string
	Slug          string
	ExpiresAt     *time.Time
	MaxUses       *int
	CustomerEmail string
	SourceType    string
	SourceID      string
}

// CreateLink 创建收款链接；slug 缺省时自动生成，冲突时重试
func (s *LinkService) CreateLink(input CreateLinkInput) (*models.PaymentLink, error) {
	log := logger.S().With("hub_id", input.HubID, "title", input.Title)

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrLinkTitleRequired
	}
	if input.Amount.Decimal.Cmp(decimal.Zero) <= 0 {
		return nil, ErrAmountInvalid
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		settings, err := s.settingsRepo.GetOrCreate(input.HubID)
		if err != nil {
			log.Errorw("payment_link_settings_fetch_failed", "error", err)
			return nil, ErrLinkUpdateFailed
		}
		currency = settings.Currency
	}

	maxUses := 1
	if input.MaxUses != nil && *input.MaxUses >= 0 {
		maxUses = *input.MaxUses
	}

	link := &models.PaymentLink{
		HubModel:      models.HubModel{HubID: input.HubID},
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Amount:        input.Amount,
		Currency:      currency,
		IsActive:      true,
		ExpiresAt:     input.ExpiresAt,
		MaxUses:       maxUses,
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		SourceType:    input.SourceType,
		SourceID:      input.SourceID,
	}

	if slug := strings.TrimSpace(input.Slug); slug != "" {
		existing, err := s.linkRepo.GetBySlug(slug)
		if err != nil {
			log.Errorw("payment_link_slug_check_failed", "error", err)
			return nil, ErrLinkUpdateFailed
		}
		if existing != nil {
			return nil, ErrLinkSlugTaken
		}
		link.Slug = slug
		if err := s.linkRepo.Create(link); err != nil {
			log.Errorw("payment_link_create_failed", "error", err)
			return nil, ErrLinkUpdateFailed
		}
	} else {
		// 自动生成 slug：唯一约束冲突时换新 slug 重试
		var createErr error
		for attempt := 0; attempt < 3; attempt++ {
			link.Slug = models.NewLinkSlug()
			if createErr = s.linkRepo.Create(link); createErr == nil {
				break
			}
		}
		if createErr != nil {
			log.Errorw("payment_link_create_failed", "error", createErr)
			return nil, ErrLinkUpdateFailed
		}
	}

	log.Infow("payment_link_created", "slug", link.Slug, "amount", link.Amount.String())
	return link, nil
}

// UpdateLinkInput 更新链接请求（nil 字段保持原值）
type UpdateLinkInput struct {
	Title         *string
	Description   *string
	Amount        *models.Money
	Currency      *string
	IsActive      *bool
	ExpiresAt     *time.Time
	ClearExpires  bool
	MaxUses       *int
	CustomerEmail *string
}

// UpdateLink 部分更新收款链接
func (s *LinkService) UpdateLink(hubID, id uint, input UpdateLinkInput) (*models.PaymentLink, error) {
	link, err := s.linkRepo.GetByID(hubID, id)
	if err != nil {
		return nil, ErrLinkUpdateFailed
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrLinkTitleRequired
		}
		link.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		link.Description = *input.Description
	}
	if input.Amount != nil {
		if input.Amount.Decimal.Cmp(decimal.Zero) <= 0 {
			return nil, ErrAmountInvalid
		}
		link.Amount = *input.Amount
	}
	if input.Currency != nil && strings.TrimSpace(*input.Currency) != "" {
		link.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if input.ClearExpires {
		link.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		link.ExpiresAt = input.ExpiresAt
	}
	if input.MaxUses != nil && *input.MaxUses >= 0 {
		link.MaxUses = *input.MaxUses
	}
	if input.CustomerEmail != nil {
		link.CustomerEmail = strings.TrimSpace(*input.CustomerEmail)
	}

	if err := s.linkRepo.Update(link); err != nil {
		logger.S().Errorw("payment_link_update_failed", "hub_id", hubID, "link_id", id, "error", err)
		return nil, ErrLinkUpdateFailed
	}
	return link, nil
}

// DeactivateLink 停用链接（可恢复，区别于删除）
func (s *LinkService) DeactivateLink(hubID, id uint) (*models.PaymentLink, error) {
	link, err := s.linkRepo.GetByID(hubID, id)
	if err != nil {
		return nil, ErrLinkUpdateFailed
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.IsActive {
		link.IsActive = false
		if err := s.linkRepo.Update(link); err != nil {
			return nil, ErrLinkUpdateFailed
		}
	}
	logger.S().Infow("payment_link_deactivated", "hub_id", hubID, "slug", link.Slug)
	return link, nil
}

// DeleteLink 软删除链接；历史交易保留
func (s *LinkService) DeleteLink(hubID, id uint) error {
	link, err := s.linkRepo.GetByID(hubID, id)
	if err != nil {
		return ErrLinkUpdateFailed
	}
	if link == nil {
		return ErrLinkNotFound
	}
	link.SoftDelete(time.Now())
	link.IsActive = false
	if err := s.linkRepo.Update(link); err != nil {
		return ErrLinkUpdateFailed
	}
	logger.S().Infow("payment_link_deleted", "hub_id", hubID, "slug", link.Slug)
	return nil
}

// GetLink 员工端链接详情
func (s *LinkService) GetLink(hubID, id uint) (*models.PaymentLink, error) {
	link, err := s.linkRepo.GetByID(hubID, id)
	if err != nil {
		return nil, ErrLinkUpdateFailed
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// ListLinks 员工端链接列表
func (s *LinkService) ListLinks(filter repository.PaymentLinkListFilter) ([]models.PaymentLink, int64, error) {
	return s.linkRepo.List(filter)
}

// CheckoutView 公共 checkout 页数据
type CheckoutView struct {
	Link      *models.PaymentLink
	Available bool
	Gateway   string
	Currency  string
	StripeKey string
}

// GetCheckout 公共 checkout：按 slug 取链接与其 hub 的网关公开配置。
// 不可用的链接照常返回，由调用方按 Available 呈现。
func (s *LinkService) GetCheckout(slug string, now time.Time) (*CheckoutView, error) {
	link, err := s.linkRepo.GetBySlug(slug)
	if err != nil {
		return nil, ErrLinkUpdateFailed
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	settings, err := s.settingsRepo.GetOrCreate(link.HubID)
	if err != nil {
		return nil, ErrLinkUpdateFailed
	}
	return &CheckoutView{
		Link:      link,
		Available: link.IsAvailable(now),
		Gateway:   settings.ActiveGateway,
		Currency:  settings.Currency,
		StripeKey: settings.StripePublicKey,
	}, nil
}
