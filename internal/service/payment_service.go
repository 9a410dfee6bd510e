package service

import (
	"errors"
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"
	"github.com/payhub-next/internal/queue"
	"github.com/payhub-next/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 支付服务级错误
var (
	// ErrAmountInvalid 金额非正数或格式非法
	ErrAmountInvalid = errors.New("amount must be greater than zero")
	// ErrNoGatewayConfigured hub 未配置可用网关
	ErrNoGatewayConfigured = errors.New("no payment gateway configured")
	// ErrGatewayUnknown webhook 携带未知网关标识
	ErrGatewayUnknown = errors.New("unknown gateway")
	// ErrWebhookPayloadInvalid webhook 通知体非法（坏 JSON / 缺关联键）
	ErrWebhookPayloadInvalid = errors.New("webhook payload invalid")
	// ErrTransactionNotFound 交易不存在
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrTransactionNotRefundable 交易状态不允许退款
	ErrTransactionNotRefundable = errors.New("only completed transactions can be refunded")
	// ErrTransactionUpdateFailed 交易读写失败
	ErrTransactionUpdateFailed = errors.New("transaction update failed")
)

// PaymentService 支付服务：会话签发、退款、webhook 对账
type PaymentService struct {
	txnRepo      repository.TransactionRepository
	linkRepo     repository.PaymentLinkRepository
	settingsRepo repository.GatewaySettingsRepository
	queueClient  *queue.Client
	gateways     map[string]payment.Gateway
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	txnRepo repository.TransactionRepository,
	linkRepo repository.PaymentLinkRepository,
	settingsRepo repository.GatewaySettingsRepository,
	queueClient *queue.Client,
	gateways ...payment.Gateway,
) *PaymentService {
	registry := make(map[string]payment.Gateway, len(gateways))
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		registry[gw.Name()] = gw
	}
	return &PaymentService{
		txnRepo:      txnRepo,
		linkRepo:     linkRepo,
		settingsRepo: settingsRepo,
		queueClient:  queueClient,
		gateways:     registry,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.S().With(kv...)
}

// CreateSessionInput 创建支付会话请求
type CreateSessionInput struct {
	HubID           uint
	Amount          models.Money
	Currency        string
	Description     string
	CustomerEmail   string
	CustomerName    string
	SourceType      string
	SourceID        string
	PaymentLinkSlug string
}

// CreateSessionResult 创建支付会话结果
type CreateSessionResult struct {
	Transaction *models.Transaction
	Gateway     string
	Fields      payment.SessionFields
}

// CreateSession 签发支付会话：创建 pending 交易并构建网关特定描述符。
// 交易创建独立提交；描述符构建阶段的失败不回滚交易。
func (s *PaymentService) CreateSession(input CreateSessionInput) (*CreateSessionResult, error) {
	log := paymentLogger(
		"hub_id", input.HubID,
		"amount", input.Amount.String(),
		"currency", input.Currency,
		"payment_link_slug", input.PaymentLinkSlug,
	)

	if input.Amount.Decimal.Cmp(decimal.Zero) <= 0 {
		log.Warnw("payment_session_amount_invalid")
		return nil, ErrAmountInvalid
	}

	settings, err := s.settingsRepo.GetOrCreate(input.HubID)
	if err != nil {
		log.Errorw("payment_session_settings_fetch_failed", "error", err)
		return nil, ErrTransactionUpdateFailed
	}
	if settings.ActiveGateway == constants.GatewayNone {
		log.Warnw("payment_session_no_gateway_configured")
		return nil, ErrNoGatewayConfigured
	}
	gateway, ok := s.gateways[settings.ActiveGateway]
	if !ok {
		log.Warnw("payment_session_gateway_unsupported", "active_gateway", settings.ActiveGateway)
		return nil, ErrNoGatewayConfigured
	}

	currency := input.Currency
	if currency == "" {
		currency = settings.Currency
	}

	now := time.Now()
	txn := &models.Transaction{
		HubModel:      models.HubModel{HubID: input.HubID},
		TransactionID: models.NewTransactionID(now),
		Gateway:       settings.ActiveGateway,
		Amount:        input.Amount,
		Currency:      currency,
		Status:        constants.TransactionStatusPending,
		CustomerEmail: input.CustomerEmail,
		CustomerName:  input.CustomerName,
		Description:   input.Description,
		SourceType:    input.SourceType,
		SourceID:      input.SourceID,
		Metadata: models.JSON{
			constants.MetadataKeyPaymentLinkSlug: input.PaymentLinkSlug,
		},
		RefundAmount: models.NewMoneyFromDecimal(decimal.Zero),
	}
	if err := s.txnRepo.Create(txn); err != nil {
		log.Errorw("payment_session_txn_create_failed", "error", err)
		return nil, ErrTransactionUpdateFailed
	}
	log = log.With("transaction_id", txn.TransactionID)

	if settings.ActiveGateway == constants.GatewayManual {
		txn.MarkProcessing()
		if err := s.txnRepo.Update(txn); err != nil {
			// 交易已创建且可检索，状态推进失败仅记录
			log.Errorw("payment_session_manual_status_update_failed", "error", err)
		}
	}

	log.Infow("payment_session_created",
		"gateway", settings.ActiveGateway,
		"status", txn.Status,
	)
	return &CreateSessionResult{
		Transaction: txn,
		Gateway:     settings.ActiveGateway,
		Fields:      gateway.BuildSessionDescriptor(settings),
	}, nil
}

// RefundInput 退款请求
type RefundInput struct {
	HubID         uint
	TransactionID uint
	Amount        *decimal.Decimal // nil 表示全额退款
}

// Refund 员工端退款：仅 completed / partially_refunded 状态可退，
// 校验与记账在行锁内完成，保证并发退款不会越过可退上限。
func (s *PaymentService) Refund(input RefundInput) (*models.Transaction, error) {
	log := paymentLogger(
		"hub_id", input.HubID,
		"txn_id", input.TransactionID,
	)
	if input.Amount != nil {
		log = log.With("amount", input.Amount.StringFixed(2))
	}

	existing, err := s.txnRepo.GetByID(input.HubID, input.TransactionID)
	if err != nil {
		log.Errorw("payment_refund_fetch_failed", "error", err)
		return nil, ErrTransactionUpdateFailed
	}
	if existing == nil {
		log.Warnw("payment_refund_txn_not_found")
		return nil, ErrTransactionNotFound
	}
	if !existing.IsRefundable() {
		log.Warnw("payment_refund_status_rejected", "status", existing.Status)
		return nil, ErrTransactionNotRefundable
	}

	var updated *models.Transaction
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.txnRepo.GetByIDForUpdate(tx, existing.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrTransactionNotFound
		}
		if !locked.IsRefundable() {
			return ErrTransactionNotRefundable
		}
		if err := locked.ProcessRefund(input.Amount, time.Now()); err != nil {
			return err
		}
		if err := s.txnRepo.WithTx(tx).Update(locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound),
			errors.Is(err, ErrTransactionNotRefundable),
			errors.Is(err, models.ErrRefundAmountInvalid),
			errors.Is(err, models.ErrRefundExceedsMax):
			log.Warnw("payment_refund_rejected", "error", err)
			return nil, err
		default:
			log.Errorw("payment_refund_apply_failed", "error", err)
			return nil, ErrTransactionUpdateFailed
		}
	}

	log.Infow("payment_refund_processed",
		"transaction_id", updated.TransactionID,
		"status", updated.Status,
		"refund_amount", updated.RefundAmount.String(),
	)
	return updated, nil
}

// GetTransaction 员工端交易详情
func (s *PaymentService) GetTransaction(hubID, id uint) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByID(hubID, id)
	if err != nil {
		return nil, ErrTransactionUpdateFailed
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions 员工端交易列表
func (s *PaymentService) ListTransactions(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.txnRepo.List(filter)
}
