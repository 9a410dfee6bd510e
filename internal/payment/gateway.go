package payment

import (
	"errors"

	"github.com/payhub-next/internal/models"

	"github.com/shopspring/decimal"
)

// 网关方言级错误
var (
	// ErrPayloadInvalid 通知体缺少关联键或结构不符
	ErrPayloadInvalid = errors.New("notification payload invalid")
	// ErrNoWebhook 该网关不投递 webhook（manual）
	ErrNoWebhook = errors.New("gateway does not deliver webhooks")
)

// Outcome 网关通知判定结果
type Outcome string

const (
	// OutcomeCompleted 支付成功
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed 支付失败
	OutcomeFailed Outcome = "failed"
	// OutcomeRefund 退款
	OutcomeRefund Outcome = "refund"
	// OutcomeIgnored 已识别但无需处理（前向兼容未知事件类型）
	OutcomeIgnored Outcome = "ignored"
)

// Notification 解析后的网关通知：关联键 + 判定结果
type Notification struct {
	TransactionID     string // 关联键（内部交易号）
	EventType         string
	Outcome           Outcome
	GatewayReference  string
	PaymentMethodType string
	FailureReason     string
	RefundAmount      decimal.Decimal
}

// SessionFields 会话描述符中的网关特定字段
type SessionFields map[string]interface{}

// Gateway 网关方言：一端解析异步通知，一端构建支付会话描述符。
// webhook 协议引擎对该接口泛化，每种网关一个实现。
type Gateway interface {
	Name() string
	ParseNotification(body models.JSON) (*Notification, error)
	BuildSessionDescriptor(settings *models.GatewaySettings) SessionFields
}
