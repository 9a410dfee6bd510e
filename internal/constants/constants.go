package constants

// 支付网关类型
const (
	GatewayNone   = "none"
	GatewayStripe = "stripe"
	GatewayRedsys = "redsys"
	GatewayManual = "manual"
)

// 交易状态
const (
	TransactionStatusPending           = "pending"
	TransactionStatusProcessing        = "processing"
	TransactionStatusCompleted         = "completed"
	TransactionStatusFailed            = "failed"
	TransactionStatusRefunded          = "refunded"
	TransactionStatusPartiallyRefunded = "partially_refunded"
)

// Redsys 环境
const (
	RedsysEnvironmentTest       = "test"
	RedsysEnvironmentProduction = "production"
)

// 交易 metadata 键
const (
	MetadataKeyPaymentLinkSlug = "payment_link_slug"
)

// Stripe webhook 事件类型
const (
	StripeEventCheckoutCompleted = "checkout.session.completed"
	StripeEventCheckoutExpired   = "checkout.session.expired"
	StripeEventChargeRefunded    = "charge.refunded"
)

// 队列相关
const (
	QueueDefault = "default"

	TaskPaymentNotificationEmail = "payment:notification_email"
)

// IsGatewayValid 判断网关取值是否合法
func IsGatewayValid(gateway string) bool {
	switch gateway {
	case GatewayNone, GatewayStripe, GatewayRedsys, GatewayManual:
		return true
	default:
		return false
	}
}

// IsTerminalStatus 判断交易状态是否为终态
func IsTerminalStatus(status string) bool {
	return status == TransactionStatusFailed || status == TransactionStatusRefunded
}
