package stripe

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"

	"github.com/shopspring/decimal"
)

// Gateway Stripe 方言。
// 通知体为 Stripe 事件结构：真实事件嵌套在 type 与 data.object 下，
// 关联键取 data.object.metadata.transaction_id。
type Gateway struct{}

// New 创建 Stripe 方言
func New() *Gateway {
	return &Gateway{}
}

// Name 网关标识
func (g *Gateway) Name() string {
	return constants.GatewayStripe
}

// ParseNotification 解析 Stripe webhook 事件
func (g *Gateway) ParseNotification(body models.JSON) (*payment.Notification, error) {
	eventType, _ := body["type"].(string)
	object := nestedObject(body)

	transactionID := ""
	if metadata, ok := object["metadata"].(map[string]interface{}); ok {
		transactionID, _ = metadata["transaction_id"].(string)
	}
	if transactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction_id", payment.ErrPayloadInvalid)
	}

	notification := &payment.Notification{
		TransactionID: transactionID,
		EventType:     eventType,
	}

	switch eventType {
	case constants.StripeEventCheckoutCompleted:
		notification.Outcome = payment.OutcomeCompleted
		notification.GatewayReference, _ = object["payment_intent"].(string)
		notification.PaymentMethodType = firstPaymentMethodType(object)
	case constants.StripeEventCheckoutExpired:
		notification.Outcome = payment.OutcomeFailed
		notification.FailureReason = "Session expired"
	case constants.StripeEventChargeRefunded:
		// amount_refunded 为最小货币单位整数（分）
		cents, ok := minorUnits(object["amount_refunded"])
		if ok && cents > 0 {
			notification.Outcome = payment.OutcomeRefund
			notification.RefundAmount = decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
		} else {
			notification.Outcome = payment.OutcomeIgnored
		}
	default:
		// 未处理的事件类型直接确认，保持前向兼容
		notification.Outcome = payment.OutcomeIgnored
	}
	return notification, nil
}

// BuildSessionDescriptor 构建 Stripe 会话描述符
func (g *Gateway) BuildSessionDescriptor(settings *models.GatewaySettings) payment.SessionFields {
	return payment.SessionFields{
		"stripe_public_key": settings.StripePublicKey,
		"message":           "Stripe session created. Integrate Stripe.js for checkout.",
	}
}

func nestedObject(body models.JSON) map[string]interface{} {
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	object, ok := data["object"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return object
}

func firstPaymentMethodType(object map[string]interface{}) string {
	types, ok := object["payment_method_types"].([]interface{})
	if !ok || len(types) == 0 {
		return "card"
	}
	if first, ok := types[0].(string); ok && first != "" {
		return first
	}
	return "card"
}

func minorUnits(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
