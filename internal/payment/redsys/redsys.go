package redsys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"
)

// Gateway Redsys 方言。
// 通知体为扁平结构：Ds_Order 为关联键，Ds_Response 为数字响应码，
// 0-99 表示授权通过。
type Gateway struct{}

// New 创建 Redsys 方言
func New() *Gateway {
	return &Gateway{}
}

// Name 网关标识
func (g *Gateway) Name() string {
	return constants.GatewayRedsys
}

// ParseNotification 解析 Redsys 通知
func (g *Gateway) ParseNotification(body models.JSON) (*payment.Notification, error) {
	order := stringField(body, "Ds_Order")
	if order == "" {
		return nil, fmt.Errorf("%w: missing Ds_Order", payment.ErrPayloadInvalid)
	}
	responseCode := stringField(body, "Ds_Response")

	notification := &payment.Notification{
		TransactionID: order,
		EventType:     "redsys.notification",
	}

	code, err := strconv.Atoi(strings.TrimSpace(responseCode))
	switch {
	case err != nil:
		notification.Outcome = payment.OutcomeFailed
		notification.FailureReason = fmt.Sprintf("Invalid Redsys response: %s", responseCode)
	case code >= 0 && code <= 99:
		notification.Outcome = payment.OutcomeCompleted
		notification.GatewayReference = stringField(body, "Ds_AuthorisationCode")
	default:
		notification.Outcome = payment.OutcomeFailed
		notification.FailureReason = fmt.Sprintf("Redsys error code: %s", responseCode)
	}
	return notification, nil
}

// BuildSessionDescriptor 构建 Redsys 会话描述符
func (g *Gateway) BuildSessionDescriptor(settings *models.GatewaySettings) payment.SessionFields {
	return payment.SessionFields{
		"redsys_environment": settings.RedsysEnvironment,
		"message":            "Redsys session created. Redirect to Redsys payment form.",
	}
}

func stringField(body models.JSON, key string) string {
	switch v := body[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// 整数响应码可能以数字形式投递
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
