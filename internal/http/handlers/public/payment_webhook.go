package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/payhub-next/internal/payment"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhook 统一网关回调入口。
// 响应按网关重试语义使用原始 HTTP 状态码：2xx 表示已收悉（含幂等重放），
// 非 2xx 会触发网关重试，因此无法归因到具体交易的错误才返回 4xx/5xx。
func (h *Handler) PaymentWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	log.Infow("payment_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
	)

	result, err := h.PaymentService.HandleWebhook(body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookPayloadInvalid),
			errors.Is(err, service.ErrGatewayUnknown):
			log.Warnw("payment_webhook_rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		default:
			log.Errorw("payment_webhook_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		}
		return
	}

	resp := gin.H{"received": true}
	if result != nil {
		if result.EventType != "" {
			resp["event_type"] = result.EventType
		}
		if result.Outcome != payment.OutcomeIgnored && result.Transaction != nil {
			resp["transaction_id"] = result.Transaction.TransactionID
			resp["status"] = result.Transaction.Status
		}
	}
	c.JSON(http.StatusOK, resp)
}
