package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment"
	"github.com/payhub-next/internal/queue"

	"gorm.io/gorm"
)

// WebhookResult webhook 对账结果
type WebhookResult struct {
	Transaction *models.Transaction
	Gateway     string
	EventType   string
	Outcome     payment.Outcome
	Changed     bool
}

// HandleWebhook 网关回调对账：解析通知、行锁内落账、幂等跳过重复投递。
// 交易查找不限 hub 也不排除软删（网关重试可能晚于链接删除）。
func (s *PaymentService) HandleWebhook(body []byte) (*WebhookResult, error) {
	var raw models.JSON
	if err := json.Unmarshal(body, &raw); err != nil {
		paymentLogger().Warnw("payment_webhook_bad_json", "error", err)
		return nil, fmt.Errorf("%w: invalid JSON", ErrWebhookPayloadInvalid)
	}

	gatewayName := raw.GetString("gateway")
	log := paymentLogger("gateway", gatewayName)
	gateway, ok := s.gateways[gatewayName]
	if !ok {
		log.Warnw("payment_webhook_unknown_gateway")
		return nil, ErrGatewayUnknown
	}

	notification, err := gateway.ParseNotification(raw)
	if err != nil {
		if errors.Is(err, payment.ErrNoWebhook) {
			log.Warnw("payment_webhook_not_supported")
			return nil, ErrGatewayUnknown
		}
		log.Warnw("payment_webhook_parse_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWebhookPayloadInvalid, err)
	}
	log = log.With(
		"event_type", notification.EventType,
		"transaction_id", notification.TransactionID,
	)
	log.Infow("payment_webhook_received", "outcome", notification.Outcome)

	if notification.Outcome == payment.OutcomeIgnored {
		return &WebhookResult{
			Gateway:   gatewayName,
			EventType: notification.EventType,
			Outcome:   payment.OutcomeIgnored,
		}, nil
	}

	result := &WebhookResult{
		Gateway:   gatewayName,
		EventType: notification.EventType,
		Outcome:   notification.Outcome,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		txn, err := s.txnRepo.GetByTransactionIDAnyForUpdate(tx, notification.TransactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return ErrTransactionNotFound
		}
		result.Transaction = txn

		now := time.Now()
		switch notification.Outcome {
		case payment.OutcomeCompleted:
			if notification.GatewayReference != "" {
				txn.GatewayReference = notification.GatewayReference
			}
			if notification.PaymentMethodType != "" {
				txn.PaymentMethodType = notification.PaymentMethodType
			}
			if !txn.MarkCompleted(now) {
				// 重复投递或已终态，保持原状
				log.Infow("payment_webhook_completed_noop", "status", txn.Status)
				return nil
			}
			if err := s.txnRepo.WithTx(tx).Update(txn); err != nil {
				return err
			}
			if err := s.recordLinkUsage(tx, txn, now); err != nil {
				return err
			}
			result.Changed = true
		case payment.OutcomeFailed:
			if !txn.MarkFailed(notification.FailureReason) {
				log.Infow("payment_webhook_failed_noop", "status", txn.Status)
				return nil
			}
			if err := s.txnRepo.WithTx(tx).Update(txn); err != nil {
				return err
			}
			result.Changed = true
		case payment.OutcomeRefund:
			amount := notification.RefundAmount
			if err := txn.ProcessRefund(&amount, now); err != nil {
				return err
			}
			if err := s.txnRepo.WithTx(tx).Update(txn); err != nil {
				return err
			}
			result.Changed = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			log.Warnw("payment_webhook_txn_not_found")
			return nil, ErrTransactionNotFound
		}
		log.Errorw("payment_webhook_apply_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionUpdateFailed, err)
	}

	if result.Changed {
		log.Infow("payment_webhook_applied",
			"status", result.Transaction.Status,
			"outcome", result.Outcome,
		)
		if result.Outcome == payment.OutcomeCompleted {
			s.enqueueNotificationAsync(result.Transaction)
		}
	}
	return result, nil
}

// recordLinkUsage 支付完成后累加来源链接用量；链接不存在时静默跳过
func (s *PaymentService) recordLinkUsage(tx *gorm.DB, txn *models.Transaction, now time.Time) error {
	slug := txn.PaymentLinkSlug()
	if slug == "" {
		return nil
	}
	link, err := s.linkRepo.GetBySlugForUpdate(tx, slug)
	if err != nil {
		return err
	}
	if link == nil {
		paymentLogger("payment_link_slug", slug).Debugw("payment_webhook_link_missing")
		return nil
	}
	link.CurrentUses++
	link.UpdatedAt = now
	return s.linkRepo.WithTx(tx).Update(link)
}

func (s *PaymentService) enqueueNotificationAsync(txn *models.Transaction) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	go func() {
		err := s.queueClient.EnqueuePaymentNotificationEmail(queue.PaymentNotificationEmailPayload{
			HubID:         txn.HubID,
			TransactionID: txn.TransactionID,
			Status:        constants.TransactionStatusCompleted,
		})
		if err != nil {
			paymentLogger(
				"transaction_id", txn.TransactionID,
			).Warnw("payment_notification_enqueue_failed", "error", err)
		}
	}()
}
