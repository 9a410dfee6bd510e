package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/provider"
	"github.com/payhub-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentNotificationEmail, c.handlePaymentNotificationEmail)
}

func (c *Consumer) handlePaymentNotificationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentNotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_notification_unmarshal_failed", "error", err)
		return err
	}
	if payload.HubID == 0 || strings.TrimSpace(payload.TransactionID) == "" {
		logger.Debugw("worker_payment_notification_skip_invalid_payload",
			"hub_id", payload.HubID,
			"transaction_id", payload.TransactionID,
		)
		return nil
	}

	txn, err := c.TransactionRepo.GetByTransactionIDAny(payload.TransactionID)
	if err != nil {
		logger.Warnw("worker_payment_notification_fetch_txn_failed",
			"transaction_id", payload.TransactionID,
			"error", err,
		)
		return err
	}
	if txn == nil {
		logger.Debugw("worker_payment_notification_skip_txn_not_found",
			"transaction_id", payload.TransactionID,
		)
		return nil
	}

	settings, err := c.GatewaySettingsRepo.GetOrCreate(payload.HubID)
	if err != nil {
		logger.Warnw("worker_payment_notification_fetch_settings_failed",
			"hub_id", payload.HubID,
			"error", err,
		)
		return err
	}
	receiver := strings.TrimSpace(settings.NotificationEmail)
	if receiver == "" {
		logger.Debugw("worker_payment_notification_skip_no_receiver", "hub_id", payload.HubID)
		return nil
	}

	// 邮件投递由周边平台的邮件网关承接，这里仅产出投递记录
	logger.Infow("worker_payment_notification_dispatched",
		"hub_id", payload.HubID,
		"transaction_id", txn.TransactionID,
		"status", payload.Status,
		"amount", txn.Amount.String(),
		"currency", txn.Currency,
		"receiver", receiver,
	)
	return nil
}
