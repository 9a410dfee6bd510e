package queue

import (
	"encoding/json"

	"github.com/payhub-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentNotificationEmail 收款到账通知邮件任务
	TaskPaymentNotificationEmail = constants.TaskPaymentNotificationEmail
)

// PaymentNotificationEmailPayload 收款通知邮件任务载荷
type PaymentNotificationEmailPayload struct {
	HubID         uint   `json:"hub_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// NewPaymentNotificationEmailTask 创建收款通知邮件任务
func NewPaymentNotificationEmailTask(payload PaymentNotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentNotificationEmail, body), nil
}
