package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/payhub-next/internal/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 交易实体级错误
var (
	// ErrRefundAmountInvalid 退款金额非正数
	ErrRefundAmountInvalid = errors.New("refund amount must be positive")
	// ErrRefundExceedsMax 退款金额超过可退上限
	ErrRefundExceedsMax = errors.New("refund amount exceeds maximum refundable")
)

// Transaction 支付交易记录
type Transaction struct {
	HubModel
	TransactionID     string     `gorm:"uniqueIndex;size:100;not null" json:"transaction_id"` // 内部交易号，创建时生成且不可变
	Gateway           string     `gorm:"index;size:20;not null" json:"gateway"`               // stripe/redsys/manual/none
	Amount            Money      `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency          string     `gorm:"size:3;not null;default:EUR" json:"currency"`
	Status            string     `gorm:"index;size:20;not null;default:pending" json:"status"`
	GatewayReference  string     `gorm:"index;size:255" json:"gateway_reference"`  // 网关侧流水号
	PaymentMethodType string     `gorm:"size:50" json:"payment_method_type"`       // card/bizum/transfer
	CustomerEmail     string     `gorm:"size:255" json:"customer_email"`
	CustomerName      string     `gorm:"size:255" json:"customer_name"`
	Description       string     `gorm:"type:text" json:"description"`
	SourceType        string     `gorm:"index;size:50" json:"source_type"` // appointment/sale/invoice/link
	SourceID          string     `gorm:"size:36" json:"source_id"`
	Metadata          JSON       `gorm:"type:json" json:"metadata"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	RefundAmount      Money      `gorm:"type:decimal(10,2);not null;default:0" json:"refund_amount"`
	RefundedAt        *time.Time `json:"refunded_at"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "payment_transactions"
}

// NewTransactionID 生成内部交易号（TXN-时间戳-8位大写十六进制）
func NewTransactionID(now time.Time) string {
	prefix := now.UTC().Format("20060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", prefix, suffix)
}

// IsTerminal 判断交易是否处于终态（failed 或全额 refunded）
func (t *Transaction) IsTerminal() bool {
	return constants.IsTerminalStatus(t.Status)
}

// MarkCompleted 置为已完成并记录完成时间。
// 已完成或终态交易重复调用不生效，返回 false（webhook 重投递保护）。
func (t *Transaction) MarkCompleted(now time.Time) bool {
	if t.IsTerminal() || t.Status == constants.TransactionStatusCompleted {
		return false
	}
	t.Status = constants.TransactionStatusCompleted
	t.CompletedAt = &now
	return true
}

// MarkFailed 置为失败并记录原因。终态交易不再变更，返回 false。
func (t *Transaction) MarkFailed(reason string) bool {
	if t.IsTerminal() {
		return false
	}
	t.Status = constants.TransactionStatusFailed
	t.ErrorMessage = reason
	return true
}

// MarkProcessing 置为处理中（manual 网关等待人工确认）
func (t *Transaction) MarkProcessing() bool {
	if t.IsTerminal() {
		return false
	}
	t.Status = constants.TransactionStatusProcessing
	return true
}

// MaxRefundable 返回当前剩余可退金额
func (t *Transaction) MaxRefundable() decimal.Decimal {
	return t.Amount.Decimal.Sub(t.RefundAmount.Decimal)
}

// ProcessRefund 执行退款记账。amount 为 nil 时退原始全额；
// 多次部分退款累计，累计额达到原始金额时状态变为 refunded，否则 partially_refunded。
func (t *Transaction) ProcessRefund(amount *decimal.Decimal, now time.Time) error {
	resolved := t.Amount.Decimal
	if amount != nil {
		resolved = amount.Round(2)
	}

	if resolved.Cmp(decimal.Zero) <= 0 {
		return ErrRefundAmountInvalid
	}
	if resolved.Cmp(t.MaxRefundable()) > 0 {
		return fmt.Errorf("%w: requested %s, max %s",
			ErrRefundExceedsMax, resolved.StringFixed(2), t.MaxRefundable().StringFixed(2))
	}

	t.RefundAmount = NewMoneyFromDecimal(t.RefundAmount.Decimal.Add(resolved))
	t.RefundedAt = &now
	if t.RefundAmount.Decimal.Cmp(t.Amount.Decimal) >= 0 {
		t.Status = constants.TransactionStatusRefunded
	} else {
		t.Status = constants.TransactionStatusPartiallyRefunded
	}
	return nil
}

// IsRefundable 判断是否处于允许发起退款的状态（调用方策略）
func (t *Transaction) IsRefundable() bool {
	return t.Status == constants.TransactionStatusCompleted ||
		t.Status == constants.TransactionStatusPartiallyRefunded
}

// PaymentLinkSlug 读取 metadata 中携带的支付链接 slug
func (t *Transaction) PaymentLinkSlug() string {
	return t.Metadata.GetString(constants.MetadataKeyPaymentLinkSlug)
}
