package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/payhub-next/internal/http/handlers/shared"
	"github.com/payhub-next/internal/http/response"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateSessionRequest 签发支付会话请求
type CreateSessionRequest struct {
	Amount          models.Money `json:"amount" binding:"required"`
	Currency        string       `json:"currency"`
	Description     string       `json:"description"`
	CustomerEmail   string       `json:"customer_email"`
	CustomerName    string       `json:"customer_name"`
	SourceType      string       `json:"source_type"`
	SourceID        string       `json:"source_id"`
	PaymentLinkSlug string       `json:"payment_link_slug"`
}

// CreatePaymentSession 签发支付会话
func (h *Handler) CreatePaymentSession(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result, err := h.PaymentService.CreateSession(service.CreateSessionInput{
		HubID:           hubID,
		Amount:          req.Amount,
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
		Description:     req.Description,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		SourceType:      req.SourceType,
		SourceID:        req.SourceID,
		PaymentLinkSlug: strings.TrimSpace(req.PaymentLinkSlug),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAmountInvalid),
			errors.Is(err, service.ErrNoGatewayConfigured):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			requestLog(c).Errorw("payment_session_handler_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Session creation failed"})
		}
		return
	}

	resp := gin.H{
		"success":        true,
		"transaction_id": result.Transaction.TransactionID,
		"gateway":        result.Gateway,
		"amount":         result.Transaction.Amount,
		"currency":       result.Transaction.Currency,
		"status":         result.Transaction.Status,
	}
	for key, value := range result.Fields {
		resp[key] = value
	}
	c.JSON(http.StatusOK, resp)
}

// RefundRequest 退款请求；amount 缺省表示全额
type RefundRequest struct {
	Amount *models.Money `json:"amount"`
}

// RefundTransaction 对交易发起退款
func (h *Handler) RefundTransaction(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	txnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || txnID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid transaction id"})
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	var amount *decimal.Decimal
	if req.Amount != nil {
		amount = &req.Amount.Decimal
	}

	txn, err := h.PaymentService.Refund(service.RefundInput{
		HubID:         hubID,
		TransactionID: uint(txnID),
		Amount:        amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Transaction not found"})
		case errors.Is(err, service.ErrTransactionNotRefundable),
			errors.Is(err, models.ErrRefundAmountInvalid),
			errors.Is(err, models.ErrRefundExceedsMax):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			requestLog(c).Errorw("payment_refund_handler_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Refund failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"status":        txn.Status,
		"refund_amount": txn.RefundAmount,
	})
}

// ListTransactions 员工端交易列表
func (h *Handler) ListTransactions(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "25"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.TransactionListFilter{
		HubID:      hubID,
		Search:     strings.TrimSpace(c.Query("search")),
		Status:     strings.TrimSpace(c.Query("status")),
		Gateway:    strings.TrimSpace(c.Query("gateway")),
		SourceType: strings.TrimSpace(c.Query("source_type")),
		Page:       page,
		PageSize:   pageSize,
	}
	if from := strings.TrimSpace(c.Query("created_from")); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := strings.TrimSpace(c.Query("created_to")); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			filter.CreatedTo = &end
		}
	}

	txns, total, err := h.PaymentService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "transaction list failed", err)
		return
	}
	response.SuccessWithPage(c, txns, response.NewPagination(page, pageSize, total))
}

// GetTransaction 员工端交易详情
func (h *Handler) GetTransaction(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	txnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || txnID == 0 {
		respondError(c, response.CodeBadRequest, "invalid transaction id", nil)
		return
	}
	txn, err := h.PaymentService.GetTransaction(hubID, uint(txnID))
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			respondError(c, response.CodeNotFound, "transaction not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "transaction fetch failed", err)
		return
	}
	response.Success(c, txn)
}
