package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/payment/manual"
	"github.com/payhub-next/internal/payment/redsys"
	"github.com/payhub-next/internal/payment/stripe"
	"github.com/payhub-next/internal/provider"
	"github.com/payhub-next/internal/repository"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newWebhookHandler(t *testing.T, name string) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.GatewaySettings{}, &models.Transaction{}, &models.PaymentLink{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	models.DB = db

	txnRepo := repository.NewTransactionRepository(db)
	linkRepo := repository.NewPaymentLinkRepository(db)
	settingsRepo := repository.NewGatewaySettingsRepository(db)
	container := &provider.Container{
		TransactionRepo:     txnRepo,
		PaymentLinkRepo:     linkRepo,
		GatewaySettingsRepo: settingsRepo,
		PaymentService: service.NewPaymentService(
			txnRepo, linkRepo, settingsRepo, nil,
			stripe.New(), redsys.New(), manual.New(),
		),
	}
	return New(container), db
}

func postWebhook(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.PaymentWebhook(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return payload
}

func TestPaymentWebhookRejectsBadJSON(t *testing.T) {
	h, _ := newWebhookHandler(t, "handler_webhook_bad_json")

	w := postWebhook(t, h, "not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	payload := decodeBody(t, w)
	if msg, ok := payload["error"].(string); !ok || msg == "" {
		t.Fatalf("expected error field in response, got %v", payload)
	}
}

func TestPaymentWebhookRejectsUnknownGateway(t *testing.T) {
	h, db := newWebhookHandler(t, "handler_webhook_unknown_gw")

	w := postWebhook(t, h, `{"gateway":"paypal","type":"payment.completed"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// 拒收的通知不产生任何交易
	var count int64
	if err := db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no transactions, got %d", count)
	}
}

func TestPaymentWebhookTransactionNotFound(t *testing.T) {
	h, _ := newWebhookHandler(t, "handler_webhook_not_found")

	body := `{"gateway":"stripe","type":"checkout.session.completed","data":{"object":{"metadata":{"transaction_id":"TXN-UNKNOWN"}}}}`
	w := postWebhook(t, h, body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	payload := decodeBody(t, w)
	if payload["error"] != "Transaction not found" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}
}

func TestPaymentWebhookCompleted(t *testing.T) {
	h, db := newWebhookHandler(t, "handler_webhook_completed")

	txn := &models.Transaction{
		HubModel:      models.HubModel{HubID: 1},
		TransactionID: models.NewTransactionID(time.Now()),
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.RequireFromString("45.00")),
		Currency:      "EUR",
		Status:        constants.TransactionStatusPending,
		RefundAmount:  models.NewMoneyFromDecimal(decimal.Zero),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}

	body := fmt.Sprintf(
		`{"gateway":"stripe","type":"checkout.session.completed","data":{"object":{"metadata":{"transaction_id":%q},"payment_intent":"pi_123"}}}`,
		txn.TransactionID,
	)
	w := postWebhook(t, h, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	payload := decodeBody(t, w)
	if payload["received"] != true {
		t.Fatalf("expected received=true, got %v", payload["received"])
	}
	if payload["transaction_id"] != txn.TransactionID {
		t.Fatalf("expected transaction_id %s, got %v", txn.TransactionID, payload["transaction_id"])
	}
	if payload["status"] != constants.TransactionStatusCompleted {
		t.Fatalf("expected completed status, got %v", payload["status"])
	}
}

func TestPaymentWebhookRedeliveryAcknowledged(t *testing.T) {
	h, db := newWebhookHandler(t, "handler_webhook_redelivery")

	now := time.Now()
	txn := &models.Transaction{
		HubModel:      models.HubModel{HubID: 1},
		TransactionID: models.NewTransactionID(now),
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.RequireFromString("45.00")),
		Currency:      "EUR",
		Status:        constants.TransactionStatusCompleted,
		RefundAmount:  models.NewMoneyFromDecimal(decimal.Zero),
		CompletedAt:   &now,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}

	// 已完成交易的重投递仍返回 2xx，避免网关无限重试
	body := fmt.Sprintf(
		`{"gateway":"stripe","type":"checkout.session.completed","data":{"object":{"metadata":{"transaction_id":%q}}}}`,
		txn.TransactionID,
	)
	w := postWebhook(t, h, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if payload := decodeBody(t, w); payload["received"] != true {
		t.Fatalf("expected received=true, got %v", payload["received"])
	}
}
