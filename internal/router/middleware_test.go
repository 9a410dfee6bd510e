package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func newStaffTestRouter(secretKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StaffJWTAuthMiddleware(secretKey))
	r.GET("/staff/ping", func(c *gin.Context) {
		hubID, _ := c.Get("hub_id")
		c.JSON(http.StatusOK, gin.H{"hub_id": hubID})
	})
	return r
}

func TestStaffJWTAuthMiddleware(t *testing.T) {
	const secret = "test-secret-0123456789-0123456789"
	r := newStaffTestRouter(secret)

	token, err := service.IssueStaffToken(secret, 7, "staff@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/staff/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		HubID uint `json:"hub_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.HubID != 7 {
		t.Fatalf("hub_id want 7 got %d", resp.HubID)
	}
}

func TestStaffJWTAuthMiddlewareRejections(t *testing.T) {
	const secret = "test-secret-0123456789-0123456789"

	assertUnauthorized := func(t *testing.T, r *gin.Engine, authHeader string) {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/staff/ping", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		r.ServeHTTP(w, req)

		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("status_code want 401 got %d", resp.StatusCode)
		}
	}

	r := newStaffTestRouter(secret)
	assertUnauthorized(t, r, "")
	assertUnauthorized(t, r, "Basic abc")
	assertUnauthorized(t, r, "Bearer not-a-token")

	// 密钥不匹配的 token
	wrongToken, err := service.IssueStaffToken("another-secret-0123456789-012345", 7, "staff@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	assertUnauthorized(t, r, "Bearer "+wrongToken)

	// hub_id 为 0 的 token 不接受
	zeroHubToken, err := service.IssueStaffToken(secret, 0, "staff@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	assertUnauthorized(t, r, "Bearer "+zeroHubToken)

	// 过期 token
	expiredToken, err := service.IssueStaffToken(secret, 7, "staff@example.com", -time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	assertUnauthorized(t, r, "Bearer "+expiredToken)

	// 未配置密钥
	assertUnauthorized(t, newStaffTestRouter(""), "Bearer "+wrongToken)
}
