package service

import (
	"errors"
	"testing"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"

	"github.com/shopspring/decimal"
)

func newSettingsService(t *testing.T, name string) *SettingsService {
	t.Helper()
	db := newServiceTestDB(t, name)
	return NewSettingsService(repository.NewGatewaySettingsRepository(db))
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	svc := newSettingsService(t, "settings_defaults")

	settings, err := svc.GetSettings(1)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.ActiveGateway != constants.GatewayNone {
		t.Fatalf("expected default gateway none, got %s", settings.ActiveGateway)
	}
	if settings.Currency != "EUR" {
		t.Fatalf("expected default currency EUR, got %s", settings.Currency)
	}
	if settings.RedsysEnvironment != constants.RedsysEnvironmentTest {
		t.Fatalf("expected default redsys environment test, got %s", settings.RedsysEnvironment)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	svc := newSettingsService(t, "settings_partial")

	gateway := constants.GatewayStripe
	publicKey := "pk_test_abc"
	secretKey := "sk_test_abc"
	updated, err := svc.UpdateSettings(1, UpdateSettingsInput{
		ActiveGateway:   &gateway,
		StripePublicKey: &publicKey,
		StripeSecretKey: &secretKey,
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.ActiveGateway != constants.GatewayStripe {
		t.Fatalf("expected stripe gateway, got %s", updated.ActiveGateway)
	}
	if updated.StripeSecretKey != "sk_test_abc" {
		t.Fatalf("expected secret key stored")
	}

	// 未提交的字段保持原值
	currency := "usd"
	updated, err = svc.UpdateSettings(1, UpdateSettingsInput{Currency: &currency})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if updated.Currency != "USD" {
		t.Fatalf("expected currency uppercased to USD, got %s", updated.Currency)
	}
	if updated.ActiveGateway != constants.GatewayStripe {
		t.Fatalf("expected gateway unchanged, got %s", updated.ActiveGateway)
	}
}

func TestUpdateSettingsKeepsSecretOnEmptyValue(t *testing.T) {
	svc := newSettingsService(t, "settings_secret_keep")

	secretKey := "sk_test_original"
	if _, err := svc.UpdateSettings(1, UpdateSettingsInput{StripeSecretKey: &secretKey}); err != nil {
		t.Fatalf("initial update failed: %v", err)
	}

	// 空串表示保留现有密钥
	empty := ""
	updated, err := svc.UpdateSettings(1, UpdateSettingsInput{StripeSecretKey: &empty})
	if err != nil {
		t.Fatalf("update with empty secret failed: %v", err)
	}
	if updated.StripeSecretKey != "sk_test_original" {
		t.Fatalf("expected existing secret preserved, got %q", updated.StripeSecretKey)
	}
}

func TestUpdateSettingsRejectsInvalidGateway(t *testing.T) {
	svc := newSettingsService(t, "settings_invalid_gateway")

	gateway := "paypal"
	_, err := svc.UpdateSettings(1, UpdateSettingsInput{ActiveGateway: &gateway})
	if !errors.Is(err, ErrSettingsInvalidGateway) {
		t.Fatalf("expected ErrSettingsInvalidGateway, got %v", err)
	}
}

func TestUpdateSettingsRejectsInvalidEnvironment(t *testing.T) {
	svc := newSettingsService(t, "settings_invalid_env")

	env := "staging"
	_, err := svc.UpdateSettings(1, UpdateSettingsInput{RedsysEnvironment: &env})
	if !errors.Is(err, ErrSettingsInvalidEnvironment) {
		t.Fatalf("expected ErrSettingsInvalidEnvironment, got %v", err)
	}
}

func TestUpdateSettingsDepositPercentage(t *testing.T) {
	svc := newSettingsService(t, "settings_deposit")

	require := true
	percentage := models.NewMoneyFromDecimal(decimal.RequireFromString("50.00"))
	updated, err := svc.UpdateSettings(1, UpdateSettingsInput{
		RequireDeposit:    &require,
		DepositPercentage: &percentage,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.RequireDeposit {
		t.Fatalf("expected require_deposit enabled")
	}
	if !updated.DepositPercentage.Decimal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected deposit percentage 50.00, got %s", updated.DepositPercentage.String())
	}
}
