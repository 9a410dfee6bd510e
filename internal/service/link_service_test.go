package service

import (
	"errors"
	"testing"
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newLinkService(t *testing.T, name string) (*LinkService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, name)
	svc := NewLinkService(
		repository.NewPaymentLinkRepository(db),
		repository.NewGatewaySettingsRepository(db),
	)
	return svc, db
}

func TestCreateLinkRequiresTitle(t *testing.T) {
	svc, _ := newLinkService(t, "link_title_required")

	_, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "   ",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	if !errors.Is(err, ErrLinkTitleRequired) {
		t.Fatalf("expected ErrLinkTitleRequired, got %v", err)
	}
}

func TestCreateLinkRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newLinkService(t, "link_amount_invalid")

	_, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Deposit",
		Amount: models.NewMoneyFromDecimal(decimal.Zero),
	})
	if !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid, got %v", err)
	}
}

func TestCreateLinkGeneratesSlugAndDefaults(t *testing.T) {
	svc, _ := newLinkService(t, "link_defaults")

	link, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Deposit",
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("45.00")),
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	if len(link.Slug) != 12 {
		t.Fatalf("expected generated 12-char slug, got %q", link.Slug)
	}
	if !link.IsActive {
		t.Fatalf("expected new link to be active")
	}
	// 未指定时默认单次使用，币种取 hub 配置
	if link.MaxUses != 1 {
		t.Fatalf("expected default max_uses 1, got %d", link.MaxUses)
	}
	if link.Currency != "EUR" {
		t.Fatalf("expected default currency EUR, got %s", link.Currency)
	}
}

func TestCreateLinkUnlimitedUses(t *testing.T) {
	svc, _ := newLinkService(t, "link_unlimited")

	zero := 0
	link, err := svc.CreateLink(CreateLinkInput{
		HubID:   1,
		Title:   "Voucher",
		Amount:  models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		MaxUses: &zero,
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	if link.MaxUses != 0 {
		t.Fatalf("expected max_uses 0 (unlimited), got %d", link.MaxUses)
	}
}

func TestCreateLinkRejectsTakenSlug(t *testing.T) {
	svc, _ := newLinkService(t, "link_slug_taken")

	if _, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "First",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Slug:   "my-deposit",
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Second",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Slug:   "my-deposit",
	})
	if !errors.Is(err, ErrLinkSlugTaken) {
		t.Fatalf("expected ErrLinkSlugTaken, got %v", err)
	}
}

func TestUpdateLinkPartialFields(t *testing.T) {
	svc, _ := newLinkService(t, "link_update")

	expires := time.Now().Add(24 * time.Hour)
	link, err := svc.CreateLink(CreateLinkInput{
		HubID:     1,
		Title:     "Deposit",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		ExpiresAt: &expires,
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	newTitle := "Renamed deposit"
	amount := models.NewMoneyFromDecimal(decimal.RequireFromString("60.00"))
	updated, err := svc.UpdateLink(1, link.ID, UpdateLinkInput{
		Title:  &newTitle,
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("update link failed: %v", err)
	}
	if updated.Title != "Renamed deposit" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
	if !updated.Amount.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected amount updated, got %s", updated.Amount.String())
	}
	// 未提交的字段保持原值
	if updated.ExpiresAt == nil {
		t.Fatalf("expected expiry untouched")
	}

	updated, err = svc.UpdateLink(1, link.ID, UpdateLinkInput{ClearExpires: true})
	if err != nil {
		t.Fatalf("clear expiry failed: %v", err)
	}
	if updated.ExpiresAt != nil {
		t.Fatalf("expected expiry cleared")
	}
}

func TestUpdateLinkNotFound(t *testing.T) {
	svc, _ := newLinkService(t, "link_update_not_found")

	_, err := svc.UpdateLink(1, 999, UpdateLinkInput{})
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestDeactivateLink(t *testing.T) {
	svc, _ := newLinkService(t, "link_deactivate")

	link, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Deposit",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	deactivated, err := svc.DeactivateLink(1, link.ID)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if deactivated.IsActive {
		t.Fatalf("expected link deactivated")
	}

	// 停用的链接仍可检索和恢复
	got, err := svc.GetLink(1, link.ID)
	if err != nil {
		t.Fatalf("get after deactivate failed: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected deactivated state persisted")
	}
}

func TestDeleteLinkHidesFromCheckout(t *testing.T) {
	svc, _ := newLinkService(t, "link_delete")

	link, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Deposit",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		Slug:   "to-delete",
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	if err := svc.DeleteLink(1, link.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.GetLink(1, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected deleted link hidden from staff, got %v", err)
	}
	if _, err := svc.GetCheckout("to-delete", time.Now()); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected deleted link hidden from checkout, got %v", err)
	}
}

func TestGetCheckout(t *testing.T) {
	svc, db := newLinkService(t, "link_checkout")
	seedGatewaySettings(t, db, 1, constants.GatewayStripe)

	link, err := svc.CreateLink(CreateLinkInput{
		HubID:  1,
		Title:  "Deposit",
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		Slug:   "checkout-link",
	})
	if err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	view, err := svc.GetCheckout("checkout-link", time.Now())
	if err != nil {
		t.Fatalf("get checkout failed: %v", err)
	}
	if !view.Available {
		t.Fatalf("expected link available")
	}
	if view.Gateway != constants.GatewayStripe {
		t.Fatalf("expected stripe gateway, got %s", view.Gateway)
	}
	if view.StripeKey != "pk_test_123" {
		t.Fatalf("expected stripe public key exposed, got %q", view.StripeKey)
	}

	// 停用后仍返回链接，由 Available 标记不可用
	if _, err := svc.DeactivateLink(1, link.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	view, err = svc.GetCheckout("checkout-link", time.Now())
	if err != nil {
		t.Fatalf("get checkout after deactivate failed: %v", err)
	}
	if view.Available {
		t.Fatalf("expected link unavailable after deactivation")
	}

	if _, err := svc.GetCheckout("no-such-slug", time.Now()); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}
