package models

import (
	"testing"
	"time"
)

func TestNewLinkSlug(t *testing.T) {
	slug := NewLinkSlug()
	if len(slug) != 12 {
		t.Fatalf("expected 12-char slug, got %q", slug)
	}
	if other := NewLinkSlug(); other == slug {
		t.Fatalf("expected distinct slugs, got %s twice", slug)
	}
}

func TestPaymentLinkIsAvailable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		link PaymentLink
		want bool
	}{
		{"active_no_limits", PaymentLink{IsActive: true, MaxUses: 0}, true},
		{"inactive", PaymentLink{IsActive: false, MaxUses: 0}, false},
		{"expired", PaymentLink{IsActive: true, ExpiresAt: &past}, false},
		{"not_yet_expired", PaymentLink{IsActive: true, ExpiresAt: &future, MaxUses: 0}, true},
		{"uses_remaining", PaymentLink{IsActive: true, MaxUses: 3, CurrentUses: 2}, true},
		{"uses_exhausted", PaymentLink{IsActive: true, MaxUses: 3, CurrentUses: 3}, false},
		{"unlimited_uses", PaymentLink{IsActive: true, MaxUses: 0, CurrentUses: 999}, true},
	}

	for _, tc := range cases {
		if got := tc.link.IsAvailable(now); got != tc.want {
			t.Fatalf("%s: expected available=%v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestPaymentLinkIsExpired(t *testing.T) {
	now := time.Now()

	link := PaymentLink{}
	if link.IsExpired(now) {
		t.Fatalf("expected link without expiry to never expire")
	}

	exact := now
	link.ExpiresAt = &exact
	if link.IsExpired(now) {
		t.Fatalf("expected link expiring exactly now to still be valid")
	}
	if !link.IsExpired(now.Add(time.Second)) {
		t.Fatalf("expected link to expire after the deadline")
	}
}
