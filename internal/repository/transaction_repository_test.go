package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.GatewaySettings{},
		&models.Transaction{},
		&models.PaymentLink{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createTransaction(t *testing.T, db *gorm.DB, txn models.Transaction) models.Transaction {
	t.Helper()
	if txn.RefundAmount.Decimal.IsZero() {
		txn.RefundAmount = models.NewMoneyFromDecimal(decimal.Zero)
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	return txn
}

func TestTransactionRepositoryHubScoping(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)

	txn := createTransaction(t, db, models.Transaction{
		HubModel:      models.HubModel{HubID: 1},
		TransactionID: "TXN-SCOPE-1",
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Currency:      "EUR",
		Status:        constants.TransactionStatusPending,
	})

	got, err := repo.GetByID(1, txn.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got == nil || got.TransactionID != "TXN-SCOPE-1" {
		t.Fatalf("expected transaction found for own hub")
	}

	got, err = repo.GetByID(2, txn.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected transaction hidden from foreign hub")
	}

	got, err = repo.GetByTransactionID(2, "TXN-SCOPE-1")
	if err != nil {
		t.Fatalf("get by transaction id failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected transaction id lookup scoped to hub")
	}
}

func TestTransactionRepositoryAnyLookupIncludesDeleted(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)

	txn := createTransaction(t, db, models.Transaction{
		HubModel:      models.HubModel{HubID: 1, Deleted: true},
		TransactionID: "TXN-DELETED-1",
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Currency:      "EUR",
		Status:        constants.TransactionStatusPending,
	})

	// 常规查询不可见
	got, err := repo.GetByTransactionID(1, "TXN-DELETED-1")
	if err != nil {
		t.Fatalf("get by transaction id failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected soft-deleted transaction hidden from scoped lookup")
	}

	// webhook 关联查找必须命中
	got, err = repo.GetByTransactionIDAny("TXN-DELETED-1")
	if err != nil {
		t.Fatalf("any lookup failed: %v", err)
	}
	if got == nil || got.ID != txn.ID {
		t.Fatalf("expected soft-deleted transaction reachable via any lookup")
	}
}

func TestTransactionRepositoryList(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)

	createTransaction(t, db, models.Transaction{
		HubModel:      models.HubModel{HubID: 1},
		TransactionID: "TXN-LIST-1",
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Currency:      "EUR",
		Status:        constants.TransactionStatusCompleted,
		CustomerName:  "Alice Martin",
	})
	createTransaction(t, db, models.Transaction{
		HubModel:      models.HubModel{HubID: 1},
		TransactionID: "TXN-LIST-2",
		Gateway:       constants.GatewayRedsys,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		Currency:      "EUR",
		Status:        constants.TransactionStatusPending,
		CustomerName:  "Bob Garcia",
	})
	createTransaction(t, db, models.Transaction{
		HubModel:      models.HubModel{HubID: 2},
		TransactionID: "TXN-LIST-3",
		Gateway:       constants.GatewayStripe,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:      "EUR",
		Status:        constants.TransactionStatusCompleted,
	})

	txns, total, err := repo.List(TransactionListFilter{HubID: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(txns) != 2 {
		t.Fatalf("expected 2 transactions for hub 1, got total=%d len=%d", total, len(txns))
	}

	txns, total, err = repo.List(TransactionListFilter{HubID: 1, Status: constants.TransactionStatusCompleted})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || txns[0].TransactionID != "TXN-LIST-1" {
		t.Fatalf("expected single completed transaction, got total=%d", total)
	}

	txns, total, err = repo.List(TransactionListFilter{HubID: 1, Search: "garcia"})
	if err != nil {
		t.Fatalf("list by search failed: %v", err)
	}
	if total != 1 || txns[0].TransactionID != "TXN-LIST-2" {
		t.Fatalf("expected search to match customer name, got total=%d", total)
	}

	txns, total, err = repo.List(TransactionListFilter{HubID: 1, Gateway: constants.GatewayRedsys})
	if err != nil {
		t.Fatalf("list by gateway failed: %v", err)
	}
	if total != 1 || txns[0].Gateway != constants.GatewayRedsys {
		t.Fatalf("expected single redsys transaction, got total=%d", total)
	}
}

func TestPaymentLinkRepositorySlugLookup(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentLinkRepository(db)

	link := models.PaymentLink{
		HubModel: models.HubModel{HubID: 1},
		Title:    "Deposit",
		Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		Currency: "EUR",
		Slug:     "repo-slug",
		IsActive: true,
		MaxUses:  1,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("create link failed: %v", err)
	}

	got, err := repo.GetBySlug("repo-slug")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if got == nil || got.ID != link.ID {
		t.Fatalf("expected link found by slug")
	}

	link.SoftDelete(time.Now())
	if err := db.Save(&link).Error; err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	got, err = repo.GetBySlug("repo-slug")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected soft-deleted link hidden from slug lookup")
	}
}

func TestPaymentLinkRepositoryCountActive(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentLinkRepository(db)

	for i, active := range []bool{true, true, false} {
		link := models.PaymentLink{
			HubModel: models.HubModel{HubID: 1},
			Title:    "Link",
			Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Currency: "EUR",
			Slug:     fmt.Sprintf("count-link-%d", i),
			IsActive: active,
			MaxUses:  1,
		}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("create link failed: %v", err)
		}
	}

	count, err := repo.CountActive(1)
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active links, got %d", count)
	}
}

func TestGatewaySettingsRepositoryGetOrCreate(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewGatewaySettingsRepository(db)

	settings, err := repo.GetOrCreate(1)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if settings.ActiveGateway != constants.GatewayNone {
		t.Fatalf("expected default gateway none, got %s", settings.ActiveGateway)
	}

	// 再次访问返回同一行
	again, err := repo.GetOrCreate(1)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if again.ID != settings.ID {
		t.Fatalf("expected singleton row, got ids %d and %d", settings.ID, again.ID)
	}

	var count int64
	if err := db.Model(&models.GatewaySettings{}).Where("hub_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}
}
