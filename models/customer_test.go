package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/modeltest"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCustomerLoyaltyPoints(t *testing.T) {
	ctx := modeltest.Setup(t)
	customer := modeltest.Customer(t, ctx, "Jane Doe")
	if customer.LoyaltyTier != models.LoyaltyTierBronze {
		t.Fatalf("new customers start at Bronze, got %s", customer.LoyaltyTier)
	}

	if _, err := models.AddLoyaltyPoints(ctx, customer.ID, 0); !errors.Is(err, utils.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := models.AddLoyaltyPoints(ctx, customer.ID+1, 10); !errors.Is(err, utils.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	got, err := models.AddLoyaltyPoints(ctx, customer.ID, 2000)
	if err != nil {
		t.Fatalf("AddLoyaltyPoints: %v", err)
	}
	if got.LoyaltyPoints != 2000 || got.LoyaltyTier != models.LoyaltyTierGold {
		t.Fatalf("expected 2000 points at Gold, got %d at %s", got.LoyaltyPoints, got.LoyaltyTier)
	}
}

func TestCustomerContactValidationAndSearch(t *testing.T) {
	ctx := modeltest.Setup(t)
	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Bad", ContactInfo: "not@an"}); !errors.Is(err, utils.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	c, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Mixed Case", ContactInfo: "Mixed.Case@Example.com"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.ContactInfo != "mixed.case@example.com" {
		t.Fatalf("email should be normalised, got %q", c.ContactInfo)
	}
	modeltest.Customer(t, ctx, "John Smith")

	found, err := models.SearchCustomers(ctx, "Smi")
	if err != nil {
		t.Fatalf("SearchCustomers: %v", err)
	}
	if len(found) != 1 || found[0].Name != "John Smith" {
		t.Fatalf("unexpected search result %+v", found)
	}
}

func TestCustomerPurchaseHistoryAndDelete(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "A", "10")
	customer := modeltest.Customer(t, ctx, "Jane Doe")

	recent := time.Now().UTC().Add(-48 * time.Hour)
	old := time.Now().UTC().AddDate(0, 0, -40)
	for _, at := range []time.Time{old, recent} {
		at := at
		if _, err := models.CreateSale(ctx, &models.NewSale{
			CashierId:  user.ID,
			CustomerId: &customer.ID,
			SaleDate:   &at,
			Items:      []*models.NewSaleItem{modeltest.Item(p.ID, 3, "10")},
		}); err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
	}

	history, err := models.GetPurchaseHistory(ctx, customer.ID, 30)
	if err != nil {
		t.Fatalf("GetPurchaseHistory: %v", err)
	}
	if history.TotalPurchases != 1 || !history.TotalSpent.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected one 30.00 purchase in 30 days, got %d totalling %s", history.TotalPurchases, history.TotalSpent)
	}
	if history.LastPurchase == nil || !history.LastPurchase.Equal(recent) {
		t.Fatalf("expected last purchase %s, got %v", recent, history.LastPurchase)
	}

	sales, err := models.GetCustomerSales(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerSales: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}

	if _, err := models.DeleteCustomer(ctx, customer.ID); !errors.Is(err, utils.ErrConflict) {
		t.Fatalf("customers with sales should not be deleted, got %v", err)
	}
	idle := modeltest.Customer(t, ctx, "Idle Person")
	if _, err := models.DeleteCustomer(ctx, idle.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
}
