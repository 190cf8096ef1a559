package reports_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/modeltest"
	"github.com/mmdatafocus/pos_backend/models/reports"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

var reportDay = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func ringUp(t *testing.T, ctx context.Context, cashier int, customer *int, at time.Time, items ...*models.NewSaleItem) *models.Sale {
	t.Helper()
	sale, err := models.CreateSale(ctx, &models.NewSale{
		CashierId:  cashier,
		CustomerId: customer,
		SaleDate:   &at,
		Items:      items,
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	return sale
}

func TestTopProductsOrdering(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	a := modeltest.Product(t, ctx, "A", "2")
	b := modeltest.Product(t, ctx, "B", "3")
	c := modeltest.Product(t, ctx, "C", "1")

	ringUp(t, ctx, user.ID, nil, reportDay.Add(time.Hour), modeltest.Item(b.ID, 5, "3"), modeltest.Item(a.ID, 4, "2"))
	ringUp(t, ctx, user.ID, nil, reportDay.Add(2*time.Hour), modeltest.Item(a.ID, 6, "2"), modeltest.Item(c.ID, 5, "1"))
	// outside the range
	ringUp(t, ctx, user.ID, nil, reportDay.AddDate(0, 0, 2), modeltest.Item(c.ID, 100, "1"))

	end := reportDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	records, err := reports.TopProducts(ctx, reportDay, end, 10)
	if err != nil {
		t.Fatalf("TopProducts: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 products, got %d", len(records))
	}
	if records[0].ProductId != a.ID || records[0].TotalQuantity != 10 || !records[0].TotalRevenue.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("A should lead with 10 units: %+v", records[0])
	}
	// B and C tie on 5; B was sold first
	if records[1].ProductId != b.ID || records[2].ProductId != c.ID {
		t.Fatalf("ties should keep first-sold order, got %d then %d", records[1].ProductId, records[2].ProductId)
	}
	if records[1].ProductName != "B" {
		t.Fatalf("expected product name B, got %q", records[1].ProductName)
	}

	limited, err := reports.TopProducts(ctx, reportDay, end, 1)
	if err != nil {
		t.Fatalf("TopProducts(limit 1): %v", err)
	}
	if len(limited) != 1 || limited[0].ProductId != a.ID {
		t.Fatalf("limit should keep the top product only: %+v", limited)
	}

	if _, err := reports.TopProducts(ctx, reportDay, end, 0); !errors.Is(err, utils.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for limit 0, got %v", err)
	}
	if _, err := reports.TopProducts(ctx, end, reportDay, 10); !errors.Is(err, utils.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSalesInRangeAndDailyRevenue(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "A", "10")

	ringUp(t, ctx, user.ID, nil, reportDay.Add(-time.Second), modeltest.Item(p.ID, 1, "10"))
	ringUp(t, ctx, user.ID, nil, reportDay, modeltest.Item(p.ID, 2, "10"))
	ringUp(t, ctx, user.ID, nil, reportDay.Add(23*time.Hour), modeltest.Item(p.ID, 3, "10"))
	ringUp(t, ctx, user.ID, nil, reportDay.AddDate(0, 0, 1), modeltest.Item(p.ID, 4, "10"))

	revenue, err := reports.DailyRevenue(ctx, reportDay.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("DailyRevenue: %v", err)
	}
	// midnight belongs to the day it starts, next midnight does not
	if !revenue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50, got %s", revenue)
	}
	empty, err := reports.DailyRevenue(ctx, reportDay.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("DailyRevenue: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("a day without sales should be zero, got %s", empty)
	}

	// both ends inclusive
	sales, err := reports.SalesInRange(ctx, reportDay, reportDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("SalesInRange: %v", err)
	}
	if len(sales) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(sales))
	}
	for i := 1; i < len(sales); i++ {
		if sales[i].SaleDate.Before(sales[i-1].SaleDate) {
			t.Fatalf("sales should be ordered by date")
		}
	}
	if _, err := reports.SalesInRange(ctx, reportDay.AddDate(0, 0, 1), reportDay); !errors.Is(err, utils.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	summary, err := reports.DailySummary(ctx, reportDay)
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if summary.Date != "2024-06-10" || summary.SalesCount != 2 || !summary.AverageSale.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected daily summary %+v", summary)
	}
}

func TestRevenueSummaryZeroFillsDays(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "A", "10")

	ringUp(t, ctx, user.ID, nil, reportDay.Add(time.Hour), modeltest.Item(p.ID, 1, "10"))
	ringUp(t, ctx, user.ID, nil, reportDay.AddDate(0, 0, 2).Add(time.Hour), modeltest.Item(p.ID, 2, "10"))

	end := reportDay.AddDate(0, 0, 3).Add(-time.Nanosecond)
	summary, err := reports.GetRevenueSummary(ctx, reportDay, end)
	if err != nil {
		t.Fatalf("GetRevenueSummary: %v", err)
	}
	if summary.DaysInPeriod != 3 || len(summary.DailyBreakdown) != 3 {
		t.Fatalf("expected 3 days, got %d", summary.DaysInPeriod)
	}
	if summary.SalesCount != 2 || !summary.TotalRevenue.Equal(decimal.NewFromInt(30)) || !summary.AverageSale.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if summary.DailyBreakdown[1].SalesCount != 0 || !summary.DailyBreakdown[1].TotalRevenue.IsZero() {
		t.Fatalf("the quiet day should be zero-filled: %+v", summary.DailyBreakdown[1])
	}
}

func TestCustomerLoyaltyReport(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "A", "10")
	big := modeltest.Customer(t, ctx, "Big Spender")
	small := modeltest.Customer(t, ctx, "Small Spender")
	lapsed := modeltest.Customer(t, ctx, "Lapsed Buyer")
	modeltest.Customer(t, ctx, "Never Bought")

	now := time.Now().UTC()
	ringUp(t, ctx, user.ID, &big.ID, now.Add(-72*time.Hour), modeltest.Item(p.ID, 5, "10"))
	ringUp(t, ctx, user.ID, &big.ID, now.Add(-time.Hour), modeltest.Item(p.ID, 5, "10"))
	ringUp(t, ctx, user.ID, &small.ID, now.Add(-time.Hour), modeltest.Item(p.ID, 2, "10"))
	ringUp(t, ctx, user.ID, &lapsed.ID, now.AddDate(-2, 0, 0), modeltest.Item(p.ID, 50, "10"))

	report, err := reports.CustomerLoyaltyReport(ctx, 1)
	if err != nil {
		t.Fatalf("CustomerLoyaltyReport: %v", err)
	}
	if report.TotalCustomers != 4 || report.ActiveCustomers != 2 {
		t.Fatalf("expected 4 customers with 2 active, got %d and %d", report.TotalCustomers, report.ActiveCustomers)
	}
	if !report.AverageCustomerValue.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected average 60, got %s", report.AverageCustomerValue)
	}
	if len(report.TopCustomers) != 1 {
		t.Fatalf("top_n should cap the list, got %d", len(report.TopCustomers))
	}
	top := report.TopCustomers[0]
	if top.Customer.ID != big.ID || top.TotalPurchases != 2 || !top.TotalSpent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected top customer %+v", top)
	}
	if top.LastPurchase == nil || now.Sub(*top.LastPurchase) > 2*time.Hour {
		t.Fatalf("last purchase should be the most recent sale, got %v", top.LastPurchase)
	}

	for _, n := range []int{0, 101} {
		if _, err := reports.CustomerLoyaltyReport(ctx, n); !errors.Is(err, utils.ErrInvalidInput) {
			t.Fatalf("top_n %d: expected ErrInvalidInput, got %v", n, err)
		}
	}
}

func TestStockAndPurchaseOrderReports(t *testing.T) {
	ctx := modeltest.Setup(t)
	a := modeltest.Product(t, ctx, "A", "1")
	modeltest.Product(t, ctx, "B", "1")
	if _, err := models.Restock(ctx, a.ID, 40, nil); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	stock, err := reports.StockLevelReport(ctx)
	if err != nil {
		t.Fatalf("StockLevelReport: %v", err)
	}
	if stock.TotalProducts != 2 || stock.LowStockCount != 1 || stock.OutOfStockCount != 1 {
		t.Fatalf("unexpected stock report %+v", stock)
	}

	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Acme", ContactInfo: "acme@example.com"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	orderDate := reportDay.Add(time.Hour)
	for _, qty := range []int{3, 4} {
		if _, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
			SupplierId: supplier.ID,
			OrderDate:  &orderDate,
			Details:    []*models.NewPurchaseOrderDetail{{ProductId: a.ID, Quantity: qty}, {ProductId: a.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("CreatePurchaseOrder: %v", err)
		}
	}

	summary, err := reports.PurchaseOrderSummary(ctx, reportDay, reportDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("PurchaseOrderSummary: %v", err)
	}
	if summary.TotalOrders != 2 || len(summary.ByStatus) != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	pending := summary.ByStatus[0]
	if pending.Status != models.PurchaseOrderStatusPending || pending.OrderCount != 2 || pending.TotalQuantity != 9 {
		t.Fatalf("unexpected pending bucket %+v", pending)
	}
	if summary.ByStatus[2].OrderCount != 0 {
		t.Fatalf("delivered bucket should be zero-filled: %+v", summary.ByStatus[2])
	}
}

func TestExportWorkbooks(t *testing.T) {
	ctx := modeltest.Setup(t)
	user, _ := modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "Widget", "10")
	sale := ringUp(t, ctx, user.ID, nil, reportDay.Add(time.Hour), modeltest.Item(p.ID, 3, "10"))

	end := reportDay.AddDate(0, 0, 1)
	f, err := reports.ExportSalesReport(ctx, reportDay, end)
	if err != nil {
		t.Fatalf("ExportSalesReport: %v", err)
	}
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "SaleId" || rows[1][0] != strconv.Itoa(sale.ID) || rows[1][7] != "30" {
		t.Fatalf("unexpected sales sheet %v", rows)
	}

	f, err = reports.ExportTopProducts(ctx, reportDay, end, 5)
	if err != nil {
		t.Fatalf("ExportTopProducts: %v", err)
	}
	rows, err = f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "1" || rows[1][2] != "Widget" || rows[1][3] != "3" {
		t.Fatalf("unexpected top products sheet %v", rows)
	}
}
