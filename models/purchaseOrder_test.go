package models_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/modeltest"
	"github.com/mmdatafocus/pos_backend/utils"
)

func createSupplier(t *testing.T, ctx context.Context) *models.Supplier {
	t.Helper()
	s, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:        "Acme Wholesale",
		ContactInfo: "orders@acme.example.com",
		Address:     "1 Depot Road",
	})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	return s
}

func TestPurchaseOrderDeliveryRestocks(t *testing.T) {
	ctx := modeltest.Setup(t)
	supplier := createSupplier(t, ctx)
	a := modeltest.Product(t, ctx, "A", "3")
	b := modeltest.Product(t, ctx, "B", "4")
	if _, err := models.Restock(ctx, a.ID, 5, nil); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	po, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID,
		Details: []*models.NewPurchaseOrderDetail{
			{ProductId: a.ID, Quantity: 20},
			{ProductId: b.ID, Quantity: 7},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if po.CurrentStatus != models.PurchaseOrderStatusPending || len(po.Details) != 2 {
		t.Fatalf("unexpected purchase order: %+v", po)
	}

	if _, err := models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusShipped); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusPending); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("Shipped -> Pending should be rejected, got %v", err)
	}
	if _, err := models.UpdatePurchaseOrderItems(ctx, po.ID, []*models.NewPurchaseOrderDetail{{ProductId: a.ID, Quantity: 1}}); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("shipped orders should not be editable, got %v", err)
	}

	po, err = models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if po.DeliveredAt == nil {
		t.Fatalf("delivered_at should be set")
	}

	for productId, want := range map[int]int{a.ID: 25, b.ID: 7} {
		inv, err := models.GetInventoryByProduct(ctx, productId)
		if err != nil {
			t.Fatalf("GetInventoryByProduct(%d): %v", productId, err)
		}
		if inv.Quantity != want {
			t.Fatalf("product %d: expected %d, got %d", productId, want, inv.Quantity)
		}
		if inv.SupplierId == nil || *inv.SupplierId != supplier.ID {
			t.Fatalf("product %d should be linked to supplier %d", productId, supplier.ID)
		}
	}

	if _, err := models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusDelivered); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("delivering twice should be rejected, got %v", err)
	}
	if _, err := models.DeletePurchaseOrder(ctx, po.ID); !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("delivered orders should not be deletable, got %v", err)
	}
}

func TestPurchaseOrderValidation(t *testing.T) {
	ctx := modeltest.Setup(t)
	supplier := createSupplier(t, ctx)
	p := modeltest.Product(t, ctx, "A", "3")

	if _, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{SupplierId: supplier.ID}); !errors.Is(err, utils.ErrEmptyItemList) {
		t.Fatalf("expected ErrEmptyItemList, got %v", err)
	}
	if _, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID + 1,
		Details:    []*models.NewPurchaseOrderDetail{{ProductId: p.ID, Quantity: 1}},
	}); !errors.Is(err, utils.ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}

	po, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID,
		Details:    []*models.NewPurchaseOrderDetail{{ProductId: p.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	po, err = models.UpdatePurchaseOrderItems(ctx, po.ID, []*models.NewPurchaseOrderDetail{{ProductId: p.ID, Quantity: 12}})
	if err != nil {
		t.Fatalf("UpdatePurchaseOrderItems: %v", err)
	}
	if len(po.Details) != 1 || po.Details[0].Quantity != 12 {
		t.Fatalf("lines should be replaced: %+v", po.Details)
	}
	if _, err := models.DeletePurchaseOrder(ctx, po.ID); err != nil {
		t.Fatalf("DeletePurchaseOrder: %v", err)
	}
	if _, err := models.GetPurchaseOrder(ctx, po.ID); !errors.Is(err, utils.ErrPurchaseOrderNotFound) {
		t.Fatalf("expected ErrPurchaseOrderNotFound, got %v", err)
	}
}

// deliverConcurrently races n Shipped -> Delivered requests for one order.
func deliverConcurrently(t *testing.T, ctx context.Context, poId int, n int) (delivered int, rejected int) {
	t.Helper()
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := models.UpdatePurchaseOrderStatus(ctx, poId, models.PurchaseOrderStatusDelivered)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				delivered++
			case errors.Is(err, utils.ErrInvalidStatusTransition):
				rejected++
			default:
				t.Errorf("deliver: %v", err)
			}
		}()
	}
	wg.Wait()
	return delivered, rejected
}

func TestConcurrentDeliveriesRestockOnce(t *testing.T) {
	ctx := modeltest.Setup(t)
	supplier := createSupplier(t, ctx)
	p := modeltest.Product(t, ctx, "A", "3")

	po, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID,
		Details:    []*models.NewPurchaseOrderDetail{{ProductId: p.ID, Quantity: 12}},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if _, err := models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusShipped); err != nil {
		t.Fatalf("ship: %v", err)
	}

	delivered, rejected := deliverConcurrently(t, ctx, po.ID, 4)
	if delivered != 1 || rejected != 3 {
		t.Fatalf("expected 1 delivery and 3 rejections, got %d and %d", delivered, rejected)
	}
	inv, err := models.GetInventoryByProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetInventoryByProduct: %v", err)
	}
	if inv.Quantity != 12 {
		t.Fatalf("expected a single restock of 12, got %d", inv.Quantity)
	}
	movements, err := models.ListStockMovements(ctx, p.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListStockMovements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 stock movement, got %d", len(movements))
	}
}
