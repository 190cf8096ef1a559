package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
)

func MigrateTable() error {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Role{}, &User{}, &Employee{},
		&Discount{}, &DiscountProduct{},
		&Product{}, &Supplier{}, &Inventory{}, &StockMovement{},
		&PurchaseOrder{}, &PurchaseOrderDetail{},
		&Customer{},
		&Sale{}, &SaleItem{}, &Payment{},
		&Notification{}, &Setting{}, &IdempotencyKey{},
	)
	if err != nil {
		return err
	}

	// several instances may boot at once
	ctx := context.Background()
	return utils.WithLock(ctx, "Migration:SeedDefaultRoles", 30*time.Second, "Migration", "MigrateTable", func() error {
		return SeedDefaultRoles(ctx)
	})
}
