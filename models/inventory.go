package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Inventory struct {
	ID            int        `gorm:"primary_key" json:"id"`
	ProductId     int        `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity      int        `gorm:"not null;default:0;check:chk_inventories_quantity,quantity >= 0" json:"quantity"`
	ReorderLevel  int        `gorm:"not null" json:"reorder_level"`
	SupplierId    *int       `gorm:"index" json:"supplier_id"`
	LastRestocked *time.Time `json:"last_restocked"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockMovement is the audit trail of every successful stock change.
type StockMovement struct {
	ID               int               `gorm:"primary_key" json:"id"`
	ProductId        int               `gorm:"index;not null" json:"product_id"`
	MovementType     StockMovementType `gorm:"size:20;not null" json:"movement_type"`
	Delta            int               `gorm:"not null" json:"delta"`
	PreviousQuantity int               `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int               `gorm:"not null" json:"new_quantity"`
	Reason           string            `gorm:"size:255" json:"reason"`
	ReferenceId      int               `gorm:"default:0" json:"reference_id"`
	UserId           int               `gorm:"default:0" json:"user_id"`
	CreatedAt        time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

// StockChange is the outcome of a restock or adjustment.
type StockChange struct {
	ProductId        int        `json:"product_id"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	Inventory        *Inventory `json:"inventory"`
	LowStock         bool       `json:"low_stock"`
}

type StockLevel struct {
	ProductId    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	LowStock     bool   `json:"low_stock"`
	OutOfStock   bool   `json:"out_of_stock"`
}

// IsLowStock is true at or below the reorder level. Every inventory row carries an explicit level,
// set from the configured default on creation; a level of 0 flags only an empty shelf.
func IsLowStock(inv Inventory) bool {
	return inv.Quantity <= inv.ReorderLevel
}

type stockMutation struct {
	productId    int
	delta        int
	supplierId   *int
	movementType StockMovementType
	reason       string
	referenceId  int
}

// applyStockMutation does the locked read-modify-write inside tx.
// A missing inventory row is created for non-negative deltas only.
func applyStockMutation(ctx context.Context, tx *gorm.DB, m stockMutation) (*StockChange, error) {
	if err := utils.ValidateResourceId[Product](tx, m.productId, utils.ErrProductNotFound); err != nil {
		return nil, err
	}

	var inv Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", m.productId).First(&inv).Error
	exists := true
	if errors.Is(err, gorm.ErrRecordNotFound) {
		exists = false
	} else if err != nil {
		return nil, err
	}

	previous := inv.Quantity
	newQuantity := previous + m.delta
	if newQuantity < 0 {
		return nil, utils.ErrNegativeResultingStock
	}

	now := time.Now().UTC()
	if !exists {
		inv = Inventory{
			ProductId:    m.productId,
			Quantity:     newQuantity,
			ReorderLevel: config.GetLedgerSettings().DefaultReorderLevel,
			SupplierId:   m.supplierId,
		}
		if m.delta > 0 && m.movementType != StockMovementTypeAdjustment {
			inv.LastRestocked = &now
		}
		if err := tx.Create(&inv).Error; err != nil {
			return nil, utils.TranslateDBError(err, "inventory already exists")
		}
	} else {
		updates := map[string]interface{}{"Quantity": newQuantity}
		if m.supplierId != nil {
			updates["SupplierId"] = *m.supplierId
			inv.SupplierId = m.supplierId
		}
		if m.delta > 0 && m.movementType != StockMovementTypeAdjustment {
			updates["LastRestocked"] = now
			inv.LastRestocked = &now
		}
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return nil, utils.TranslateDBError(err, "")
		}
		inv.Quantity = newQuantity
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	movement := StockMovement{
		ProductId:        m.productId,
		MovementType:     m.movementType,
		Delta:            m.delta,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		Reason:           m.reason,
		ReferenceId:      m.referenceId,
		UserId:           userId,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}

	return &StockChange{
		ProductId:        m.productId,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		Inventory:        &inv,
		LowStock:         IsLowStock(inv),
	}, nil
}

func runStockMutation(ctx context.Context, m stockMutation) (*StockChange, error) {
	var change *StockChange
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = applyStockMutation(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	notifyLowStock(ctx, []*StockChange{change})
	return change, nil
}

// notifyLowStock runs after commit; failures are logged, the stock change stands.
func notifyLowStock(ctx context.Context, changes []*StockChange) {
	logger := config.GetLogger()
	for _, change := range changes {
		if change == nil || !change.LowStock {
			continue
		}
		_, err := CreateNotification(ctx, &NewNotification{
			Type: NotificationTypeLowStock,
			Message: fmt.Sprintf("product %d is low on stock: %d left (reorder level %d)",
				change.ProductId, change.NewQuantity, change.Inventory.ReorderLevel),
			ReferenceId: change.ProductId,
		})
		if err != nil {
			config.LogError(logger, "Inventory", "notifyLowStock", "failed to write notification", change.ProductId, err)
		}
	}
}

func Restock(ctx context.Context, productId int, quantity int, supplierId *int) (*StockChange, error) {
	if quantity <= 0 {
		return nil, utils.ErrInvalidQuantity
	}
	if supplierId != nil {
		db := config.GetDB().WithContext(ctx)
		if err := utils.ValidateResourceId[Supplier](db, *supplierId, utils.ErrSupplierNotFound); err != nil {
			return nil, err
		}
	}
	return runStockMutation(ctx, stockMutation{
		productId:    productId,
		delta:        quantity,
		supplierId:   supplierId,
		movementType: StockMovementTypeRestock,
		reason:       "restock",
	})
}

func AdjustStock(ctx context.Context, productId int, delta int, reason string) (*StockChange, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.Errorf(utils.ErrInvalidInput, "reason is required")
	}
	if len(reason) > 255 {
		return nil, utils.Errorf(utils.ErrInvalidInput, "reason is too long")
	}
	return runStockMutation(ctx, stockMutation{
		productId:    productId,
		delta:        delta,
		movementType: StockMovementTypeAdjustment,
		reason:       reason,
	})
}

func GetInventoryByProduct(ctx context.Context, productId int) (*Inventory, error) {
	db := config.GetDB()
	var inv Inventory
	err := db.WithContext(ctx).Where("product_id = ?", productId).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInventoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListStockLevels lists every product with its stock; products never stocked report zero.
func ListStockLevels(ctx context.Context, lowStockOnly bool) ([]*StockLevel, error) {
	type row struct {
		ProductId    int
		ProductName  string
		Category     string
		Quantity     *int
		ReorderLevel *int
	}
	var rows []row
	db := config.GetDB()
	err := db.WithContext(ctx).Table("products p").
		Select("p.id AS product_id, p.name AS product_name, p.category, i.quantity, i.reorder_level").
		Joins("LEFT JOIN inventories i ON i.product_id = p.id").
		Order("p.id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	defaultLevel := config.GetLedgerSettings().DefaultReorderLevel
	results := make([]*StockLevel, 0, len(rows))
	for _, r := range rows {
		inv := Inventory{
			Quantity:     utils.DereferencePtr(r.Quantity),
			ReorderLevel: utils.DereferencePtr(r.ReorderLevel, defaultLevel),
		}
		level := &StockLevel{
			ProductId:    r.ProductId,
			ProductName:  r.ProductName,
			Category:     r.Category,
			Quantity:     inv.Quantity,
			ReorderLevel: inv.ReorderLevel,
			LowStock:     IsLowStock(inv),
			OutOfStock:   inv.Quantity == 0,
		}
		if lowStockOnly && !level.LowStock {
			continue
		}
		results = append(results, level)
	}
	return results, nil
}

func UpdateReorderLevel(ctx context.Context, productId int, reorderLevel int) (*Inventory, error) {
	if reorderLevel < 0 {
		return nil, utils.Errorf(utils.ErrInvalidInput, "reorder level must not be negative")
	}
	inv, err := GetInventoryByProduct(ctx, productId)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(inv).Update("ReorderLevel", reorderLevel).Error; err != nil {
		return nil, err
	}
	inv.ReorderLevel = reorderLevel
	return inv, nil
}

func ListStockMovements(ctx context.Context, productId int, skip int, limit int) ([]*StockMovement, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&StockMovement{})
	if productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", productId)
	}
	var results []*StockMovement
	if err := dbCtx.Scopes(utils.Paginate(skip, limit)).Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
