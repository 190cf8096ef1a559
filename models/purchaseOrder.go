package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrder struct {
	ID            int                    `gorm:"primary_key" json:"id"`
	SupplierId    int                    `gorm:"index;not null" json:"supplier_id"`
	OrderDate     time.Time              `gorm:"not null;index" json:"order_date"`
	CurrentStatus PurchaseOrderStatus    `gorm:"size:20;not null;default:Pending" json:"status"`
	Notes         string                 `gorm:"type:text" json:"notes"`
	Details       []*PurchaseOrderDetail `gorm:"foreignKey:PurchaseOrderId;constraint:OnDelete:CASCADE" json:"product_list"`
	DeliveredAt   *time.Time             `json:"delivered_at"`
	CreatedAt     time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderDetail struct {
	ID              int `gorm:"primary_key" json:"id"`
	PurchaseOrderId int `gorm:"index;not null" json:"purchase_order_id"`
	SeqNo           int `gorm:"not null" json:"seq_no"`
	ProductId       int `gorm:"index;not null" json:"product_id"`
	Quantity        int `gorm:"not null" json:"quantity"`
}

type NewPurchaseOrderDetail struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

type NewPurchaseOrder struct {
	SupplierId int                       `json:"supplier_id" binding:"required"`
	OrderDate  *time.Time                `json:"order_date"`
	Notes      string                    `json:"notes"`
	Details    []*NewPurchaseOrderDetail `json:"product_list"`
}

type PurchaseOrderFilter struct {
	SupplierId int
	Status     PurchaseOrderStatus
	Skip       int
	Limit      int
}

func validatePurchaseOrderDetails(tx *gorm.DB, details []*NewPurchaseOrderDetail) error {
	if len(details) == 0 {
		return utils.ErrEmptyItemList
	}
	productIds := make([]int, 0, len(details))
	for _, d := range details {
		if d == nil || d.Quantity <= 0 {
			return utils.ErrInvalidQuantity
		}
		productIds = append(productIds, d.ProductId)
	}
	return utils.ValidateResourcesId[Product](tx, productIds, utils.ErrProductNotFound)
}

func mapPurchaseOrderDetails(details []*NewPurchaseOrderDetail) []*PurchaseOrderDetail {
	results := make([]*PurchaseOrderDetail, 0, len(details))
	for i, d := range details {
		results = append(results, &PurchaseOrderDetail{
			SeqNo:     i + 1,
			ProductId: d.ProductId,
			Quantity:  d.Quantity,
		})
	}
	return results
}

func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateResourceId[Supplier](db, input.SupplierId, utils.ErrSupplierNotFound); err != nil {
		return nil, err
	}
	if err := validatePurchaseOrderDetails(db, input.Details); err != nil {
		return nil, err
	}
	orderDate := time.Now().UTC()
	if input.OrderDate != nil {
		orderDate = input.OrderDate.UTC()
	}
	po := PurchaseOrder{
		SupplierId:    input.SupplierId,
		OrderDate:     orderDate,
		CurrentStatus: PurchaseOrderStatusPending,
		Notes:         input.Notes,
		Details:       mapPurchaseOrderDetails(input.Details),
	}
	// order and lines are created together
	if err := db.Create(&po).Error; err != nil {
		return nil, err
	}
	return GetPurchaseOrder(ctx, po.ID)
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	return getPurchaseOrderTx(config.GetDB().WithContext(ctx), id)
}

func getPurchaseOrderTx(tx *gorm.DB, id int) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := tx.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq_no")
	}).First(&po, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrPurchaseOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// lockPurchaseOrderTx takes the order row FOR UPDATE before loading it, so status checks
// and the writes that depend on them see a stable row.
func lockPurchaseOrderTx(tx *gorm.DB, id int) (*PurchaseOrder, error) {
	var locked PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrPurchaseOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return getPurchaseOrderTx(tx, id)
}

// setPurchaseOrderStatusTx writes updates only while the order is still in from.
func setPurchaseOrderStatusTx(tx *gorm.DB, id int, from PurchaseOrderStatus, updates map[string]interface{}) error {
	res := tx.Model(&PurchaseOrder{}).
		Where("id = ? AND current_status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.Errorf(utils.ErrInvalidStatusTransition, "purchase order %d is no longer %s", id, from)
	}
	return nil
}

func ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]*PurchaseOrder, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq_no")
	})
	if filter.SupplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", filter.SupplierId)
	}
	if filter.Status != "" {
		if !filter.Status.IsValid() {
			return nil, utils.Errorf(utils.ErrInvalidInput, "invalid status %q", filter.Status)
		}
		dbCtx = dbCtx.Where("current_status = ?", filter.Status)
	}
	var results []*PurchaseOrder
	if err := dbCtx.Scopes(utils.Paginate(filter.Skip, filter.Limit)).Order("order_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdatePurchaseOrderItems replaces the order lines; only Pending orders can change.
func UpdatePurchaseOrderItems(ctx context.Context, id int, details []*NewPurchaseOrderDetail) (*PurchaseOrder, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	po, err := lockPurchaseOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if po.CurrentStatus != PurchaseOrderStatusPending {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrInvalidStatusTransition, "only pending purchase orders can be edited")
	}
	if err := validatePurchaseOrderDetails(tx, details); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("purchase_order_id = ?", id).Delete(&PurchaseOrderDetail{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, d := range mapPurchaseOrderDetails(details) {
		d.PurchaseOrderId = id
		if err := tx.Create(d).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetPurchaseOrder(ctx, id)
}

// UpdatePurchaseOrderStatus moves the order forward. Reaching Delivered restocks
// every line in the same transaction.
func UpdatePurchaseOrderStatus(ctx context.Context, id int, status PurchaseOrderStatus) (*PurchaseOrder, error) {
	if !status.IsValid() {
		return nil, utils.Errorf(utils.ErrInvalidInput, "invalid status %q", status)
	}
	var changes []*StockChange
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	po, err := lockPurchaseOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !po.CurrentStatus.CanTransitionTo(status) {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrInvalidStatusTransition, "%s to %s", po.CurrentStatus, status)
	}

	updates := map[string]interface{}{"CurrentStatus": status}
	if status == PurchaseOrderStatusDelivered {
		updates["DeliveredAt"] = time.Now().UTC()
	}
	if err := setPurchaseOrderStatusTx(tx, po.ID, po.CurrentStatus, updates); err != nil {
		tx.Rollback()
		return nil, err
	}
	if status == PurchaseOrderStatusDelivered {
		supplierId := po.SupplierId
		for _, d := range po.Details {
			change, err := applyStockMutation(ctx, tx, stockMutation{
				productId:    d.ProductId,
				delta:        d.Quantity,
				supplierId:   &supplierId,
				movementType: StockMovementTypePurchaseOrder,
				reason:       fmt.Sprintf("purchase order %d delivered", po.ID),
				referenceId:  po.ID,
			})
			if err != nil {
				tx.Rollback()
				return nil, err
			}
			changes = append(changes, change)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	notifyLowStock(ctx, changes)
	return GetPurchaseOrder(ctx, id)
}

// DeletePurchaseOrder only removes Pending orders.
func DeletePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	po, err := lockPurchaseOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if po.CurrentStatus != PurchaseOrderStatusPending {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrInvalidStatusTransition, "only pending purchase orders can be deleted")
	}
	if err := tx.Where("purchase_order_id = ?", id).Delete(&PurchaseOrderDetail{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(&PurchaseOrder{ID: id}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return po, tx.Commit().Error
}
