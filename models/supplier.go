package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
)

type Supplier struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	ContactInfo string    `gorm:"size:100;not null;uniqueIndex" json:"contact_info"`
	Address     string    `gorm:"type:text" json:"address"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name        string `json:"name" binding:"required,max=100"`
	ContactInfo string `json:"contact_info" binding:"required,max=100"`
	Address     string `json:"address"`
	IsActive    *bool  `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
// contact info is normalised in place.
func (input *NewSupplier) validate(ctx context.Context, id int) error {
	contact, err := utils.ValidateContactInfo(input.ContactInfo)
	if err != nil {
		return err
	}
	input.ContactInfo = contact
	db := config.GetDB().WithContext(ctx)
	return utils.ValidateUnique[Supplier](db, "contact_info", input.ContactInfo, id)
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	supplier := Supplier{
		Name:        input.Name,
		ContactInfo: input.ContactInfo,
		Address:     input.Address,
		IsActive:    input.IsActive,
	}
	if supplier.IsActive == nil {
		supplier.IsActive = utils.NewTrue()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, utils.TranslateDBError(err, "supplier contact info already exists")
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	supplier, err := GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"Name":        input.Name,
		"ContactInfo": input.ContactInfo,
		"Address":     input.Address,
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(supplier).Updates(updates).Error; err != nil {
		return nil, utils.TranslateDBError(err, "supplier contact info already exists")
	}
	return GetSupplier(ctx, id)
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id, utils.ErrSupplierNotFound)
}

func ListSuppliers(ctx context.Context, name string, skip int, limit int) ([]*Supplier, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Supplier{})
	if name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+name+"%")
	}
	var results []*Supplier
	if err := dbCtx.Scopes(utils.Paginate(skip, limit)).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Don't delete if used in purchase orders or as an inventory source
func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	supplier, err := GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	count, err := utils.ResourceCountWhere[PurchaseOrder](tx, "supplier_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "supplier has purchase orders")
	}
	count, err = utils.ResourceCountWhere[Inventory](tx, "supplier_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "supplier is referenced by inventory")
	}
	if err := tx.Delete(supplier).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return supplier, tx.Commit().Error
}
