package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Discount struct {
	ID                 int                `gorm:"primary_key" json:"id"`
	Name               string             `gorm:"size:100;not null" json:"name"`
	Type               DiscountType       `gorm:"size:20;not null" json:"type"`
	Value              decimal.Decimal    `gorm:"type:decimal(20,4);not null;default:0" json:"value"`
	IsActive           *bool              `gorm:"not null;default:true" json:"is_active"`
	ApplicableProducts []*DiscountProduct `gorm:"foreignKey:DiscountId;constraint:OnDelete:CASCADE" json:"-"`
	ProductIds         []int              `gorm:"-" json:"applicable_products"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type DiscountProduct struct {
	ID         int `gorm:"primary_key" json:"id"`
	DiscountId int `gorm:"index;not null" json:"discount_id"`
	ProductId  int `gorm:"index;not null" json:"product_id"`
}

type NewDiscount struct {
	Name               string          `json:"name" binding:"required,max=100"`
	Type               DiscountType    `json:"type" binding:"required"`
	Value              decimal.Decimal `json:"value"`
	IsActive           *bool           `json:"is_active"`
	ApplicableProducts []int           `json:"applicable_products"`
}

func (d *Discount) Rule() DiscountRule {
	return DiscountRule{Type: d.Type, Value: d.Value}
}

// Applies reports whether productId is eligible; an empty list means every product.
func (d *Discount) Applies(productId int) bool {
	if len(d.ProductIds) == 0 {
		return true
	}
	for _, id := range d.ProductIds {
		if id == productId {
			return true
		}
	}
	return false
}

func (d *Discount) AfterFind(tx *gorm.DB) error {
	d.ProductIds = make([]int, 0, len(d.ApplicableProducts))
	for _, p := range d.ApplicableProducts {
		d.ProductIds = append(d.ProductIds, p.ProductId)
	}
	return nil
}

func (input *NewDiscount) validate(ctx context.Context) error {
	switch input.Type {
	case DiscountTypePercentage:
		if input.Value.IsNegative() || input.Value.GreaterThan(hundred) {
			return utils.Errorf(utils.ErrInvalidInput, "percentage must be between 0 and 100")
		}
	case DiscountTypeFixedAmount:
		if input.Value.IsNegative() {
			return utils.Errorf(utils.ErrInvalidInput, "fixed amount must not be negative")
		}
	default:
		return utils.Errorf(utils.ErrInvalidInput, "invalid discount type %q", input.Type)
	}
	db := config.GetDB().WithContext(ctx)
	return utils.ValidateResourcesId[Product](db, input.ApplicableProducts, utils.ErrProductNotFound)
}

func mapDiscountProducts(productIds []int) []*DiscountProduct {
	var results []*DiscountProduct
	for _, id := range utils.UniqueSlice(productIds) {
		results = append(results, &DiscountProduct{ProductId: id})
	}
	return results
}

func CreateDiscount(ctx context.Context, input *NewDiscount) (*Discount, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	discount := Discount{
		Name:               input.Name,
		Type:               input.Type,
		Value:              input.Value,
		IsActive:           input.IsActive,
		ApplicableProducts: mapDiscountProducts(input.ApplicableProducts),
	}
	if discount.IsActive == nil {
		discount.IsActive = utils.NewTrue()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&discount).Error; err != nil {
		return nil, err
	}
	return GetDiscount(ctx, discount.ID)
}

func UpdateDiscount(ctx context.Context, id int, input *NewDiscount) (*Discount, error) {
	discount, err := GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	isActive := discount.IsActive
	if input.IsActive != nil {
		isActive = input.IsActive
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	// full replace of the applicable product list
	if err := tx.Where("discount_id = ?", id).Delete(&DiscountProduct{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, p := range mapDiscountProducts(input.ApplicableProducts) {
		p.DiscountId = id
		if err := tx.Create(p).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	err = tx.Model(&Discount{ID: id}).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Type":     input.Type,
		"Value":    input.Value,
		"IsActive": isActive,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetDiscount(ctx, id)
}

func GetDiscount(ctx context.Context, id int) (*Discount, error) {
	return utils.FetchModel[Discount](ctx, id, utils.ErrDiscountNotFound, "ApplicableProducts")
}

func getDiscountTx(tx *gorm.DB, id int) (*Discount, error) {
	return utils.FetchModelTx[Discount](tx, id, utils.ErrDiscountNotFound, "ApplicableProducts")
}

func ListDiscounts(ctx context.Context, activeOnly bool) ([]*Discount, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("ApplicableProducts")
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	var results []*Discount
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteDiscount refuses while sales or products reference it.
func DeleteDiscount(ctx context.Context, id int) (*Discount, error) {
	discount, err := GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	for _, count := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Sale](tx, "discount_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Product](tx, "discount_id = ?", id) },
	} {
		n, err := count()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if n > 0 {
			tx.Rollback()
			return nil, utils.Errorf(utils.ErrConflict, "discount is in use")
		}
	}
	if err := tx.Where("discount_id = ?", id).Delete(&DiscountProduct{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(&Discount{ID: id}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return discount, tx.Commit().Error
}
