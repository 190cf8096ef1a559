package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	Category    string          `gorm:"size:100;index" json:"category"`
	DiscountId  *int            `gorm:"index" json:"discount_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"max=100"`
	DiscountId  *int            `json:"discount_id"`
}

type ProductFilter struct {
	Search   string
	Category string
	Skip     int
	Limit    int
}

// validate input for both create & update
func (input *NewProduct) validate(ctx context.Context) error {
	if input.Name == "" {
		return utils.Errorf(utils.ErrInvalidInput, "product name is required")
	}
	if input.Price.IsNegative() {
		return utils.Errorf(utils.ErrInvalidInput, "price must not be negative")
	}
	if input.DiscountId != nil {
		db := config.GetDB().WithContext(ctx)
		if err := utils.ValidateResourceId[Discount](db, *input.DiscountId, utils.ErrDiscountNotFound); err != nil {
			return err
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	product := Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		DiscountId:  input.DiscountId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	product, err := GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
		"Price":       input.Price,
		"Category":    input.Category,
		"DiscountId":  input.DiscountId,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetProduct(ctx, id)
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id, utils.ErrProductNotFound)
}

func ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Product{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if filter.Category != "" {
		dbCtx = dbCtx.Where("category = ?", filter.Category)
	}
	var results []*Product
	if err := dbCtx.Scopes(utils.Paginate(filter.Skip, filter.Limit)).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteProduct refuses while inventory, sale items or purchase order lines reference the product.
func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	product, err := GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	references := []struct {
		count func() (int64, error)
		name  string
	}{
		{func() (int64, error) { return utils.ResourceCountWhere[Inventory](tx, "product_id = ?", id) }, "inventory"},
		{func() (int64, error) { return utils.ResourceCountWhere[SaleItem](tx, "product_id = ?", id) }, "sales"},
		{func() (int64, error) { return utils.ResourceCountWhere[PurchaseOrderDetail](tx, "product_id = ?", id) }, "purchase orders"},
		{func() (int64, error) { return utils.ResourceCountWhere[DiscountProduct](tx, "product_id = ?", id) }, "discounts"},
	}
	for _, ref := range references {
		count, err := ref.count()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if count > 0 {
			tx.Rollback()
			return nil, utils.Errorf(utils.ErrConflict, "product is referenced by %s", ref.name)
		}
	}
	if err := tx.Delete(product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return product, tx.Commit().Error
}
