package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID            int         `gorm:"primary_key" json:"id"`
	Name          string      `gorm:"size:100;not null;index" json:"name"`
	ContactInfo   string      `gorm:"size:100;not null" json:"contact_info"`
	LoyaltyPoints int         `gorm:"not null;default:0;check:chk_customers_loyalty_points,loyalty_points >= 0" json:"loyalty_points"`
	LoyaltyTier   LoyaltyTier `gorm:"-" json:"loyalty_tier"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name        string `json:"name" binding:"required,max=100"`
	ContactInfo string `json:"contact_info" binding:"required,min=5,max=100"`
}

// PurchaseHistory summarises a customer's sales inside a trailing window.
type PurchaseHistory struct {
	CustomerId     int             `json:"customer_id"`
	Days           int             `json:"days"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalPurchases int             `json:"total_purchases"`
	LastPurchase   *time.Time      `json:"last_purchase_date"`
}

func (c *Customer) AfterFind(tx *gorm.DB) error {
	c.LoyaltyTier = TierForPoints(c.LoyaltyPoints)
	return nil
}

func (input *NewCustomer) validate() error {
	contact, err := utils.ValidateContactInfo(input.ContactInfo)
	if err != nil {
		return err
	}
	input.ContactInfo = contact
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	customer := Customer{
		Name:        input.Name,
		ContactInfo: input.ContactInfo,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	customer.LoyaltyTier = TierForPoints(customer.LoyaltyPoints)
	return &customer, nil
}

// UpdateCustomer changes name and contact only; loyalty points move through purchases.
func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":        input.Name,
		"ContactInfo": input.ContactInfo,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetCustomer(ctx, id)
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id, utils.ErrCustomerNotFound)
}

func ListCustomers(ctx context.Context, skip int, limit int) ([]*Customer, error) {
	db := config.GetDB()
	var results []*Customer
	if err := db.WithContext(ctx).Scopes(utils.Paginate(skip, limit)).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func SearchCustomers(ctx context.Context, name string) ([]*Customer, error) {
	db := config.GetDB()
	var results []*Customer
	err := db.WithContext(ctx).Where("name LIKE ?", "%"+name+"%").
		Order("name").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Don't delete if the customer has sales
func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	count, err := utils.ResourceCountWhere[Sale](tx, "customer_id = ?", id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, utils.Errorf(utils.ErrConflict, "customer has sales")
	}
	if err := tx.Delete(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return customer, tx.Commit().Error
}

func AddLoyaltyPoints(ctx context.Context, id int, points int) (*Customer, error) {
	if points <= 0 {
		return nil, utils.Errorf(utils.ErrInvalidInput, "points must be greater than zero")
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addLoyaltyPointsTx(tx, id, points)
	})
	if err != nil {
		return nil, err
	}
	return GetCustomer(ctx, id)
}

func addLoyaltyPointsTx(tx *gorm.DB, id int, points int) error {
	if points <= 0 {
		return nil
	}
	result := tx.Model(&Customer{}).Where("id = ?", id).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrCustomerNotFound
	}
	return nil
}

// GetPurchaseHistory covers the trailing `days` days; days <= 0 uses the configured loyalty window.
func GetPurchaseHistory(ctx context.Context, id int, days int) (*PurchaseHistory, error) {
	if _, err := GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = config.GetLedgerSettings().LoyaltyWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var row struct {
		TotalSpent     decimal.Decimal
		TotalPurchases int
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_spent, COUNT(*) AS total_purchases").
		Where("customer_id = ? AND sale_date >= ?", id, since).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	history := &PurchaseHistory{
		CustomerId:     id,
		Days:           days,
		TotalSpent:     row.TotalSpent,
		TotalPurchases: row.TotalPurchases,
	}
	if row.TotalPurchases > 0 {
		var last Sale
		err := db.WithContext(ctx).Where("customer_id = ? AND sale_date >= ?", id, since).
			Order("sale_date DESC").First(&last).Error
		if err != nil {
			return nil, err
		}
		history.LastPurchase = &last.SaleDate
	}
	return history, nil
}

func GetCustomerSales(ctx context.Context, id int) ([]*Sale, error) {
	if _, err := GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	return ListSales(ctx, SaleFilter{CustomerId: id})
}
