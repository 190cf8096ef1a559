package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Sale struct {
	ID             int             `gorm:"primary_key" json:"id"`
	EmployeeId     int             `gorm:"index;not null" json:"cashier_id"`
	CustomerId     *int            `gorm:"index" json:"customer_id"`
	DiscountId     *int            `gorm:"index" json:"discount_id"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_amount"`
	SaleDate       time.Time       `gorm:"not null;index" json:"sale_date"`
	Items          []*SaleItem     `gorm:"foreignKey:SaleId;constraint:OnDelete:CASCADE" json:"items"`
	Payments       []*Payment      `gorm:"foreignKey:SaleId;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"index;not null" json:"sale_id"`
	SeqNo     int             `gorm:"not null" json:"seq_no"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null;check:chk_sale_items_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
}

type Payment struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	SaleId               int             `gorm:"index;not null" json:"sale_id"`
	Method               PaymentMethod   `gorm:"size:20;not null" json:"method"`
	Amount               decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Status               PaymentStatus   `gorm:"size:20;not null;default:Completed" json:"status"`
	TransactionReference string          `gorm:"size:100" json:"transaction_reference"`
	PaymentDate          time.Time       `gorm:"not null" json:"payment_date"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSaleItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewSale struct {
	// user id of the cashier, taken from the caller's token
	CashierId  int            `json:"-"`
	CustomerId *int           `json:"customer_id"`
	Items      []*NewSaleItem `json:"items"`
	DiscountId *int           `json:"discount_id"`
	SaleDate   *time.Time     `json:"sale_date"`

	// Optional client key; a retried checkout returns the sale it first created.
	IdempotencyKey string `json:"-"`
}

type NewPayment struct {
	Method               PaymentMethod   `json:"method" binding:"required"`
	Amount               decimal.Decimal `json:"amount"`
	Status               PaymentStatus   `json:"status"`
	TransactionReference string          `json:"transaction_reference" binding:"max=100"`
}

type SaleFilter struct {
	Start      *time.Time
	End        *time.Time
	EmployeeId int
	CustomerId int
	Skip       int
	Limit      int
}

// saleTotals applies the discount to the subtotal of eligible items only.
func saleTotals(items []*SaleItem, discount *Discount) (subtotal, discountAmount, total decimal.Decimal) {
	base := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
		if discount != nil && discount.Applies(item.ProductId) {
			base = base.Add(item.Subtotal)
		}
	}
	if discount != nil {
		discountAmount = DiscountAmount(base, discount.Rule())
	}
	return subtotal, discountAmount, subtotal.Sub(discountAmount)
}

func buildSaleItems(input []*NewSaleItem) ([]*SaleItem, error) {
	items := make([]*SaleItem, 0, len(input))
	for i, in := range input {
		if in == nil {
			return nil, utils.Errorf(utils.ErrInvalidInput, "item %d is empty", i+1)
		}
		subtotal, err := ComputeSubtotal(in.UnitPrice, in.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, &SaleItem{
			SeqNo:     i + 1,
			ProductId: in.ProductId,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		})
	}
	return items, nil
}

func loadActiveDiscountTx(tx *gorm.DB, id *int) (*Discount, error) {
	if id == nil {
		return nil, nil
	}
	discount, err := getDiscountTx(tx, *id)
	if err != nil {
		return nil, err
	}
	if !utils.DereferencePtr(discount.IsActive, true) {
		return nil, utils.Errorf(utils.ErrInvalidInput, "discount %d is not active", *id)
	}
	return discount, nil
}

func awardLoyaltyTx(tx *gorm.DB, customerId *int, previousTotal decimal.Decimal, newTotal decimal.Decimal) error {
	if customerId == nil {
		return nil
	}
	rate := config.GetLedgerSettings().LoyaltyPointsPerUnit
	before, err := LoyaltyPointsAtRate(previousTotal, rate)
	if err != nil {
		return err
	}
	after, err := LoyaltyPointsAtRate(newTotal, rate)
	if err != nil {
		return err
	}
	return addLoyaltyPointsTx(tx, *customerId, after-before)
}

// CreateSale records a sale with its items and the customer's loyalty points in one transaction.
// The cashier must already have an employee record.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	if len(input.Items) == 0 {
		return nil, utils.ErrEmptyItemList
	}
	items, err := buildSaleItems(input.Items)
	if err != nil {
		return nil, err
	}
	saleDate := time.Now().UTC()
	if input.SaleDate != nil {
		saleDate = input.SaleDate.UTC()
	}

	var saleId int
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.IdempotencyKey != "" {
			existing, err := findIdempotentReferenceTx(tx, idempotencyScopeSale, input.CashierId, input.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing > 0 {
				saleId = existing
				return nil
			}
		}
		employee, err := getEmployeeByUserTx(tx, input.CashierId)
		if err != nil {
			return err
		}
		if input.CustomerId != nil {
			if err := utils.ValidateResourceId[Customer](tx, *input.CustomerId, utils.ErrCustomerNotFound); err != nil {
				return err
			}
		}
		discount, err := loadActiveDiscountTx(tx, input.DiscountId)
		if err != nil {
			return err
		}
		productIds := make([]int, 0, len(items))
		for _, item := range items {
			productIds = append(productIds, item.ProductId)
		}
		if err := utils.ValidateResourcesId[Product](tx, productIds, utils.ErrProductNotFound); err != nil {
			return err
		}

		subtotal, discountAmount, total := saleTotals(items, discount)
		sale := Sale{
			EmployeeId:     employee.ID,
			CustomerId:     input.CustomerId,
			DiscountId:     input.DiscountId,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
			TotalAmount:    total,
			SaleDate:       saleDate,
			Items:          items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		saleId = sale.ID
		if input.IdempotencyKey != "" {
			if err := saveIdempotencyKeyTx(tx, idempotencyScopeSale, input.CashierId, input.IdempotencyKey, sale.ID); err != nil {
				return utils.TranslateDBError(err, "sale with this idempotency key is already in progress")
			}
		}
		return awardLoyaltyTx(tx, input.CustomerId, decimal.Zero, total)
	})
	if err != nil {
		return nil, err
	}
	return GetSale(ctx, saleId)
}

// AddSaleItem appends an item and recomputes the sale totals with the sale's discount.
// Once completed payments cover the total only a manager or admin may add items.
func AddSaleItem(ctx context.Context, saleId int, input *NewSaleItem) (*Sale, error) {
	items, err := buildSaleItems([]*NewSaleItem{input})
	if err != nil {
		return nil, err
	}
	item := items[0]

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale Sale
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, saleId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrSaleNotFound
		}
		if err != nil {
			return err
		}
		if !IsManagerContext(ctx) {
			paid, err := completedPaymentsTx(tx, saleId)
			if err != nil {
				return err
			}
			if paid.IsPositive() && paid.GreaterThanOrEqual(sale.TotalAmount) {
				return utils.Errorf(utils.ErrSaleFullyPaid, "sale %d is fully paid; only a manager can correct it", saleId)
			}
		}
		if err := utils.ValidateResourceId[Product](tx, item.ProductId, utils.ErrProductNotFound); err != nil {
			return err
		}
		var existing []*SaleItem
		if err := tx.Where("sale_id = ?", saleId).Order("seq_no").Find(&existing).Error; err != nil {
			return err
		}
		item.SaleId = saleId
		item.SeqNo = len(existing) + 1
		if n := len(existing); n > 0 && existing[n-1].SeqNo >= item.SeqNo {
			item.SeqNo = existing[n-1].SeqNo + 1
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}

		var discount *Discount
		if sale.DiscountId != nil {
			discount, err = getDiscountTx(tx, *sale.DiscountId)
			if err != nil {
				return err
			}
		}
		subtotal, discountAmount, total := saleTotals(append(existing, item), discount)
		err = tx.Model(&sale).Updates(map[string]interface{}{
			"Subtotal":       subtotal,
			"DiscountAmount": discountAmount,
			"TotalAmount":    total,
		}).Error
		if err != nil {
			return err
		}
		return awardLoyaltyTx(tx, sale.CustomerId, sale.TotalAmount, total)
	})
	if err != nil {
		return nil, err
	}
	return GetSale(ctx, saleId)
}

func completedPaymentsTx(tx *gorm.DB, saleId int) (decimal.Decimal, error) {
	var row struct {
		Paid decimal.Decimal
	}
	err := tx.Model(&Payment{}).
		Select("COALESCE(SUM(amount), 0) AS paid").
		Where("sale_id = ? AND status = ?", saleId, PaymentStatusCompleted).
		Scan(&row).Error
	return row.Paid, err
}

// AddPayment records a payment against a sale. Amounts are not checked against the sale balance.
func AddPayment(ctx context.Context, saleId int, input *NewPayment) (*Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}
	if !input.Method.IsValid() {
		return nil, utils.Errorf(utils.ErrInvalidInput, "invalid payment method %q", input.Method)
	}
	status := input.Status
	if status == "" {
		status = PaymentStatusCompleted
	}
	if !status.IsValid() {
		return nil, utils.Errorf(utils.ErrInvalidInput, "invalid payment status %q", status)
	}
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateResourceId[Sale](db, saleId, utils.ErrSaleNotFound); err != nil {
		return nil, err
	}
	payment := Payment{
		SaleId:               saleId,
		Method:               input.Method,
		Amount:               input.Amount,
		Status:               status,
		TransactionReference: input.TransactionReference,
		PaymentDate:          time.Now().UTC(),
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func UpdatePaymentStatus(ctx context.Context, paymentId int, status PaymentStatus) (*Payment, error) {
	if !status.IsValid() {
		return nil, utils.Errorf(utils.ErrInvalidInput, "invalid payment status %q", status)
	}
	payment, err := utils.FetchModel[Payment](ctx, paymentId, utils.ErrPaymentNotFound)
	if err != nil {
		return nil, err
	}
	if !payment.Status.CanTransitionTo(status) {
		return nil, utils.Errorf(utils.ErrInvalidStatusTransition, "payment %s to %s", payment.Status, status)
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(payment).Update("Status", status).Error; err != nil {
		return nil, err
	}
	payment.Status = status
	return payment, nil
}

// VoidSale hard-deletes the sale with its items and payments. Loyalty points already awarded stay.
func VoidSale(ctx context.Context, saleId int) (*Sale, error) {
	sale, err := GetSale(ctx, saleId)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("sale_id = ?", saleId).Delete(&Payment{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("sale_id = ?", saleId).Delete(&SaleItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	result := tx.Delete(&Sale{}, saleId)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrSaleNotFound
	}
	return sale, tx.Commit().Error
}

func preloadSaleItems(db *gorm.DB) *gorm.DB {
	return db.Order("seq_no")
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	db := config.GetDB()
	var sale Sale
	err := db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func GetSaleItems(ctx context.Context, saleId int) ([]*SaleItem, error) {
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateResourceId[Sale](db, saleId, utils.ErrSaleNotFound); err != nil {
		return nil, err
	}
	var results []*SaleItem
	if err := db.Where("sale_id = ?", saleId).Order("seq_no").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetSalePayments(ctx context.Context, saleId int) ([]*Payment, error) {
	db := config.GetDB().WithContext(ctx)
	if err := utils.ValidateResourceId[Sale](db, saleId, utils.ErrSaleNotFound); err != nil {
		return nil, err
	}
	var results []*Payment
	if err := db.Where("sale_id = ?", saleId).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return nil, utils.ErrInvalidRange
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items", preloadSaleItems)
	if filter.Start != nil {
		dbCtx = dbCtx.Where("sale_date >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		dbCtx = dbCtx.Where("sale_date <= ?", filter.End.UTC())
	}
	if filter.EmployeeId > 0 {
		dbCtx = dbCtx.Where("employee_id = ?", filter.EmployeeId)
	}
	if filter.CustomerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", filter.CustomerId)
	}
	var results []*Sale
	if err := dbCtx.Scopes(utils.Paginate(filter.Skip, filter.Limit)).Order("sale_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
