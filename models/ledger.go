package models

import (
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountRule is the part of a Discount the arithmetic needs.
type DiscountRule struct {
	Type  DiscountType
	Value decimal.Decimal
}

// ComputeSubtotal returns unitPrice * quantity without rounding.
func ComputeSubtotal(unitPrice decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, utils.ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return decimal.Zero, utils.ErrInvalidPrice
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// ApplyDiscount returns the amount left after the discount.
// Fixed amounts are clamped so the result is never negative; unknown types discount nothing.
func ApplyDiscount(amount decimal.Decimal, d DiscountRule) decimal.Decimal {
	switch d.Type {
	case DiscountTypePercentage:
		return amount.Sub(amount.Mul(d.Value).Div(hundred))
	case DiscountTypeFixedAmount:
		return amount.Sub(decimal.Min(d.Value, amount))
	default:
		return amount
	}
}

func DiscountAmount(amount decimal.Decimal, d DiscountRule) decimal.Decimal {
	return amount.Sub(ApplyDiscount(amount, d))
}

// LoyaltyPointsFor awards one point per whole currency unit.
func LoyaltyPointsFor(amount decimal.Decimal) (int, error) {
	return LoyaltyPointsAtRate(amount, decimal.NewFromInt(1))
}

func LoyaltyPointsAtRate(amount decimal.Decimal, rate decimal.Decimal) (int, error) {
	if amount.IsNegative() {
		return 0, utils.ErrInvalidAmount
	}
	if rate.IsNegative() {
		return 0, utils.Errorf(utils.ErrInvalidInput, "negative loyalty rate")
	}
	return int(amount.Mul(rate).Floor().IntPart()), nil
}
