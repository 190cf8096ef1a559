package models

import (
	"encoding/json"
	"errors"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "Percentage"
	DiscountTypeFixedAmount DiscountType = "FixedAmount"
)

func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixedAmount:
		return true
	}
	return false
}

// convert input to enum type
func (t *DiscountType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("discount type must be string")
	}
	if !DiscountType(str).IsValid() {
		return errors.New("invalid discount type")
	}
	*t = DiscountType(str)
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "Cash"
	PaymentMethodCreditCard    PaymentMethod = "CreditCard"
	PaymentMethodDebitCard     PaymentMethod = "DebitCard"
	PaymentMethodDigitalWallet PaymentMethod = "DigitalWallet"
	PaymentMethodBankTransfer  PaymentMethod = "BankTransfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodDigitalWallet, PaymentMethodBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo allows Pending -> Completed|Failed and Completed -> Refunded.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	}
	return false
}

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "Pending"
	PurchaseOrderStatusShipped   PurchaseOrderStatus = "Shipped"
	PurchaseOrderStatusDelivered PurchaseOrderStatus = "Delivered"
)

// rank orders the statuses; unknown statuses rank 0
func (s PurchaseOrderStatus) rank() int {
	switch s {
	case PurchaseOrderStatusPending:
		return 1
	case PurchaseOrderStatusShipped:
		return 2
	case PurchaseOrderStatusDelivered:
		return 3
	}
	return 0
}

func (s PurchaseOrderStatus) IsValid() bool {
	return s.rank() > 0
}

// CanTransitionTo only moves forward: Pending -> Shipped -> Delivered.
// Skipping Shipped is allowed, staying or going back is not.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	return s.IsValid() && next.IsValid() && next.rank() > s.rank()
}

type StockMovementType string

const (
	StockMovementTypeRestock       StockMovementType = "Restock"
	StockMovementTypeAdjustment    StockMovementType = "Adjustment"
	StockMovementTypePurchaseOrder StockMovementType = "PurchaseOrder"
)

type NotificationType string

const (
	NotificationTypeLowStock NotificationType = "LowStock"
	NotificationTypeGeneral  NotificationType = "General"
)

type LoyaltyTier string

const (
	LoyaltyTierBronze   LoyaltyTier = "Bronze"
	LoyaltyTierSilver   LoyaltyTier = "Silver"
	LoyaltyTierGold     LoyaltyTier = "Gold"
	LoyaltyTierPlatinum LoyaltyTier = "Platinum"
)

// TierForPoints: Bronze < 500 <= Silver < 2000 <= Gold < 5000 <= Platinum
func TierForPoints(points int) LoyaltyTier {
	switch {
	case points >= 5000:
		return LoyaltyTierPlatinum
	case points >= 2000:
		return LoyaltyTierGold
	case points >= 500:
		return LoyaltyTierSilver
	}
	return LoyaltyTierBronze
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleUser    = "user"
)
