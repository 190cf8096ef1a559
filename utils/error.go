package utils

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindNotFound               ErrorKind = "NotFound"
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindNegativeResultingStock ErrorKind = "NegativeResultingStock"
	KindEmptyItemList          ErrorKind = "EmptyItemList"
	KindInvalidRange           ErrorKind = "InvalidRange"
	KindInvalidDateFormat      ErrorKind = "InvalidDateFormat"
	KindConflict               ErrorKind = "Conflict"
	KindUnauthorized           ErrorKind = "Unauthorized"
	KindForbidden              ErrorKind = "Forbidden"
)

// Error is a domain error carrying a kind the HTTP layer maps to a status code.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches the exact sentinel a wrapped error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.cause != nil && e.cause == t)
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf derives a new error from a sentinel with extra detail;
// errors.Is(result, sentinel) stays true.
func Errorf(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message + ": " + fmt.Sprintf(format, args...),
		cause:   sentinel,
	}
}

var ErrorRecordNotFound = NewError(KindNotFound, "record not found")

var (
	ErrInvalidInput            = NewError(KindInvalidInput, "invalid input")
	ErrInvalidQuantity         = NewError(KindInvalidInput, "quantity must be greater than zero")
	ErrInvalidPrice            = NewError(KindInvalidInput, "unit price must be greater than zero")
	ErrInvalidAmount           = NewError(KindInvalidInput, "invalid amount")
	ErrInvalidStatusTransition = NewError(KindInvalidInput, "invalid status transition")
	ErrNegativeResultingStock  = NewError(KindNegativeResultingStock, "stock adjustment would result in negative inventory")
	ErrEmptyItemList           = NewError(KindEmptyItemList, "items must not be empty")
	ErrInvalidRange            = NewError(KindInvalidRange, "start date must not be after end date")
	ErrInvalidDateFormat       = NewError(KindInvalidDateFormat, "invalid date format")
	ErrConflict                = NewError(KindConflict, "resource already exists")
	ErrUnauthorized            = NewError(KindUnauthorized, "could not validate credentials")
	ErrForbidden               = NewError(KindForbidden, "not enough permissions")
	ErrSaleFullyPaid           = NewError(KindConflict, "sale is fully paid")

	ErrProductNotFound       = NewError(KindNotFound, "product not found")
	ErrInventoryNotFound     = NewError(KindNotFound, "inventory not found")
	ErrSaleNotFound          = NewError(KindNotFound, "sale not found")
	ErrPaymentNotFound       = NewError(KindNotFound, "payment not found")
	ErrCustomerNotFound      = NewError(KindNotFound, "customer not found")
	ErrEmployeeNotFound      = NewError(KindNotFound, "employee not found")
	ErrSupplierNotFound      = NewError(KindNotFound, "supplier not found")
	ErrPurchaseOrderNotFound = NewError(KindNotFound, "purchase order not found")
	ErrDiscountNotFound      = NewError(KindNotFound, "discount not found")
	ErrUserNotFound          = NewError(KindNotFound, "user not found")
	ErrRoleNotFound          = NewError(KindNotFound, "role not found")
	ErrSettingNotFound       = NewError(KindNotFound, "setting not found")
)

// KindOf returns the domain kind of err, or "" for unexpected failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// TranslateDBError maps duplicate-key and check-constraint failures to domain errors.
// Anything else is returned unchanged.
func TranslateDBError(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Errorf(ErrConflict, "%s", conflictMsg)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return Errorf(ErrConflict, "%s", conflictMsg)
		case 3819:
			// CHECK constraint violated
			return ErrNegativeResultingStock
		}
	}
	return err
}
