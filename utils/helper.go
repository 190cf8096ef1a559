package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/pos_backend/config"
	"github.com/ttacon/libphonenumber"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateContactInfo accepts an email address or a phone number valid for the configured country.
// Phone numbers are returned in E.164 so duplicates compare equal.
func ValidateContactInfo(contact string) (string, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return "", Errorf(ErrInvalidInput, "contact info is required")
	}
	if strings.Contains(contact, "@") {
		if !IsValidEmail(contact) {
			return "", Errorf(ErrInvalidInput, "invalid email %q", contact)
		}
		return strings.ToLower(contact), nil
	}
	p, err := libphonenumber.Parse(contact, config.CountryCode())
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return "", Errorf(ErrInvalidInput, "invalid phone number %q", contact)
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// ProcessValidationErrors flattens binding errors into field -> failed tag.
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["body"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	var result []T
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// WithLock runs fn while holding a redis lock on key.
// Without redis (tests, single instance) fn runs unguarded.
func WithLock(ctx context.Context, key string, ttl time.Duration, moduleName string, functionName string, fn func() error) error {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return fn()
	}
	lock, err := locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(500*time.Millisecond), int(ttl/(500*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock", key, err)
		return fmt.Errorf("could not obtain lock %s", key)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock", key, err)
		return err
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()
	return fn()
}
