package config

import (
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerSettings holds the defaults used by stock and loyalty bookkeeping.
type LedgerSettings struct {
	DefaultReorderLevel  int
	LoyaltyPointsPerUnit decimal.Decimal
	LoyaltyWindowDays    int
}

// AuthSettings configures token issuing.
type AuthSettings struct {
	Secret             []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

var ledgerOverride *LedgerSettings

// GetLedgerSettings reads:
// - DEFAULT_REORDER_LEVEL (default 10)
// - LOYALTY_POINTS_PER_UNIT (default 1)
// - LOYALTY_WINDOW_DAYS (default 365)
func GetLedgerSettings() LedgerSettings {
	if ledgerOverride != nil {
		return *ledgerOverride
	}
	rate := decimal.NewFromInt(1)
	if v := strings.TrimSpace(os.Getenv("LOYALTY_POINTS_PER_UNIT")); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			rate = d
		}
	}
	reorder := intFromEnv("DEFAULT_REORDER_LEVEL", 10)
	if reorder < 0 {
		reorder = 10
	}
	window := intFromEnv("LOYALTY_WINDOW_DAYS", 365)
	if window <= 0 {
		window = 365
	}
	return LedgerSettings{
		DefaultReorderLevel:  reorder,
		LoyaltyPointsPerUnit: rate,
		LoyaltyWindowDays:    window,
	}
}

// SetLedgerSettings pins the ledger settings; nil restores env lookup.
func SetLedgerSettings(s *LedgerSettings) {
	ledgerOverride = s
}

// GetAuthSettings reads API_SECRET, ACCESS_TOKEN_EXPIRE_MINUTES (30) and REFRESH_TOKEN_EXPIRE_DAYS (7).
func GetAuthSettings() AuthSettings {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		secret = "pos-backend-dev-secret"
	}
	return AuthSettings{
		Secret:             []byte(secret),
		AccessTokenExpiry:  time.Duration(intFromEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenExpiry: time.Duration(intFromEnv("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
	}
}

// IsProduction is true when GO_ENV=production.
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

func EnvEnabled(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// CountryCode is the default region for phone number validation.
func CountryCode() string {
	if v := strings.TrimSpace(os.Getenv("COUNTRY_CODE")); v != "" {
		return strings.ToUpper(v)
	}
	return "US"
}
