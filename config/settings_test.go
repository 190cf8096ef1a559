package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGetLedgerSettings(t *testing.T) {
	t.Setenv("DEFAULT_REORDER_LEVEL", "")
	t.Setenv("LOYALTY_POINTS_PER_UNIT", "")
	t.Setenv("LOYALTY_WINDOW_DAYS", "")
	s := GetLedgerSettings()
	if s.DefaultReorderLevel != 10 || !s.LoyaltyPointsPerUnit.Equal(decimal.NewFromInt(1)) || s.LoyaltyWindowDays != 365 {
		t.Fatalf("unexpected defaults %+v", s)
	}

	t.Setenv("DEFAULT_REORDER_LEVEL", "25")
	t.Setenv("LOYALTY_POINTS_PER_UNIT", "0.5")
	t.Setenv("LOYALTY_WINDOW_DAYS", "90")
	s = GetLedgerSettings()
	if s.DefaultReorderLevel != 25 || !s.LoyaltyPointsPerUnit.Equal(decimal.RequireFromString("0.5")) || s.LoyaltyWindowDays != 90 {
		t.Fatalf("env overrides ignored: %+v", s)
	}

	// invalid values fall back
	t.Setenv("LOYALTY_POINTS_PER_UNIT", "-2")
	t.Setenv("LOYALTY_WINDOW_DAYS", "0")
	s = GetLedgerSettings()
	if !s.LoyaltyPointsPerUnit.Equal(decimal.NewFromInt(1)) || s.LoyaltyWindowDays != 365 {
		t.Fatalf("invalid values should fall back: %+v", s)
	}

	pinned := LedgerSettings{DefaultReorderLevel: 3, LoyaltyPointsPerUnit: decimal.NewFromInt(2), LoyaltyWindowDays: 7}
	SetLedgerSettings(&pinned)
	defer SetLedgerSettings(nil)
	if got := GetLedgerSettings(); got.DefaultReorderLevel != 3 || got.LoyaltyWindowDays != 7 {
		t.Fatalf("pinned settings ignored: %+v", got)
	}
}

func TestGetAuthSettings(t *testing.T) {
	t.Setenv("API_SECRET", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "2")
	s := GetAuthSettings()
	if len(s.Secret) == 0 {
		t.Fatalf("a development secret should be used when API_SECRET is empty")
	}
	if s.AccessTokenExpiry != 30*time.Minute || s.RefreshTokenExpiry != 48*time.Hour {
		t.Fatalf("unexpected expiries %s %s", s.AccessTokenExpiry, s.RefreshTokenExpiry)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	if backoff(1) != 2*time.Second {
		t.Fatalf("unexpected first backoff %s", backoff(1))
	}
	if backoff(10) != 30*time.Second {
		t.Fatalf("backoff should cap at 30s, got %s", backoff(10))
	}
}
