package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const maxLoyaltyTopN = 100

type CustomerLoyaltyEntry struct {
	Customer       *models.Customer `json:"customer"`
	TotalSpent     decimal.Decimal  `json:"total_spent"`
	TotalPurchases int              `json:"total_purchases"`
	LastPurchase   *time.Time       `json:"last_purchase"`
}

type CustomerLoyaltyReportResponse struct {
	PeriodDays           int                     `json:"period_days"`
	TotalCustomers       int64                   `json:"total_customers"`
	ActiveCustomers      int                     `json:"active_customers"`
	AverageCustomerValue decimal.Decimal         `json:"average_customer_value"`
	TopCustomers         []*CustomerLoyaltyEntry `json:"top_customers"`
}

type customerSpend struct {
	CustomerId     int
	TotalSpent     decimal.Decimal
	TotalPurchases int
}

// CustomerLoyaltyReport ranks customers by spend over the loyalty window.
// Customers without purchases in the window only count towards TotalCustomers.
func CustomerLoyaltyReport(ctx context.Context, topN int) (report *CustomerLoyaltyReportResponse, err error) {
	if topN < 1 || topN > maxLoyaltyTopN {
		return nil, utils.Errorf(utils.ErrInvalidInput, "top_n must be between 1 and %d", maxLoyaltyTopN)
	}
	ctx, span := startSpan(ctx, "CustomerLoyaltyReport", attribute.Int("top_n", topN))
	defer func() { endSpan(span, err) }()
	started := time.Now()
	defer logSlowReport(ctx, "CustomerLoyaltyReport", started, map[string]any{"top_n": topN})

	days := config.GetLedgerSettings().LoyaltyWindowDays
	return cached(ctx, cacheKey("CustomerLoyalty", days, topN), func() (*CustomerLoyaltyReportResponse, error) {
		return buildLoyaltyReport(ctx, days, topN)
	})
}

func buildLoyaltyReport(ctx context.Context, days int, topN int) (*CustomerLoyaltyReportResponse, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	db := config.GetDB().WithContext(ctx)

	report := &CustomerLoyaltyReportResponse{
		PeriodDays:           days,
		AverageCustomerValue: decimal.Zero,
		TopCustomers:         []*CustomerLoyaltyEntry{},
	}
	if err := db.Model(&models.Customer{}).Count(&report.TotalCustomers).Error; err != nil {
		return nil, err
	}

	sql := `
SELECT
	customer_id,
	COALESCE(SUM(total_amount), 0) AS total_spent,
	COUNT(*) AS total_purchases
FROM
	sales
WHERE
	customer_id IS NOT NULL
	AND sale_date >= @since
GROUP BY
	customer_id
ORDER BY
	total_spent DESC,
	customer_id ASC`
	var spends []*customerSpend
	if err := db.Raw(sql, map[string]interface{}{"since": since}).Scan(&spends).Error; err != nil {
		return nil, err
	}

	report.ActiveCustomers = len(spends)
	if len(spends) == 0 {
		return report, nil
	}
	total := decimal.Zero
	for _, s := range spends {
		total = total.Add(s.TotalSpent)
	}
	report.AverageCustomerValue = averageOf(total, len(spends))

	if len(spends) > topN {
		spends = spends[:topN]
	}
	ids := make([]int, len(spends))
	for i, s := range spends {
		ids[i] = s.CustomerId
	}

	var customers []*models.Customer
	if err := db.Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, err
	}
	byId := make(map[int]*models.Customer, len(customers))
	for _, c := range customers {
		byId[c.ID] = c
	}

	var recent []*models.Sale
	if err := db.Select("id", "customer_id", "sale_date").
		Where("customer_id IN ? AND sale_date >= ?", ids, since).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	last := make(map[int]time.Time, len(ids))
	for _, s := range recent {
		if s.CustomerId == nil {
			continue
		}
		if t, ok := last[*s.CustomerId]; !ok || s.SaleDate.After(t) {
			last[*s.CustomerId] = s.SaleDate
		}
	}

	for _, s := range spends {
		customer, ok := byId[s.CustomerId]
		if !ok {
			continue
		}
		entry := &CustomerLoyaltyEntry{
			Customer:       customer,
			TotalSpent:     s.TotalSpent,
			TotalPurchases: s.TotalPurchases,
		}
		if t, ok := last[s.CustomerId]; ok {
			t := t
			entry.LastPurchase = &t
		}
		report.TopCustomers = append(report.TopCustomers, entry)
	}
	return report, nil
}
