package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type DailySalesSummary struct {
	Date         string          `json:"date"`
	SalesCount   int             `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_sales"`
	AverageSale  decimal.Decimal `json:"average_sale"`
	Sales        []*models.Sale  `json:"sales,omitempty"`
}

type ReportPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type RevenueSummary struct {
	Period         ReportPeriod         `json:"period"`
	TotalRevenue   decimal.Decimal      `json:"total_revenue"`
	SalesCount     int                  `json:"total_transactions"`
	AverageSale    decimal.Decimal      `json:"average_sale"`
	DaysInPeriod   int                  `json:"days_in_period"`
	DailyBreakdown []*DailySalesSummary `json:"daily_breakdown"`
}

func averageOf(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 4)
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("seq_no")
}

// SalesInRange returns sales with start <= sale_date <= end, oldest first.
func SalesInRange(ctx context.Context, start time.Time, end time.Time) (sales []*models.Sale, err error) {
	ctx, span := startSpan(ctx, "SalesInRange",
		attribute.String("start", start.UTC().Format(time.RFC3339)),
		attribute.String("end", end.UTC().Format(time.RFC3339)))
	defer func() { endSpan(span, err) }()

	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Preload("Items", preloadItems).
		Where("sale_date >= ? AND sale_date <= ?", start.UTC(), end.UTC()).
		Order("sale_date, id").Find(&sales).Error
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sales", len(sales)))
	return sales, nil
}

// salesInDay covers [midnight, next midnight).
func salesInDay(ctx context.Context, date time.Time) ([]*models.Sale, error) {
	start, end := utils.DayRange(date)
	var sales []*models.Sale
	db := config.GetDB()
	err := db.WithContext(ctx).Preload("Items", preloadItems).
		Where("sale_date >= ? AND sale_date < ?", start, end).
		Order("sale_date, id").Find(&sales).Error
	return sales, err
}

func DailyRevenue(ctx context.Context, date time.Time) (revenue decimal.Decimal, err error) {
	ctx, span := startSpan(ctx, "DailyRevenue", attribute.String("date", date.UTC().Format("2006-01-02")))
	defer func() { endSpan(span, err) }()

	start, end := utils.DayRange(date)
	var row struct {
		Revenue decimal.Decimal
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Raw(`
SELECT
	COALESCE(SUM(total_amount), 0) AS revenue
FROM
	sales
WHERE
	sale_date >= @start AND sale_date < @end`,
		map[string]interface{}{"start": start, "end": end}).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}

func summarizeDay(date time.Time, sales []*models.Sale) *DailySalesSummary {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return &DailySalesSummary{
		Date:         utils.StartOfDay(date).Format("2006-01-02"),
		SalesCount:   len(sales),
		TotalRevenue: total,
		AverageSale:  averageOf(total, len(sales)),
		Sales:        sales,
	}
}

func DailySummary(ctx context.Context, date time.Time) (summary *DailySalesSummary, err error) {
	ctx, span := startSpan(ctx, "DailySummary", attribute.String("date", date.UTC().Format("2006-01-02")))
	defer func() { endSpan(span, err) }()

	sales, err := salesInDay(ctx, date)
	if err != nil {
		return nil, err
	}
	revenue, err := DailyRevenue(ctx, date)
	if err != nil {
		return nil, err
	}
	summary = summarizeDay(date, sales)
	summary.TotalRevenue = revenue
	summary.AverageSale = averageOf(revenue, len(sales))
	return summary, nil
}

// GetRevenueSummary totals the range and breaks it down per day. Days without sales are listed with zero revenue.
func GetRevenueSummary(ctx context.Context, start time.Time, end time.Time) (summary *RevenueSummary, err error) {
	started := time.Now()
	defer logSlowReport(ctx, "RevenueSummary", started, map[string]any{"start": start, "end": end})

	sales, err := SalesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byDay := map[string][]*models.Sale{}
	total := decimal.Zero
	for _, s := range sales {
		day := s.SaleDate.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], s)
		total = total.Add(s.TotalAmount)
	}

	summary = &RevenueSummary{
		Period:       ReportPeriod{StartDate: start.UTC(), EndDate: end.UTC()},
		TotalRevenue: total,
		SalesCount:   len(sales),
		AverageSale:  averageOf(total, len(sales)),
	}
	for day := utils.StartOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		entry := summarizeDay(day, byDay[day.Format("2006-01-02")])
		entry.Sales = nil
		summary.DailyBreakdown = append(summary.DailyBreakdown, entry)
	}
	summary.DaysInPeriod = len(summary.DailyBreakdown)
	return summary, nil
}
