package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type TopProductResponse struct {
	ProductId     int             `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// TopProducts ranks products sold in [start, end] by quantity.
// Equal quantities keep the order in which the products were first sold.
func TopProducts(ctx context.Context, start time.Time, end time.Time, limit int) (records []*TopProductResponse, err error) {
	if limit <= 0 {
		return nil, utils.Errorf(utils.ErrInvalidInput, "limit must be greater than zero")
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "TopProducts", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()
	started := time.Now()
	defer logSlowReport(ctx, "TopProducts", started, map[string]any{"limit": limit})

	key := cacheKey("TopProducts", start, end, limit)
	return cached(ctx, key, func() ([]*TopProductResponse, error) {
		sql := `
SELECT
	si.product_id,
	COALESCE(p.name, '') AS product_name,
	SUM(si.quantity) AS total_quantity,
	COALESCE(SUM(si.subtotal), 0) AS total_revenue,
	MIN(si.id) AS first_item_id
FROM
	sale_items AS si
	JOIN sales AS s ON s.id = si.sale_id
	LEFT JOIN products AS p ON p.id = si.product_id
WHERE
	s.sale_date >= @start AND s.sale_date <= @end
GROUP BY
	si.product_id,
	p.name
ORDER BY
	total_quantity DESC,
	first_item_id ASC
LIMIT @limit`

		var rows []*TopProductResponse
		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"start": start.UTC(),
			"end":   end.UTC(),
			"limit": limit,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
}
