package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
)

type PurchaseOrderStatusSummary struct {
	Status        models.PurchaseOrderStatus `json:"status"`
	OrderCount    int                        `json:"order_count"`
	TotalQuantity int                        `json:"total_quantity"`
}

type PurchaseOrderSummaryResponse struct {
	Period      ReportPeriod                  `json:"period"`
	TotalOrders int                           `json:"total_orders"`
	ByStatus    []*PurchaseOrderStatusSummary `json:"by_status"`
}

var purchaseOrderStatuses = []models.PurchaseOrderStatus{
	models.PurchaseOrderStatusPending,
	models.PurchaseOrderStatusShipped,
	models.PurchaseOrderStatusDelivered,
}

// PurchaseOrderSummary counts orders dated in [start, end] per status, every status listed.
func PurchaseOrderSummary(ctx context.Context, start time.Time, end time.Time) (summary *PurchaseOrderSummaryResponse, err error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "PurchaseOrderSummary")
	defer func() { endSpan(span, err) }()

	sql := `
SELECT
	po.current_status AS status,
	COUNT(DISTINCT po.id) AS order_count,
	COALESCE(SUM(pod.quantity), 0) AS total_quantity
FROM
	purchase_orders AS po
	LEFT JOIN purchase_order_details AS pod ON pod.purchase_order_id = po.id
WHERE
	po.order_date >= @start AND po.order_date <= @end
GROUP BY
	po.current_status`

	var rows []*PurchaseOrderStatusSummary
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"start": start.UTC(),
		"end":   end.UTC(),
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}

	byStatus := make(map[models.PurchaseOrderStatus]*PurchaseOrderStatusSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}
	summary = &PurchaseOrderSummaryResponse{
		Period: ReportPeriod{StartDate: start.UTC(), EndDate: end.UTC()},
	}
	for _, status := range purchaseOrderStatuses {
		entry, ok := byStatus[status]
		if !ok {
			entry = &PurchaseOrderStatusSummary{Status: status}
		}
		summary.TotalOrders += entry.OrderCount
		summary.ByStatus = append(summary.ByStatus, entry)
	}
	return summary, nil
}
