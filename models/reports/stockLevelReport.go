package reports

import (
	"context"

	"github.com/mmdatafocus/pos_backend/models"
)

type StockLevelReportResponse struct {
	TotalProducts   int                  `json:"total_products"`
	LowStockCount   int                  `json:"low_stock_count"`
	OutOfStockCount int                  `json:"out_of_stock_count"`
	Products        []*models.StockLevel `json:"products"`
}

func StockLevelReport(ctx context.Context) (report *StockLevelReportResponse, err error) {
	ctx, span := startSpan(ctx, "StockLevelReport")
	defer func() { endSpan(span, err) }()

	levels, err := models.ListStockLevels(ctx, false)
	if err != nil {
		return nil, err
	}
	report = &StockLevelReportResponse{
		TotalProducts: len(levels),
		Products:      levels,
	}
	for _, l := range levels {
		if l.LowStock {
			report.LowStockCount++
		}
		if l.OutOfStock {
			report.OutOfStockCount++
		}
	}
	return report, nil
}
