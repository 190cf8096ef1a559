package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

func setRow(f *excelize.File, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// ExportSalesReport writes one row per sale in [start, end].
func ExportSalesReport(ctx context.Context, start time.Time, end time.Time) (*excelize.File, error) {
	sales, err := SalesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := setRow(f, 1, "SaleId", "SaleDate", "CashierId", "CustomerId", "Items", "Subtotal", "Discount", "Total"); err != nil {
		return nil, err
	}
	for i, s := range sales {
		customer := ""
		if s.CustomerId != nil {
			customer = fmt.Sprint(*s.CustomerId)
		}
		if err := setRow(f, i+2,
			s.ID,
			s.SaleDate.UTC().Format(time.RFC3339),
			s.EmployeeId,
			customer,
			len(s.Items),
			s.Subtotal.InexactFloat64(),
			s.DiscountAmount.InexactFloat64(),
			s.TotalAmount.InexactFloat64(),
		); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func ExportTopProducts(ctx context.Context, start time.Time, end time.Time, limit int) (*excelize.File, error) {
	records, err := TopProducts(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := setRow(f, 1, "Rank", "ProductId", "ProductName", "Quantity", "Revenue"); err != nil {
		return nil, err
	}
	for i, r := range records {
		if err := setRow(f, i+2, i+1, r.ProductId, r.ProductName, r.TotalQuantity, r.TotalRevenue.InexactFloat64()); err != nil {
			return nil, err
		}
	}
	return f, nil
}
