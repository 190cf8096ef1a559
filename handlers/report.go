package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models/reports"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/xuri/excelize/v2"
)

func firstQuery(c *gin.Context, names ...string) string {
	for _, n := range names {
		if v := c.Query(n); v != "" {
			return v
		}
	}
	return ""
}

// salesReport defaults the end to the last instant before start+1 day, so back-to-back
// daily reports never share a sale.
func salesReport(c *gin.Context) {
	start, ok := queryDate(c, "start_date", false)
	if !ok {
		return
	}
	if start == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "start_date is required"})
		return
	}
	end, ok := queryDate(c, "end_date", true)
	if !ok {
		return
	}
	if end == nil {
		e := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &e
	}
	summary, err := reports.GetRevenueSummary(c.Request.Context(), *start, *end)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// periodReport takes start/end or start_date/end_date.
func periodReport(c *gin.Context) {
	startRaw := firstQuery(c, "start", "start_date")
	endRaw := firstQuery(c, "end", "end_date")
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both start and end dates are required"})
		return
	}
	start, err := utils.ParseFlexibleDate(startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := utils.ParseFlexibleEndDate(endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := reports.GetRevenueSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func dailyReport(c *gin.Context) {
	date, ok := queryDate(c, "date", false)
	if !ok {
		return
	}
	if date == nil {
		now := time.Now().UTC()
		date = &now
	}
	summary, err := reports.DailySummary(c.Request.Context(), *date)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	summary.Sales = nil
	c.JSON(http.StatusOK, summary)
}

// dailySummary answers /sales/daily-summary/:date with the day's sales listed.
func dailySummary(c *gin.Context) {
	date, err := utils.ParseFlexibleDate(c.Param("date"))
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	summary, err := reports.DailySummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func revenueAnalytics(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	summary, err := reports.GetRevenueSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func topProducts(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}
	records, err := reports.TopProducts(c.Request.Context(), start, end, limit)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top_products": records})
}

func customerLoyaltyReport(c *gin.Context) {
	topN, ok := queryInt(c, "top_n", 50)
	if !ok {
		return
	}
	report, err := reports.CustomerLoyaltyReport(c.Request.Context(), topN)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func stockLevelReport(c *gin.Context) {
	report, err := reports.StockLevelReport(c.Request.Context())
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func purchaseOrderSummary(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	summary, err := reports.PurchaseOrderSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func writeWorkbook(c *gin.Context, f *excelize.File, name string) {
	defer f.Close()
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func exportSales(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	f, err := reports.ExportSalesReport(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	writeWorkbook(c, f, fmt.Sprintf("sales_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102")))
}

func exportTopProducts(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}
	f, err := reports.ExportTopProducts(c.Request.Context(), start, end, limit)
	if err != nil {
		respondError(c, "Reports", err)
		return
	}
	writeWorkbook(c, f, fmt.Sprintf("top_products_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102")))
}
