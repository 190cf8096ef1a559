package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
)

type paymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

func createSale(c *gin.Context) {
	var input models.NewSale
	if !bind(c, &input) {
		return
	}
	if input.DiscountId != nil && !models.IsManagerContext(c.Request.Context()) {
		respondError(c, "Sale", utils.Errorf(utils.ErrForbidden, "only managers can apply discounts"))
		return
	}
	input.CashierId, _ = utils.GetUserIdFromContext(c.Request.Context())
	input.IdempotencyKey = c.GetHeader("Idempotency-Key")
	if len(input.IdempotencyKey) > 255 {
		respondError(c, "Sale", utils.Errorf(utils.ErrInvalidInput, "Idempotency-Key is too long"))
		return
	}
	sale, err := models.CreateSale(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func listSales(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	start, ok := queryDate(c, "start_date", false)
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date", true)
	if !ok {
		return
	}
	cashierId, ok := queryInt(c, "cashier_id", 0)
	if !ok {
		return
	}
	customerId, ok := queryInt(c, "customer_id", 0)
	if !ok {
		return
	}
	sales, err := models.ListSales(c.Request.Context(), models.SaleFilter{
		Start:      start,
		End:        end,
		EmployeeId: cashierId,
		CustomerId: customerId,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func getSale(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func voidSale(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sale, err := models.VoidSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func addSaleItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSaleItem
	if !bind(c, &input) {
		return
	}
	sale, err := models.AddSaleItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func listSaleItems(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	items, err := models.GetSaleItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func addPayment(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewPayment
	if !bind(c, &input) {
		return
	}
	payment, err := models.AddPayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func listPayments(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	payments, err := models.GetSalePayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func updatePaymentStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input paymentStatusRequest
	if !bind(c, &input) {
		return
	}
	payment, err := models.UpdatePaymentStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, "Sale", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
