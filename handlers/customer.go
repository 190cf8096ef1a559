package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

type loyaltyPointsRequest struct {
	Points int `json:"points" binding:"required,gt=0"`
}

func createCustomer(c *gin.Context) {
	var input models.NewCustomer
	if !bind(c, &input) {
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func listCustomers(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	customers, err := models.ListCustomers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func searchCustomers(c *gin.Context) {
	customers, err := models.SearchCustomers(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func getCustomer(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func updateCustomer(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewCustomer
	if !bind(c, &input) {
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func deleteCustomer(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	customer, err := models.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func addLoyaltyPoints(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input loyaltyPointsRequest
	if !bind(c, &input) {
		return
	}
	customer, err := models.AddLoyaltyPoints(c.Request.Context(), id, input.Points)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func customerPurchaseHistory(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 0)
	if !ok {
		return
	}
	history, err := models.GetPurchaseHistory(c.Request.Context(), id, days)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func customerSales(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sales, err := models.GetCustomerSales(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}
