package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

func createDiscount(c *gin.Context) {
	var input models.NewDiscount
	if !bind(c, &input) {
		return
	}
	discount, err := models.CreateDiscount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Discount", err)
		return
	}
	c.JSON(http.StatusCreated, discount)
}

func listDiscounts(c *gin.Context) {
	discounts, err := models.ListDiscounts(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, "Discount", err)
		return
	}
	c.JSON(http.StatusOK, discounts)
}

func getDiscount(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	discount, err := models.GetDiscount(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Discount", err)
		return
	}
	c.JSON(http.StatusOK, discount)
}

func updateDiscount(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewDiscount
	if !bind(c, &input) {
		return
	}
	discount, err := models.UpdateDiscount(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Discount", err)
		return
	}
	c.JSON(http.StatusOK, discount)
}

func deleteDiscount(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	discount, err := models.DeleteDiscount(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Discount", err)
		return
	}
	c.JSON(http.StatusOK, discount)
}
