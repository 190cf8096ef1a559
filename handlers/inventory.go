package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

type restockRequest struct {
	Quantity   int  `json:"quantity" binding:"required,gt=0"`
	SupplierId *int `json:"supplier_id"`
}

type adjustStockRequest struct {
	Delta  int    `json:"adjustment" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type reorderLevelRequest struct {
	ReorderLevel *int `json:"reorder_level" binding:"required,gte=0"`
}

func listStockLevels(c *gin.Context) {
	levels, err := models.ListStockLevels(c.Request.Context(), c.Query("low_stock") == "true")
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, levels)
}

func getInventory(c *gin.Context) {
	productId, ok := pathId(c, "product_id")
	if !ok {
		return
	}
	inv, err := models.GetInventoryByProduct(c.Request.Context(), productId)
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func restock(c *gin.Context) {
	productId, ok := pathId(c, "product_id")
	if !ok {
		return
	}
	var input restockRequest
	if !bind(c, &input) {
		return
	}
	change, err := models.Restock(c.Request.Context(), productId, input.Quantity, input.SupplierId)
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, change)
}

func adjustStock(c *gin.Context) {
	productId, ok := pathId(c, "product_id")
	if !ok {
		return
	}
	var input adjustStockRequest
	if !bind(c, &input) {
		return
	}
	change, err := models.AdjustStock(c.Request.Context(), productId, input.Delta, input.Reason)
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, change)
}

func updateReorderLevel(c *gin.Context) {
	productId, ok := pathId(c, "product_id")
	if !ok {
		return
	}
	var input reorderLevelRequest
	if !bind(c, &input) {
		return
	}
	inv, err := models.UpdateReorderLevel(c.Request.Context(), productId, *input.ReorderLevel)
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func listStockMovements(c *gin.Context) {
	productId, ok := pathId(c, "product_id")
	if !ok {
		return
	}
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	movements, err := models.ListStockMovements(c.Request.Context(), productId, skip, limit)
	if err != nil {
		respondError(c, "Inventory", err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
