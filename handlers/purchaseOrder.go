package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

type purchaseOrderItemsRequest struct {
	Details []*models.NewPurchaseOrderDetail `json:"product_list" binding:"required,dive"`
}

type purchaseOrderStatusRequest struct {
	Status models.PurchaseOrderStatus `json:"status" binding:"required"`
}

func createPurchaseOrder(c *gin.Context) {
	var input models.NewPurchaseOrder
	if !bind(c, &input) {
		return
	}
	order, err := models.CreatePurchaseOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func listPurchaseOrders(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	supplierId, ok := queryInt(c, "supplier_id", 0)
	if !ok {
		return
	}
	orders, err := models.ListPurchaseOrders(c.Request.Context(), models.PurchaseOrderFilter{
		SupplierId: supplierId,
		Status:     models.PurchaseOrderStatus(c.Query("status")),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getPurchaseOrder(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	order, err := models.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func updatePurchaseOrderItems(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input purchaseOrderItemsRequest
	if !bind(c, &input) {
		return
	}
	order, err := models.UpdatePurchaseOrderItems(c.Request.Context(), id, input.Details)
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func updatePurchaseOrderStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input purchaseOrderStatusRequest
	if !bind(c, &input) {
		return
	}
	order, err := models.UpdatePurchaseOrderStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func deletePurchaseOrder(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	order, err := models.DeletePurchaseOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, "PurchaseOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
