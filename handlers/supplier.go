package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

func createSupplier(c *gin.Context) {
	var input models.NewSupplier
	if !bind(c, &input) {
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func listSuppliers(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	suppliers, err := models.ListSuppliers(c.Request.Context(), c.Query("name"), skip, limit)
	if err != nil {
		respondError(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func getSupplier(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func updateSupplier(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSupplier
	if !bind(c, &input) {
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplier(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	supplier, err := models.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}
