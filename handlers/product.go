package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

func createProduct(c *gin.Context) {
	var input models.NewProduct
	if !bind(c, &input) {
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listProducts(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	products, err := models.ListProducts(c.Request.Context(), models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func getProduct(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func updateProduct(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewProduct
	if !bind(c, &input) {
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func deleteProduct(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	product, err := models.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}
