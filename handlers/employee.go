package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/models"
)

func createEmployee(c *gin.Context) {
	var input models.NewEmployee
	if !bind(c, &input) {
		return
	}
	employee, err := models.CreateEmployee(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func listEmployees(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	employees, err := models.ListEmployees(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func getEmployee(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	employee, err := models.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func updateEmployee(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewEmployee
	if !bind(c, &input) {
		return
	}
	employee, err := models.UpdateEmployee(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func deleteEmployee(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	employee, err := models.DeleteEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func employeeSales(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sales, err := models.GetEmployeeSales(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Employee", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}
