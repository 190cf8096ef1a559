package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/middlewares"
	"github.com/mmdatafocus/pos_backend/models"
)

// Register mounts the API on api (normally /api/v1).
func Register(api *gin.RouterGroup) {
	managers := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager)
	admins := middlewares.RequireRoles(models.RoleAdmin)
	staff := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleCashier)

	auth := api.Group("/auth")
	auth.POST("/register", register)
	auth.POST("/login", login)
	auth.POST("/refresh", refresh)

	r := api.Group("", middlewares.AuthMiddleware())
	r.POST("/auth/logout", logout)
	r.GET("/auth/me", me)

	products := r.Group("/products")
	products.GET("", listProducts)
	products.POST("", createProduct)
	products.GET("/:id", getProduct)
	products.PUT("/:id", updateProduct)
	products.DELETE("/:id", deleteProduct)

	inventory := r.Group("/inventory")
	inventory.GET("/stock-levels", listStockLevels)
	inventory.GET("/products/:product_id", getInventory)
	inventory.GET("/products/:product_id/movements", listStockMovements)
	inventory.POST("/restock/:product_id", managers, restock)
	inventory.POST("/stock-adjustment/:product_id", managers, adjustStock)
	inventory.PUT("/reorder-level/:product_id", managers, updateReorderLevel)

	suppliers := r.Group("/suppliers")
	suppliers.GET("", listSuppliers)
	suppliers.POST("", managers, createSupplier)
	suppliers.GET("/:id", getSupplier)
	suppliers.PUT("/:id", managers, updateSupplier)
	suppliers.DELETE("/:id", managers, deleteSupplier)

	orders := r.Group("/purchase-orders")
	orders.GET("", listPurchaseOrders)
	orders.POST("", managers, createPurchaseOrder)
	orders.GET("/:id", getPurchaseOrder)
	orders.PUT("/:id", managers, updatePurchaseOrderItems)
	orders.PATCH("/:id/status", managers, updatePurchaseOrderStatus)
	orders.DELETE("/:id", managers, deletePurchaseOrder)

	customers := r.Group("/customers")
	customers.GET("", listCustomers)
	customers.POST("", createCustomer)
	customers.GET("/search", searchCustomers)
	customers.GET("/:id", getCustomer)
	customers.PUT("/:id", updateCustomer)
	customers.DELETE("/:id", managers, deleteCustomer)
	customers.POST("/:id/loyalty-points", managers, addLoyaltyPoints)
	customers.GET("/:id/purchase-history", customerPurchaseHistory)
	customers.GET("/:id/sales", customerSales)

	discounts := r.Group("/discounts")
	discounts.GET("", listDiscounts)
	discounts.POST("", managers, createDiscount)
	discounts.GET("/:id", getDiscount)
	discounts.PUT("/:id", managers, updateDiscount)
	discounts.DELETE("/:id", managers, deleteDiscount)

	employees := r.Group("/employees")
	employees.GET("", listEmployees)
	employees.POST("", managers, createEmployee)
	employees.GET("/:id", getEmployee)
	employees.PUT("/:id", managers, updateEmployee)
	employees.DELETE("/:id", managers, deleteEmployee)
	employees.GET("/:id/sales", employeeSales)

	sales := r.Group("/sales")
	sales.GET("", listSales)
	sales.POST("", createSale)
	sales.GET("/analytics/revenue", managers, revenueAnalytics)
	sales.GET("/analytics/top-products", managers, topProducts)
	sales.GET("/daily-summary/:date", dailySummary)
	sales.GET("/:id", getSale)
	sales.DELETE("/:id", managers, voidSale)
	sales.GET("/:id/items", listSaleItems)
	sales.POST("/:id/items", staff, addSaleItem)
	sales.GET("/:id/payments", listPayments)
	sales.POST("/:id/payments", addPayment)
	r.PUT("/payments/:id/status", managers, updatePaymentStatus)

	rep := r.Group("/reports")
	rep.GET("/sales", managers, salesReport)
	rep.GET("/sales/daily", dailyReport)
	rep.GET("/sales/period", managers, periodReport)
	rep.GET("/inventory/stock-levels", stockLevelReport)
	rep.GET("/customers/loyalty", managers, customerLoyaltyReport)
	rep.GET("/purchase-orders/summary", managers, purchaseOrderSummary)
	rep.GET("/export/sales", managers, exportSales)
	rep.GET("/export/top-products", managers, exportTopProducts)

	notifications := r.Group("/notifications")
	notifications.GET("", listNotifications)
	notifications.POST("", managers, createNotification)
	notifications.PUT("/:id/read", markNotificationRead)

	settings := r.Group("/settings")
	settings.GET("", listSettings)
	settings.GET("/:key", getSetting)
	settings.POST("", admins, createSetting)
	settings.PUT("/:key", admins, updateSetting)
	settings.DELETE("/:key", admins, deleteSetting)

	users := r.Group("/users", admins)
	users.GET("", listUsers)
	users.POST("", createUser)
	users.GET("/:id", getUser)
	users.PUT("/:id", updateUser)
	users.DELETE("/:id", deleteUser)

	roles := r.Group("/roles", admins)
	roles.GET("", listRoles)
	roles.POST("", createRole)
	roles.GET("/:id", getRole)
	roles.PUT("/:id", updateRole)
	roles.DELETE("/:id", deleteRole)
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
