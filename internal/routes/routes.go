package routes

import (
	"github.com/gin-gonic/gin"

	"stockmate/internal/handlers"
	"stockmate/internal/middleware"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Products      *handlers.ProductHandler
	Sales         *handlers.SaleHandler
	Notifications *handlers.NotificationHandler
	Categories    *handlers.CategoryHandler
	Vendors       *handlers.VendorHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, jwtSecret string, users middleware.UserLookup) {
	router.Use(middleware.CORSMiddleware())

	v1 := router.Group("/v1")
	v1.POST("/auth/login", h.Auth.Login)

	authorized := v1.Group("")
	authorized.Use(middleware.RequireAuth(jwtSecret, users))
	{
		authorized.POST("/auth/register", h.Auth.Register)

		authorized.POST("/products", h.Products.CreateProduct)
		authorized.GET("/products", h.Products.ListProducts)
		authorized.GET("/products/low-stock", h.Products.ListLowStock)
		authorized.GET("/products/expiring", h.Products.ListExpiring)
		authorized.GET("/products/:id", h.Products.GetProduct)
		authorized.PATCH("/products/:id", h.Products.UpdateProduct)
		authorized.DELETE("/products/:id", h.Products.DeleteProduct)

		authorized.POST("/sales", h.Sales.RecordSale)
		authorized.GET("/sales", h.Sales.ListSales)
		authorized.GET("/sales/stats", h.Sales.SalesStats)
		authorized.GET("/sales/:id", h.Sales.GetSale)

		authorized.GET("/notifications", h.Notifications.ListNotifications)
		authorized.DELETE("/notifications/:id", h.Notifications.DeleteNotification)

		authorized.POST("/categories", h.Categories.CreateCategory)
		authorized.GET("/categories", h.Categories.ListCategories)
		authorized.GET("/categories/:id", h.Categories.GetCategory)
		authorized.DELETE("/categories/:id", h.Categories.DeleteCategory)

		authorized.POST("/vendors", h.Vendors.CreateVendor)
		authorized.GET("/vendors", h.Vendors.ListVendors)
		authorized.GET("/vendors/:id", h.Vendors.GetVendor)
		authorized.PATCH("/vendors/:id", h.Vendors.UpdateVendor)
		authorized.DELETE("/vendors/:id", h.Vendors.DeleteVendor)
	}
}
