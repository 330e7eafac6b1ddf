package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soleshop/soleshop-backend-go/database"
	"github.com/soleshop/soleshop-backend-go/handlers"
	customMiddleware "github.com/soleshop/soleshop-backend-go/middleware"
)

func SetupRoutes(e *echo.Echo) {
	// Public catalog routes
	e.GET("/products", handlers.GetProducts)
	e.GET("/products/featured", handlers.GetFeaturedProducts)
	e.GET("/products/categories", handlers.GetCategories)
	e.GET("/products/:id", handlers.GetProduct)

	// Public auth routes
	e.POST("/users/register", handlers.RegisterUser)
	e.POST("/users/login", handlers.LoginUser)

	// Authenticated routes
	auth := e.Group("", customMiddleware.AuthMiddleware)
	auth.GET("/users/profile", handlers.GetUserProfile)
	auth.PUT("/users/profile", handlers.UpdateUserProfile)
	auth.POST("/orders", handlers.CreateOrder)
	auth.GET("/orders/myorders", handlers.GetMyOrders)
	auth.GET("/orders/:id", handlers.GetOrderByID)

	// Admin routes
	admin := e.Group("", customMiddleware.AuthMiddleware, customMiddleware.AdminMiddleware)
	admin.POST("/products", handlers.CreateProduct)
	admin.PUT("/products/:id", handlers.UpdateProduct)
	admin.DELETE("/products/:id", handlers.DeleteProduct)
	admin.GET("/orders/admin/all", handlers.GetAllOrders)
	admin.PUT("/orders/admin/:id/status", handlers.UpdateOrderStatus)
	admin.DELETE("/orders/admin/:id", handlers.DeleteOrder)
	admin.POST("/upload", handlers.UploadImage)
	admin.POST("/upload/multiple", handlers.UploadImages)
	admin.DELETE("/upload/*", handlers.DeleteImage)
	admin.GET("/admin/dashboard-stats", handlers.GetDashboardStats)
	admin.GET("/admin/users", handlers.GetUsers)
	admin.GET("/admin/users/:id", handlers.GetUserByID)
	admin.PUT("/admin/users/:id", handlers.UpdateUser)
	admin.DELETE("/admin/users/:id", handlers.DeleteUser)

	// Ops surface
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/test", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		db := "connected"
		if err := database.Ping(ctx); err != nil {
			db = "unreachable"
		}

		return c.JSON(http.StatusOK, map[string]string{
			"service":  "soleshop-backend",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": db,
		})
	})
}
