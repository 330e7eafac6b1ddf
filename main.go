package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/soleshop/soleshop-backend-go/config"
	"github.com/soleshop/soleshop-backend-go/database"
	"github.com/soleshop/soleshop-backend-go/logger"
	customMiddleware "github.com/soleshop/soleshop-backend-go/middleware"
	"github.com/soleshop/soleshop-backend-go/routes"
	"github.com/soleshop/soleshop-backend-go/utils"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	zapLogger, err := logger.New(config.GetEnv("ENV", "development"))
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(customMiddleware.MetricsMiddleware)

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Image service client
	if err := utils.InitCloudinary(); err != nil {
		zapLogger.Fatal("Failed to initialize image service client", zap.Error(err))
	}

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3000")
	zapLogger.Info("Server starting", zap.String("port", port))
	e.Logger.Fatal(e.Start(":" + port))
}
