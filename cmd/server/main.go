package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/smartbiz/smartbiz-backend/internal/alerts"
	"github.com/smartbiz/smartbiz-backend/internal/auth"
	"github.com/smartbiz/smartbiz-backend/internal/expense"
	"github.com/smartbiz/smartbiz-backend/internal/feedback"
	"github.com/smartbiz/smartbiz-backend/internal/inventory"
	"github.com/smartbiz/smartbiz-backend/internal/reports"
	"github.com/smartbiz/smartbiz-backend/internal/sales"
	"github.com/smartbiz/smartbiz-backend/internal/supplier"
	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/middleware"
	"github.com/smartbiz/smartbiz-backend/pkg/sms"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Check stock levels once on startup; failures are logged, not fatal
	alertService := alerts.NewService(db, sms.GatewayFromEnv())
	go alertService.SendLowStockAlerts()

	// Setup Gin router
	r := gin.Default()

	// Middleware
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Auth routes. Register is reachable without a token only while no
		// active manager exists; after that it requires a manager session,
		// which the handler checks itself.
		authHandler := auth.NewHandler(db)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(db))
		{
			protected.POST("/auth/change-password", authHandler.ChangePassword)
			protected.GET("/auth/profile", authHandler.Profile)

			// Inventory routes
			inventoryHandler := inventory.NewHandler(db)
			protected.GET("/inventory/items", inventoryHandler.ListItems)
			protected.POST("/inventory/items", inventoryHandler.CreateItem)
			protected.GET("/inventory/items/:custom_id", inventoryHandler.GetItem)
			protected.PUT("/inventory/items/:custom_id", inventoryHandler.UpdateItem)
			protected.POST("/inventory/items/:custom_id/supplier-price", inventoryHandler.AddSupplierPrice)
			protected.POST("/inventory/items/:custom_id/stock-adjustment", inventoryHandler.AdjustStock)
			protected.GET("/inventory/categories", inventoryHandler.ListCategories)
			protected.GET("/inventory/stock-adjustments", middleware.ManagerRequired(), inventoryHandler.ListAdjustments)
			protected.POST("/inventory/items/import", middleware.ManagerRequired(), inventoryHandler.ImportItems)

			// Sales routes
			salesHandler := sales.NewHandler(db)
			protected.POST("/sales", salesHandler.Create)
			protected.GET("/sales/items-for-sale", salesHandler.ItemsForSale)
			protected.GET("/sales/history", salesHandler.History)
			protected.GET("/sales/:id", salesHandler.Get)

			// Supplier routes
			supplierHandler := supplier.NewHandler(db)
			protected.GET("/suppliers", supplierHandler.List)
			protected.GET("/suppliers/:custom_id", supplierHandler.Get)
			protected.POST("/suppliers", middleware.ManagerRequired(), supplierHandler.Create)
			protected.PUT("/suppliers/:custom_id", middleware.ManagerRequired(), supplierHandler.Update)
			protected.DELETE("/suppliers/:custom_id", middleware.ManagerRequired(), supplierHandler.Deactivate)

			// Feedback routes
			feedbackHandler := feedback.NewHandler(db)
			protected.POST("/feedback", feedbackHandler.Create)
			protected.GET("/feedback", feedbackHandler.List)
			protected.GET("/feedback/:id", feedbackHandler.Get)
			protected.PUT("/feedback/:id", middleware.ManagerRequired(), feedbackHandler.Update)
			protected.DELETE("/feedback/:id", middleware.ManagerRequired(), feedbackHandler.Delete)

			// Expense routes
			expenseHandler := expense.NewHandler(db)
			protected.POST("/expenses", middleware.ManagerRequired(), expenseHandler.Create)
			protected.GET("/expenses", middleware.ManagerRequired(), expenseHandler.List)

			// Reports routes
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales/daily", reportsHandler.DailySales)
			protected.GET("/reports/sales/weekly", reportsHandler.WeeklySales)
			protected.GET("/reports/inventory", reportsHandler.Inventory)
			protected.GET("/reports/operator-performance", middleware.ManagerRequired(), reportsHandler.OperatorPerformanceReport)
			protected.GET("/reports/expenses", middleware.ManagerRequired(), reportsHandler.Expenses)
			protected.GET("/reports/feedback", middleware.ManagerRequired(), reportsHandler.Feedback)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
