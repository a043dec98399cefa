package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/martagon-studio/workshop-api/config"
	"github.com/martagon-studio/workshop-api/controllers"
	"github.com/martagon-studio/workshop-api/middleware"
	"github.com/martagon-studio/workshop-api/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.InitLogger(cfg.IsDevelopment()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer config.SyncLogger()

	logger := config.Logger()
	logger.Info("Starting Workshop API server")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Family{},
		&models.ProductModel{},
		&models.RawMaterial{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.CodeSequence{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	logger.Info("Server is running", zap.String("addr", "http://localhost"+port))
	if err := router.Run(port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// setupRouter builds the Gin engine with all routes registered. Reads are
// open; every mutating route goes through the same auth policy.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigins == "" || cfg.CORSOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authRequired := middleware.RequireAuth(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		customers := v1.Group("/customers")
		{
			customers.GET("", controllers.ListCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.POST("", authRequired, controllers.CreateCustomer)
			customers.PUT("/:id", authRequired, controllers.UpdateCustomer)
			customers.DELETE("/:id", authRequired, controllers.DeleteCustomer)
		}

		families := v1.Group("/families")
		{
			families.GET("", controllers.ListFamilies)
			families.GET("/active", controllers.ListActiveFamilies)
			families.GET("/:id", controllers.GetFamily)
			families.POST("", authRequired, controllers.CreateFamily)
			families.PUT("/:id", authRequired, controllers.UpdateFamily)
			families.DELETE("/:id", authRequired, controllers.DeleteFamily)
		}

		productModels := v1.Group("/product-models")
		{
			productModels.GET("", controllers.ListProductModels)
			productModels.GET("/active", controllers.ListActiveProductModels)
			productModels.GET("/by-kind", controllers.ListProductModelsByKind)
			productModels.GET("/:id", controllers.GetProductModel)
			productModels.POST("", authRequired, controllers.CreateProductModel)
			productModels.PUT("/:id", authRequired, controllers.UpdateProductModel)
			productModels.DELETE("/:id", authRequired, controllers.DeleteProductModel)
		}

		rawMaterials := v1.Group("/raw-materials")
		{
			rawMaterials.GET("", controllers.ListRawMaterials)
			rawMaterials.GET("/low-stock", controllers.ListLowStockRawMaterials)
			rawMaterials.GET("/by-family", controllers.ListRawMaterialsByFamily)
			rawMaterials.GET("/by-model", controllers.ListRawMaterialsByModel)
			rawMaterials.GET("/export", controllers.ExportRawMaterials)
			rawMaterials.GET("/:id", controllers.GetRawMaterial)
			rawMaterials.POST("", authRequired, controllers.CreateRawMaterial)
			rawMaterials.POST("/adjust-stock", authRequired, controllers.AdjustRawMaterialStock)
			rawMaterials.PUT("/:id", authRequired, controllers.UpdateRawMaterial)
			rawMaterials.DELETE("/:id", authRequired, controllers.DeleteRawMaterial)
		}

		products := v1.Group("/products")
		{
			products.GET("", controllers.ListProducts)
			products.GET("/low-stock", controllers.ListLowStockProducts)
			products.GET("/by-model", controllers.ListProductsByModel)
			products.GET("/export", controllers.ExportProducts)
			products.GET("/:id", controllers.GetProduct)
			products.POST("", authRequired, controllers.CreateProduct)
			products.POST("/adjust-stock", authRequired, controllers.AdjustProductStock)
			products.PUT("/:id", authRequired, controllers.UpdateProduct)
			products.DELETE("/:id", authRequired, controllers.DeleteProduct)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", controllers.ListOrders)
			orders.GET("/by-status", controllers.ListOrdersByStatus)
			orders.GET("/:id", controllers.GetOrder)
			orders.POST("", authRequired, controllers.CreateOrder)
			orders.PUT("/:id", authRequired, controllers.UpdateOrder)
			orders.DELETE("/:id", authRequired, controllers.DeleteOrder)
		}

		orderLines := v1.Group("/order-lines")
		{
			orderLines.GET("", controllers.ListOrderLines)
			orderLines.GET("/:id", controllers.GetOrderLine)
			orderLines.POST("", authRequired, controllers.CreateOrderLine)
			orderLines.PUT("/:id", authRequired, controllers.UpdateOrderLine)
			orderLines.DELETE("/:id", authRequired, controllers.DeleteOrderLine)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workshop API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
