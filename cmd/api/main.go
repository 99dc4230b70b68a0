package main

import (
	"os"

	"vaultbook/internal/config"
	"vaultbook/internal/database"
	"vaultbook/internal/handlers"
	"vaultbook/internal/ledger"
	"vaultbook/internal/logger"
	"vaultbook/internal/middleware"
	"vaultbook/internal/services"
	"vaultbook/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger first
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting vaultbook API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		log.Fatalw("Failed to load database configuration", "error", err)
	}
	manager, err := database.NewManager(dbConfig)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	if err := manager.Migrate(); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	store := ledger.NewStore(manager.DB())
	if err := store.EnsureDefaults(); err != nil {
		log.Fatalw("Failed to seed default categories and units", "error", err)
	}

	transactionService := services.NewTransactionService(manager.DB(), store)
	bulkValidator := services.NewBulkValidator(store)
	bulkProcessor := services.NewBulkProcessor(transactionService)
	exportService := services.NewExportService(store)

	authHandler := handlers.NewAuthHandler(store)
	vaultHandler := handlers.NewVaultHandler(store)
	transactionHandler := handlers.NewTransactionHandler(transactionService, store)
	bulkHandler := handlers.NewBulkHandler(bulkValidator, bulkProcessor)
	referenceHandler := handlers.NewReferenceHandler(store)
	exportHandler := handlers.NewExportHandler(exportService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			vaults := protected.Group("/vaults")
			{
				vaults.POST("", vaultHandler.Create)
				vaults.GET("", vaultHandler.List)
				vaults.GET("/names", vaultHandler.Names)
				vaults.GET("/total", vaultHandler.TotalBalance)
			}

			transactions := protected.Group("/transactions")
			{
				transactions.POST("/deposit", transactionHandler.Deposit)
				transactions.POST("/withdraw", transactionHandler.Withdraw)
				transactions.POST("/transfer", transactionHandler.Transfer)
				transactions.POST("/loan", transactionHandler.Loan)
				transactions.GET("", transactionHandler.History)
			}

			bulk := protected.Group("/bulk")
			{
				bulk.POST("/validate", bulkHandler.Validate)
				bulk.POST("/process", bulkHandler.Process)
			}

			categories := protected.Group("/categories")
			{
				categories.GET("", referenceHandler.ListCategories)
				categories.POST("", referenceHandler.CreateCategory)
			}

			units := protected.Group("/units")
			{
				units.GET("", referenceHandler.ListUnits)
				units.POST("", referenceHandler.CreateUnit)
			}

			protected.GET("/users", referenceHandler.ListUsers)
			protected.GET("/export", exportHandler.Download)
		}
	}

	log.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalw("Server failed", "error", err)
	}
}
