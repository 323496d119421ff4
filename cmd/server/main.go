package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/snagasawa/production-management-api/internal/config"
	"github.com/snagasawa/production-management-api/internal/constants"
	"github.com/snagasawa/production-management-api/internal/database"
	"github.com/snagasawa/production-management-api/internal/handlers"
	"github.com/snagasawa/production-management-api/internal/middleware"
	"github.com/snagasawa/production-management-api/internal/repository"
	"github.com/snagasawa/production-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	productRepo := repository.NewProductRepository(db)
	stepRepo := repository.NewProductionStepRepository(db)
	detailRepo := repository.NewProductionStepDetailRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo)
	todoService := services.NewTodoService(todoRepo)
	productService := services.NewProductService(productRepo)
	stepService := services.NewProductionStepService(stepRepo)
	detailService := services.NewProductionStepDetailService(detailRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	todoHandler := handlers.NewTodoHandler(todoService)
	productHandler := handlers.NewProductHandler(productService)
	stepHandler := handlers.NewProductionStepHandler(stepService)
	detailHandler := handlers.NewProductionStepDetailHandler(detailService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Production Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("/join", orgHandler.JoinOrganization)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(), orgHandler.GetOrganization)
			orgs.PUT("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationOwner(), orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationOwner(), orgHandler.DeleteOrganization)
			orgs.POST("/:id/regenerate-code", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationOwner(), orgHandler.RegenerateInviteCode)
			orgs.DELETE("/:id/members/:user_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationOwner(), orgHandler.RemoveMember)
		}

		// Record routes (protected, owner-scoped). ResolveOwner reads the
		// X-Organization-ID header once so every handler below sees a
		// single owning identity.
		owned := api.Group("")
		owned.Use(middleware.RequireAuth(), middleware.ResolveOwner())
		{
			todos := owned.Group("/todos")
			{
				todos.GET("", todoHandler.ListTodos)
				todos.POST("", todoHandler.CreateTodo)
				todos.GET("/:id", todoHandler.GetTodo)
				todos.PATCH("/:id", todoHandler.UpdateTodo)
				todos.POST("/:id/toggle", todoHandler.ToggleTodoStatus)
				todos.DELETE("/:id", todoHandler.DeleteTodo)
			}

			products := owned.Group("/products")
			{
				products.GET("", productHandler.ListProducts)
				products.POST("", productHandler.CreateProduct)
				products.GET("/:id", productHandler.GetProduct)
				products.PATCH("/:id", productHandler.UpdateProduct)
				products.DELETE("/:id", productHandler.DeleteProduct)
			}

			steps := owned.Group("/production-steps")
			{
				steps.GET("", stepHandler.ListProductionSteps)
				steps.POST("", stepHandler.CreateProductionStep)
				steps.GET("/:id", stepHandler.GetProductionStep)
				steps.PATCH("/:id", stepHandler.UpdateProductionStep)
				steps.DELETE("/:id", stepHandler.DeleteProductionStep)
			}

			details := owned.Group("/production-step-details")
			{
				details.GET("", detailHandler.ListDetails)
				details.POST("", detailHandler.CreateDetail)
				details.POST("/bulk-assign", detailHandler.BulkAssign)
				details.GET("/:id", detailHandler.GetDetail)
				details.PATCH("/:id", detailHandler.UpdateDetail)
				details.DELETE("/:id", detailHandler.DeleteDetail)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
