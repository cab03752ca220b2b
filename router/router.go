package router

import (
	"net/http"

	"baluarte/api"
	"baluarte/config"
	_ "baluarte/docs"
	"baluarte/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const banner = "API de Baluarte en ejecución..."

// SetupRouter builds the engine. payments carries the gateway and queue wiring built in main.
func SetupRouter(cfg *config.Config, logger zerolog.Logger, payments *api.PaymentHandler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(CORSMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	{
		authHandler := api.NewAuthHandler(cfg)
		auth := apiGroup.Group("/auth")
		auth.Use(middleware.LoginRateLimit(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow()))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// MercadoPago calls this without a token
		apiGroup.POST("/mercadopago/webhook", payments.Webhook)

		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth(), middleware.LoadCurrentUser())
		{
			userHandler := api.NewUserHandler()
			users := authorized.Group("/users")
			{
				users.GET("/profile", userHandler.GetProfile)
				users.PUT("/profile/config", userHandler.ConfigureProfile)
				users.PUT("/profile/password", userHandler.ChangePassword)
				users.GET("/plan", userHandler.GetPlan)
			}

			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			transactionHandler := api.NewTransactionHandler()
			exportHandler := api.NewExportHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.GET("", transactionHandler.List)
				transactions.POST("", transactionHandler.Create)
				transactions.GET("/export", exportHandler.Export)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			authorized.GET("/dashboard", api.NewDashboardHandler().Get)

			authorized.POST("/mercadopago/create-preference", payments.CreatePreference)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.Response{
			Code:    http.StatusNotFound,
			Message: "No encontrado - " + c.Request.URL.Path,
		})
	})

	return r
}

// CORSMiddleware open CORS for the SPA and mobile clients
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
