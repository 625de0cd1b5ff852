package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lsb-steganography/config"
)

// NewRouter wires the API routes, CORS and per-client rate limits.
func NewRouter(conf *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = conf.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{
		"Content-Disposition",
		"X-Stego-Algorithm",
		"X-Stego-PSNR",
		"X-Stego-Capacity",
		"X-Stego-Bits",
		"X-Stego-Warnings",
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	stegoHandler := NewStegoHandler(conf)
	generalLimit := NewRateLimiter(conf.RateLimitPerMinute)
	codecLimit := NewRateLimiter(conf.EmbedRateLimitPerMinute)

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		limited := api.Group("", generalLimit.Middleware())
		limited.GET("/", stegoHandler.APIInfo)

		stegoRoutes := limited.Group("/stego")
		{
			stegoRoutes.POST("/embed", codecLimit.Middleware(), stegoHandler.EmbedMessage)
			stegoRoutes.POST("/extract", codecLimit.Middleware(), stegoHandler.ExtractMessage)
			stegoRoutes.POST("/capacity", stegoHandler.CheckCapacity)
			stegoRoutes.POST("/inspect", stegoHandler.InspectCarrier)
			stegoRoutes.GET("/algorithms", stegoHandler.ListAlgorithms)
			stegoRoutes.GET("/recommend", stegoHandler.RecommendAlgorithm)
		}
	}

	return router
}
