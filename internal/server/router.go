package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/labelsense-backend/internal/handlers"
	"github.com/yungbote/labelsense-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	ScanHandler    *handlers.ScanHandler
	ProductHandler *handlers.ProductHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	api.POST("/logout", cfg.AuthHandler.Logout)
	api.POST("/scan", cfg.ScanHandler.Analyze)
	api.GET("/scans", cfg.ScanHandler.ListScans)
	api.GET("/products/:id/analysis", cfg.ProductHandler.GetAnalysis)
	api.GET("/products/by-barcode/:code/analysis", cfg.ProductHandler.GetAnalysisByBarcode)

	return router
}
