package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/labelsense-backend/internal/clients/redis"
	"github.com/yungbote/labelsense-backend/internal/db"
	"github.com/yungbote/labelsense-backend/internal/handlers"
	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/middleware"
	"github.com/yungbote/labelsense-backend/internal/repos"
	"github.com/yungbote/labelsense-backend/internal/server"
	"github.com/yungbote/labelsense-backend/internal/services"
	"github.com/yungbote/labelsense-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	analysisTTLDays := utils.GetEnvAsInt("PRODUCT_ANALYSIS_TTL_DAYS", 30, log)
	generationTimeout := utils.GetEnvAsInt("GENERATION_TIMEOUT_SECONDS", 120, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	scanRecordRepo := repos.NewScanRecordRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	scanLogRepo := repos.NewScanLogRepo(thePG, log)

	// Clients
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	scanEventBus, err := redis.NewScanEventBus(log)
	if err != nil {
		log.Warn("Redis scan event bus disabled", "error", err)
		scanEventBus = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	keyService := services.NewScanKeyService(log)
	freshness := services.NewFreshnessPolicy(time.Duration(analysisTTLDays) * 24 * time.Hour)
	scanService := services.NewScanService(thePG, log, keyService, scanRecordRepo, scanLogRepo,
		openaiClient, scanEventBus, time.Duration(generationTimeout)*time.Second)
	productService := services.NewProductService(thePG, log, productRepo, scanLogRepo,
		openaiClient, scanEventBus, freshness, time.Duration(generationTimeout)*time.Second)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	scanHandler := handlers.NewScanHandler(log, scanService)
	productHandler := handlers.NewProductHandler(log, productService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ScanHandler:    scanHandler,
		ProductHandler: productHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
