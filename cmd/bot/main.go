package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"signal-bot-backend/internal/bot"
	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/handlers"
	"signal-bot-backend/internal/middleware"
	"signal-bot-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	if cfg.RefLink != "" {
		if err := redisService.SeedSetting(services.SettingRefLink, cfg.RefLink); err != nil {
			log.Fatalf("Failed to seed referral link: %v", err)
		}
	}

	userService, err := services.NewUserService(cfg)
	if err != nil {
		log.Fatalf("Failed to open user registry: %v", err)
	}

	api, err := bot.NewAPI(cfg)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}

	policy := services.NewAccessPolicy(cfg.OwnerID, userService)
	core := services.NewCore(userService, redisService, redisService, policy, bot.NewTelegramDeliverer(api))

	feedHandler := handlers.NewSignalFeedHandler()
	core.SetSignalSink(feedHandler)

	go bot.New(api, core, redisService, cfg).Start()

	jwtService := services.NewJWTService(cfg)
	authHandler := handlers.NewAuthHandler(jwtService, cfg.AdminToken, cfg.OwnerID)
	userHandler := handlers.NewUserHandler(core)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/auth/owner", authHandler.Authenticate)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/users", userHandler.ListUsers)
		protected.POST("/users/:id/approve", userHandler.Approve)
		protected.POST("/users/:id/reject", userHandler.Reject)
		protected.POST("/broadcast", userHandler.Broadcast)
		protected.PUT("/referral", userHandler.SetReferral)

		protected.GET("/ws", feedHandler.HandleWebSocket)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
