package main

import (
	"log"

	"quizhub/config"
	"quizhub/handlers"
	"quizhub/middleware"
	"quizhub/models"
	"quizhub/routes"
	"quizhub/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.AnswerOption{},
		&models.QuizAttempt{},
		&models.UserAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if cfg.SeedSampleData {
		if err := services.SeedSampleData(db); err != nil {
			log.Printf("Failed to seed sample data: %v", err)
		}
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	statsCache := services.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	quizService := services.NewQuizService(db, statsCache)
	attemptService := services.NewAttemptService(db, statsCache)
	statsService := services.NewStatsService(db, statsCache)

	// Initialize handlers
	quizHandler := handlers.NewQuizHandler(quizService, statsService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Setup routes
	routes.SetupRoutes(router, quizHandler, attemptHandler, healthHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
