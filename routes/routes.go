package routes

import (
	"quizhub/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	quizHandler *handlers.QuizHandler,
	attemptHandler *handlers.AttemptHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := router.Group("/api/v1")
	{
		quiz := api.Group("/quiz")
		{
			quiz.GET("/", quizHandler.GetQuizzes)
			quiz.POST("/", quizHandler.CreateQuiz)
			quiz.GET("/categories/", quizHandler.GetCategories)
			quiz.GET("/:id", quizHandler.GetQuiz)
			quiz.PUT("/:id", quizHandler.UpdateQuiz)
			quiz.DELETE("/:id", quizHandler.DeleteQuiz)
			quiz.GET("/:id/stats", quizHandler.GetQuizStats)
			quiz.POST("/:id/question/", quizHandler.CreateQuestion)
			quiz.PUT("/question/:id", quizHandler.UpdateQuestion)
			quiz.DELETE("/question/:id", quizHandler.DeleteQuestion)
		}

		attempt := api.Group("/attempt")
		{
			attempt.POST("/", attemptHandler.StartAttempt)
			attempt.GET("/:id", attemptHandler.GetAttempt)
			attempt.POST("/:id/submit", attemptHandler.SubmitAnswers)
			attempt.GET("/:id/results", attemptHandler.GetResults)
			attempt.PUT("/:id/time", attemptHandler.UpdateTime)
			attempt.DELETE("/:id", attemptHandler.DeleteAttempt)
		}
	}

	// Health check endpoint
	router.GET("/health", healthHandler.Check)
}
