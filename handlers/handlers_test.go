package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quizhub/handlers"
	"quizhub/models"
	"quizhub/routes"
	"quizhub/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "quizhub.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.AnswerOption{},
		&models.QuizAttempt{},
		&models.UserAnswer{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cache := services.NewStatsCache(redisClient, time.Minute)
	quizService := services.NewQuizService(db, cache)
	attemptService := services.NewAttemptService(db, cache)
	statsService := services.NewStatsService(db, cache)

	router := gin.New()
	routes.SetupRoutes(
		router,
		handlers.NewQuizHandler(quizService, statsService),
		handlers.NewAttemptHandler(attemptService),
		handlers.NewHealthHandler(db, redisClient),
	)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createQuiz(t *testing.T, router *gin.Engine) models.Quiz {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/quiz/", map[string]interface{}{
		"title":    "HTTP quiz",
		"category": "General",
		"questions": []map[string]interface{}{
			{
				"question_text": "Capital of France?",
				"points":        2,
				"options": []map[string]interface{}{
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Lyon"},
				},
			},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz returned %d: %s", rec.Code, rec.Body.String())
	}

	var quiz models.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quiz); err != nil {
		t.Fatalf("decoding quiz: %v", err)
	}
	return quiz
}

func TestQuizEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	quiz := createQuiz(t, router)

	// Public read strips correctness flags entirely.
	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/quiz/%d", quiz.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get quiz returned %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "is_correct") {
		t.Fatalf("public quiz leaks ground truth: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/quiz/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list quizzes returned %d", rec.Code)
	}
	var summaries []services.QuizSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decoding summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].QuestionCount != 1 {
		t.Fatalf("unexpected listing: %+v", summaries)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/quiz/categories/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "General") {
		t.Fatalf("categories returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/quiz/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing quiz, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/quiz/", map[string]interface{}{"description": "no title"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing title, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/quiz/%d", quiz.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete quiz returned %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/quiz/%d", quiz.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", rec.Code)
	}
}

func TestAttemptEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	quiz := createQuiz(t, router)

	question := quiz.Questions[0]
	var correctID uint
	for _, option := range question.Options {
		if option.IsCorrect {
			correctID = option.ID
		}
	}
	if correctID == 0 {
		t.Fatalf("no correct option in created quiz")
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/attempt/", map[string]interface{}{
		"quiz_id":          quiz.ID,
		"participant_name": "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start attempt returned %d: %s", rec.Code, rec.Body.String())
	}
	var attempt models.QuizAttempt
	if err := json.Unmarshal(rec.Body.Bytes(), &attempt); err != nil {
		t.Fatalf("decoding attempt: %v", err)
	}
	if attempt.TotalQuestions != 1 {
		t.Fatalf("expected snapshot of 1 question, got %d", attempt.TotalQuestions)
	}

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/attempt/%d/time", attempt.ID), map[string]interface{}{"time_taken": -5})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative time, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/attempt/%d/time", attempt.ID), map[string]interface{}{"time_taken": 30})
	if rec.Code != http.StatusOK {
		t.Fatalf("time update returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/attempt/%d/submit", attempt.ID), map[string]interface{}{
		"answers": []map[string]interface{}{
			{"question_id": question.ID, "selected_option_id": correctID},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", rec.Code, rec.Body.String())
	}

	// A second submit hits the completed state machine guard.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/attempt/%d/submit", attempt.ID), map[string]interface{}{
		"answers": []map[string]interface{}{
			{"question_id": question.ID, "selected_option_id": correctID},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on double submit, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/attempt/%d/results", attempt.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results returned %d: %s", rec.Code, rec.Body.String())
	}
	var result services.QuizResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Score != 2 || result.Percentage != 100.0 || !result.IsPassed {
		t.Fatalf("unexpected result: %+v", result)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/quiz/%d/stats", quiz.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats returned %d: %s", rec.Code, rec.Body.String())
	}
	var stats services.QuizStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.TotalAttempts != 1 || stats.PassRate != 100.0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/attempt/%d", attempt.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete attempt returned %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/attempt/%d", attempt.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/attempt/not-a-number", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}
