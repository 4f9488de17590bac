package services

import (
	"path/filepath"
	"testing"
	"time"

	"quizhub/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func newTestCache(t *testing.T) *StatsCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStatsCache(client, time.Minute)
}

// seedQuiz creates a quiz with one 2-point multiple choice question and
// returns the quiz, the question and its correct/wrong options.
func seedQuiz(t *testing.T, db *gorm.DB) (*models.Quiz, *models.Question, *models.AnswerOption, *models.AnswerOption) {
	t.Helper()

	service := NewQuizService(db, nil)
	quiz, err := service.CreateQuiz(&CreateQuizRequest{
		Title:    "Geography",
		Category: "General",
		Questions: []CreateQuestionRequest{
			{
				QuestionText: "Capital of France?",
				Points:       2,
				Explanation:  "Paris is the capital.",
				Options: []CreateOptionRequest{
					{OptionText: "Paris", IsCorrect: true, OptionOrder: 0},
					{OptionText: "Lyon", OptionOrder: 1},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("creating quiz: %v", err)
	}
	if len(quiz.Questions) != 1 || len(quiz.Questions[0].Options) != 2 {
		t.Fatalf("unexpected quiz shape: %+v", quiz)
	}

	question := &quiz.Questions[0]
	var correct, wrong *models.AnswerOption
	for i := range question.Options {
		if question.Options[i].IsCorrect {
			correct = &question.Options[i]
		} else {
			wrong = &question.Options[i]
		}
	}
	if correct == nil || wrong == nil {
		t.Fatalf("expected one correct and one wrong option, got %+v", question.Options)
	}
	return quiz, question, correct, wrong
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
