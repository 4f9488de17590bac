package services

import (
	"fmt"
	"log"

	"quizhub/models"

	"gorm.io/gorm"
)

// SeedSampleData inserts a couple of demo quizzes through the regular
// authoring path. It is a no-op when any quiz already exists.
func SeedSampleData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Quiz{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting quizzes: %w", err)
	}
	if count > 0 {
		log.Printf("Skipping sample data seed, %d quizzes already present", count)
		return nil
	}

	quizzes := sampleQuizzes()
	service := NewQuizService(db, nil)
	for i := range quizzes {
		if _, err := service.CreateQuiz(&quizzes[i]); err != nil {
			return fmt.Errorf("seeding quiz %q: %w", quizzes[i].Title, err)
		}
	}

	log.Printf("Seeded %d sample quizzes", len(quizzes))
	return nil
}

func sampleQuizzes() []CreateQuizRequest {
	return []CreateQuizRequest{
		{
			Title:           "General Knowledge Basics",
			Description:     "A warm-up quiz covering a bit of everything.",
			Category:        "General",
			DifficultyLevel: models.DifficultyEasy,
			TimeLimit:       300,
			Questions: []CreateQuestionRequest{
				{
					QuestionText: "What is the capital of France?",
					QuestionType: models.QuestionTypeMultipleChoice,
					Points:       1,
					Explanation:  "Paris has been the capital of France since 987.",
					Options: []CreateOptionRequest{
						{OptionText: "Paris", IsCorrect: true, OptionOrder: 0},
						{OptionText: "Lyon", OptionOrder: 1},
						{OptionText: "Marseille", OptionOrder: 2},
						{OptionText: "Toulouse", OptionOrder: 3},
					},
				},
				{
					QuestionText: "The Pacific is the largest ocean on Earth.",
					QuestionType: models.QuestionTypeTrueFalse,
					Points:       1,
					Options: []CreateOptionRequest{
						{OptionText: "True", IsCorrect: true, OptionOrder: 0},
						{OptionText: "False", OptionOrder: 1},
					},
				},
				{
					QuestionText: "Name one programming language you enjoy and why.",
					QuestionType: models.QuestionTypeText,
					Points:       1,
					Explanation:  "Free-text answers are recorded for review, not graded.",
				},
			},
		},
		{
			Title:           "Computer Science Fundamentals",
			Description:     "Data structures, algorithms and a little history.",
			Category:        "Technology",
			DifficultyLevel: models.DifficultyMedium,
			TimeLimit:       600,
			Questions: []CreateQuestionRequest{
				{
					QuestionText: "Which data structure gives O(1) average lookup by key?",
					QuestionType: models.QuestionTypeMultipleChoice,
					Points:       2,
					Explanation:  "Hash tables trade memory for constant-time lookups.",
					Options: []CreateOptionRequest{
						{OptionText: "Hash table", IsCorrect: true, OptionOrder: 0},
						{OptionText: "Linked list", OptionOrder: 1},
						{OptionText: "Binary search tree", OptionOrder: 2},
						{OptionText: "Queue", OptionOrder: 3},
					},
				},
				{
					QuestionText: "Binary search requires the input to be sorted.",
					QuestionType: models.QuestionTypeTrueFalse,
					Points:       1,
					Options: []CreateOptionRequest{
						{OptionText: "True", IsCorrect: true, OptionOrder: 0},
						{OptionText: "False", OptionOrder: 1},
					},
				},
			},
		},
	}
}
