package models

import (
	"time"
)

// Question types. Text questions are recorded but never auto-graded.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeText           = "text"
)

type Question struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	QuestionType string    `json:"question_type" gorm:"size:20;not null"`
	Points       int       `json:"points" gorm:"not null"`
	Explanation  string    `json:"explanation" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Options []AnswerOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}
