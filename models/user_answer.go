package models

import (
	"time"
)

// UserAnswer records a single submitted answer. IsCorrect is computed once at
// submission time and never revised.
type UserAnswer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	AttemptID        uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID       uint      `json:"question_id" gorm:"not null;index"`
	SelectedOptionID *uint     `json:"selected_option_id"`
	TextAnswer       *string   `json:"text_answer" gorm:"type:text"`
	IsCorrect        bool      `json:"is_correct" gorm:"not null"`
	AnsweredAt       time.Time `json:"answered_at"`

	// Relationships
	Question       Question      `json:"question,omitempty" gorm:"foreignKey:QuestionID;references:ID"`
	SelectedOption *AnswerOption `json:"selected_option,omitempty" gorm:"foreignKey:SelectedOptionID;references:ID"`
}
