package models

import (
	"time"
)

// Difficulty levels a quiz can be tagged with.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Quiz struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"size:255;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Category        string    `json:"category" gorm:"size:100;index"`
	DifficultyLevel string    `json:"difficulty_level" gorm:"size:20;not null"`
	TimeLimit       int       `json:"time_limit" gorm:"not null"` // seconds, 0 = unlimited
	IsActive        bool      `json:"is_active" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Questions []Question    `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Attempts  []QuizAttempt `json:"attempts,omitempty" gorm:"foreignKey:QuizID"`
}
