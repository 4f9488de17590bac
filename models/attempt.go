package models

import (
	"time"
)

// QuizAttempt is one participant's run through a quiz. TotalQuestions is a
// snapshot of the quiz's question count taken when the attempt starts; later
// quiz edits never change it. IsCompleted flips false→true exactly once, at
// answer submission, and no writes are accepted afterwards.
type QuizAttempt struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	QuizID           uint       `json:"quiz_id" gorm:"not null;index"`
	ParticipantName  string     `json:"participant_name" gorm:"size:255"`
	ParticipantEmail string     `json:"participant_email" gorm:"size:255"`
	Score            int        `json:"score" gorm:"not null"`
	TotalQuestions   int        `json:"total_questions" gorm:"not null"`
	TimeTaken        int        `json:"time_taken" gorm:"not null"` // seconds
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	IsCompleted      bool       `json:"is_completed" gorm:"not null;index"`

	// Relationships
	Answers []UserAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}
