package models

import "errors"

var (
	// ErrQuizNotFound indicates the requested quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotFound indicates the requested attempt does not exist.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrAttemptCompleted is returned when writing to an already finalized attempt.
	ErrAttemptCompleted = errors.New("quiz attempt already completed")
	// ErrNegativeTimeTaken rejects time updates with a negative duration.
	ErrNegativeTimeTaken = errors.New("time taken cannot be negative")
)
