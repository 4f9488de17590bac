package services

import (
	"math"

	"quizhub/models"
)

// passThreshold is the fixed passing percentage. Not configurable per quiz.
const passThreshold = 60.0

// SubmittedAnswer is one answer in a submit request. SelectedOptionID is set
// for choice questions; TextAnswer carries free text for text questions.
type SubmittedAnswer struct {
	QuestionID       uint    `json:"question_id" binding:"required"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	TextAnswer       *string `json:"text_answer"`
}

// ScoreAnswer decides whether a submitted answer is correct and how many
// points it earns. An answer is correct only when it selected an existing
// option flagged is_correct; free-text answers are recorded but never
// auto-graded. Points come from the question, or zero when the submitted
// question id did not resolve.
func ScoreAnswer(answer SubmittedAnswer, question *models.Question, option *models.AnswerOption) (bool, int) {
	if answer.SelectedOptionID == nil {
		return false, 0
	}
	if option == nil || !option.IsCorrect {
		return false, 0
	}
	if question == nil {
		return true, 0
	}
	return true, question.Points
}

// correctOptionText returns the text of the first option flagged correct, in
// option order, or nil when none is flagged. Options must already be sorted.
func correctOptionText(options []models.AnswerOption) *string {
	for i := range options {
		if options[i].IsCorrect {
			return &options[i].OptionText
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
