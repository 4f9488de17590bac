package services

import (
	"testing"

	"quizhub/models"
)

func TestScoreAnswer(t *testing.T) {
	question := &models.Question{ID: 1, Points: 2}
	correct := &models.AnswerOption{ID: 5, QuestionID: 1, IsCorrect: true}
	wrong := &models.AnswerOption{ID: 6, QuestionID: 1, IsCorrect: false}

	tests := []struct {
		name        string
		answer      SubmittedAnswer
		question    *models.Question
		option      *models.AnswerOption
		wantCorrect bool
		wantPoints  int
	}{
		{
			name:        "correct option earns question points",
			answer:      SubmittedAnswer{QuestionID: 1, SelectedOptionID: uintPtr(5)},
			question:    question,
			option:      correct,
			wantCorrect: true,
			wantPoints:  2,
		},
		{
			name:        "wrong option earns nothing",
			answer:      SubmittedAnswer{QuestionID: 1, SelectedOptionID: uintPtr(6)},
			question:    question,
			option:      wrong,
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name:        "unknown option id is incorrect",
			answer:      SubmittedAnswer{QuestionID: 1, SelectedOptionID: uintPtr(99)},
			question:    question,
			option:      nil,
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name:        "no selection is never correct",
			answer:      SubmittedAnswer{QuestionID: 1},
			question:    question,
			option:      nil,
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name:        "free text is recorded but not graded",
			answer:      SubmittedAnswer{QuestionID: 1, TextAnswer: strPtr("Paris")},
			question:    question,
			option:      nil,
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name:        "correct option with unresolved question earns zero points",
			answer:      SubmittedAnswer{QuestionID: 42, SelectedOptionID: uintPtr(5)},
			question:    nil,
			option:      correct,
			wantCorrect: true,
			wantPoints:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotCorrect, gotPoints := ScoreAnswer(tc.answer, tc.question, tc.option)
			if gotCorrect != tc.wantCorrect || gotPoints != tc.wantPoints {
				t.Fatalf("ScoreAnswer = (%v, %d), want (%v, %d)", gotCorrect, gotPoints, tc.wantCorrect, tc.wantPoints)
			}
		})
	}
}

func TestCorrectOptionText(t *testing.T) {
	options := []models.AnswerOption{
		{OptionText: "A", IsCorrect: false},
		{OptionText: "B", IsCorrect: true},
		{OptionText: "C", IsCorrect: true},
	}

	got := correctOptionText(options)
	if got == nil || *got != "B" {
		t.Fatalf("expected first flagged option B, got %v", got)
	}

	if got := correctOptionText(options[:1]); got != nil {
		t.Fatalf("expected nil for no flagged option, got %q", *got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.67},
		{33.333333, 33.33},
		{100.0, 100.0},
		{0.005, 0.01},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
