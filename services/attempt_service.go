package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"quizhub/models"

	"gorm.io/gorm"
)

type AttemptService struct {
	db    *gorm.DB
	cache *StatsCache
}

func NewAttemptService(db *gorm.DB, cache *StatsCache) *AttemptService {
	return &AttemptService{db: db, cache: cache}
}

type StartAttemptRequest struct {
	QuizID           uint   `json:"quiz_id" binding:"required"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email" binding:"omitempty,email"`
}

type SubmitAnswersRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}

type UpdateTimeRequest struct {
	TimeTaken int `json:"time_taken"`
}

// AnswerDetail is one line of a result report.
type AnswerDetail struct {
	Question      string  `json:"question"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer *string `json:"correct_answer"`
	Explanation   string  `json:"explanation"`
}

type QuizResult struct {
	AttemptID        uint           `json:"attempt_id"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"total_questions"`
	Percentage       float64        `json:"percentage"`
	TimeTaken        int            `json:"time_taken"`
	IsPassed         bool           `json:"is_passed"`
	CorrectAnswers   []AnswerDetail `json:"correct_answers"`
	IncorrectAnswers []AnswerDetail `json:"incorrect_answers"`
}

// unansweredPlaceholder is shown in results when a choice question had no
// selection and no text was given.
const unansweredPlaceholder = "Not answered"

// CreateAttempt starts a new attempt against an existing quiz. The quiz's
// question count is snapshotted into TotalQuestions at this instant.
func (s *AttemptService) CreateAttempt(req *StartAttemptRequest) (*models.QuizAttempt, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, req.QuizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("fetching quiz %d: %w", req.QuizID, err)
	}

	var questionCount int64
	if err := s.db.Model(&models.Question{}).Where("quiz_id = ?", req.QuizID).Count(&questionCount).Error; err != nil {
		return nil, fmt.Errorf("counting questions for quiz %d: %w", req.QuizID, err)
	}

	attempt := models.QuizAttempt{
		QuizID:           req.QuizID,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
		TotalQuestions:   int(questionCount),
		StartedAt:        time.Now().UTC(),
	}

	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("creating attempt: %w", err)
	}

	log.Printf("Created attempt %d for quiz %d", attempt.ID, req.QuizID)
	return &attempt, nil
}

func (s *AttemptService) GetAttempt(attemptID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := s.db.First(&attempt, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("fetching attempt %d: %w", attemptID, err)
	}
	return &attempt, nil
}

// UpdateTimeTaken records elapsed seconds on a running attempt. Completed
// attempts reject the update; negative durations are invalid.
func (s *AttemptService) UpdateTimeTaken(attemptID uint, seconds int) (*models.QuizAttempt, error) {
	if seconds < 0 {
		return nil, models.ErrNegativeTimeTaken
	}

	attempt, err := s.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted {
		return nil, models.ErrAttemptCompleted
	}

	if err := s.db.Model(attempt).Update("time_taken", seconds).Error; err != nil {
		return nil, fmt.Errorf("updating time for attempt %d: %w", attemptID, err)
	}
	attempt.TimeTaken = seconds

	log.Printf("Updated time taken for attempt %d to %ds", attemptID, seconds)
	return attempt, nil
}

// SubmitAnswers grades every submitted answer, persists one UserAnswer row
// per submission and finalizes the attempt, all in a single transaction.
// Duplicate answers for the same question are kept as-is, each graded on its
// own. Two racing submits are serialized only by the database's transaction
// isolation: the loser either fails the completed check or double-writes.
func (s *AttemptService) SubmitAnswers(attemptID uint, answers []SubmittedAnswer) (*models.QuizAttempt, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var attempt models.QuizAttempt
	if err := tx.First(&attempt, attemptID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("fetching attempt %d: %w", attemptID, err)
	}
	if attempt.IsCompleted {
		tx.Rollback()
		return nil, models.ErrAttemptCompleted
	}

	questions, options, err := loadGroundTruth(tx, answers)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	score := 0
	for _, answer := range answers {
		var question *models.Question
		if q, ok := questions[answer.QuestionID]; ok {
			question = q
		}
		var option *models.AnswerOption
		if answer.SelectedOptionID != nil {
			if o, ok := options[*answer.SelectedOptionID]; ok {
				option = o
			}
		}

		isCorrect, points := ScoreAnswer(answer, question, option)
		score += points

		record := models.UserAnswer{
			AttemptID:        attemptID,
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			TextAnswer:       answer.TextAnswer,
			IsCorrect:        isCorrect,
			AnsweredAt:       now,
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("recording answer for attempt %d: %w", attemptID, err)
		}
	}

	updates := map[string]interface{}{
		"score":        score,
		"completed_at": now,
		"is_completed": true,
	}
	if err := tx.Model(&attempt).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("finalizing attempt %d: %w", attemptID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing submission for attempt %d: %w", attemptID, err)
	}

	attempt.Score = score
	attempt.CompletedAt = &now
	attempt.IsCompleted = true

	log.Printf("Submitted %d answers for attempt %d, score %d", len(answers), attemptID, score)
	s.cache.Invalidate(attempt.QuizID)
	return &attempt, nil
}

// loadGroundTruth fetches the questions and options referenced by a batch of
// answers in two queries, keyed by id.
func loadGroundTruth(tx *gorm.DB, answers []SubmittedAnswer) (map[uint]*models.Question, map[uint]*models.AnswerOption, error) {
	questionIDs := make([]uint, 0, len(answers))
	optionIDs := make([]uint, 0, len(answers))
	for _, answer := range answers {
		questionIDs = append(questionIDs, answer.QuestionID)
		if answer.SelectedOptionID != nil {
			optionIDs = append(optionIDs, *answer.SelectedOptionID)
		}
	}

	questions := make(map[uint]*models.Question, len(questionIDs))
	if len(questionIDs) > 0 {
		var rows []models.Question
		if err := tx.Where("id IN ?", questionIDs).Find(&rows).Error; err != nil {
			return nil, nil, fmt.Errorf("fetching questions: %w", err)
		}
		for i := range rows {
			questions[rows[i].ID] = &rows[i]
		}
	}

	options := make(map[uint]*models.AnswerOption, len(optionIDs))
	if len(optionIDs) > 0 {
		var rows []models.AnswerOption
		if err := tx.Where("id IN ?", optionIDs).Find(&rows).Error; err != nil {
			return nil, nil, fmt.Errorf("fetching options: %w", err)
		}
		for i := range rows {
			options[rows[i].ID] = &rows[i]
		}
	}

	return questions, options, nil
}

// DeleteAttempt removes an attempt and its recorded answers.
func (s *AttemptService) DeleteAttempt(attemptID uint) error {
	attempt, err := s.GetAttempt(attemptID)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("attempt_id = ?", attemptID).Delete(&models.UserAnswer{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting answers for attempt %d: %w", attemptID, err)
	}
	if err := tx.Delete(&models.QuizAttempt{}, attemptID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting attempt %d: %w", attemptID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing attempt delete: %w", err)
	}

	log.Printf("Deleted attempt %d", attemptID)
	s.cache.Invalidate(attempt.QuizID)
	return nil
}

// GetResults builds the per-answer report for an attempt. The max score
// denominator is recomputed from the quiz's current questions, so it can
// diverge from the TotalQuestions snapshot if the quiz was edited after the
// attempt started.
func (s *AttemptService) GetResults(attemptID uint) (*QuizResult, error) {
	var attempt models.QuizAttempt
	err := s.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("user_answers.id")
		}).
		Preload("Answers.Question").
		Preload("Answers.Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.option_order, answer_options.id")
		}).
		Preload("Answers.SelectedOption").
		First(&attempt, attemptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("fetching attempt %d with answers: %w", attemptID, err)
	}

	result := &QuizResult{
		AttemptID:        attempt.ID,
		Score:            attempt.Score,
		TotalQuestions:   attempt.TotalQuestions,
		TimeTaken:        attempt.TimeTaken,
		CorrectAnswers:   []AnswerDetail{},
		IncorrectAnswers: []AnswerDetail{},
	}

	for _, answer := range attempt.Answers {
		detail := AnswerDetail{
			Question:      answer.Question.QuestionText,
			UserAnswer:    displayedAnswer(&answer),
			CorrectAnswer: correctOptionText(answer.Question.Options),
			Explanation:   answer.Question.Explanation,
		}
		if answer.IsCorrect {
			result.CorrectAnswers = append(result.CorrectAnswers, detail)
		} else {
			result.IncorrectAnswers = append(result.IncorrectAnswers, detail)
		}
	}

	maxScore, err := quizMaxScore(s.db, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if maxScore > 0 {
		result.Percentage = round2(float64(attempt.Score) / float64(maxScore) * 100)
	}
	result.IsPassed = result.Percentage >= passThreshold

	return result, nil
}

// displayedAnswer picks what the participant's answer looks like in a report:
// the chosen option's text, else their free text, else a placeholder.
func displayedAnswer(answer *models.UserAnswer) string {
	if answer.SelectedOption != nil {
		return answer.SelectedOption.OptionText
	}
	if answer.TextAnswer != nil && *answer.TextAnswer != "" {
		return *answer.TextAnswer
	}
	return unansweredPlaceholder
}
