package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"quizhub/models"

	"gorm.io/gorm"
)

type QuizService struct {
	db    *gorm.DB
	cache *StatsCache
}

func NewQuizService(db *gorm.DB, cache *StatsCache) *QuizService {
	return &QuizService{db: db, cache: cache}
}

type CreateQuizRequest struct {
	Title           string                  `json:"title" binding:"required"`
	Description     string                  `json:"description"`
	Category        string                  `json:"category"`
	DifficultyLevel string                  `json:"difficulty_level" binding:"omitempty,oneof=easy medium hard"`
	TimeLimit       int                     `json:"time_limit" binding:"omitempty,min=0"`
	IsActive        *bool                   `json:"is_active"`
	Questions       []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

type CreateQuestionRequest struct {
	QuestionText string                `json:"question_text" binding:"required"`
	QuestionType string                `json:"question_type" binding:"omitempty,oneof=multiple_choice true_false text"`
	Points       int                   `json:"points" binding:"omitempty,min=1"`
	Explanation  string                `json:"explanation"`
	Options      []CreateOptionRequest `json:"options" binding:"omitempty,dive"`
}

type CreateOptionRequest struct {
	OptionText  string `json:"option_text" binding:"required"`
	IsCorrect   bool   `json:"is_correct"`
	OptionOrder int    `json:"option_order" binding:"omitempty,min=0"`
}

// UpdateQuizRequest is a field-by-field patch: nil fields are left untouched.
type UpdateQuizRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	DifficultyLevel *string `json:"difficulty_level" binding:"omitempty,oneof=easy medium hard"`
	TimeLimit       *int    `json:"time_limit" binding:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active"`
}

type UpdateQuestionRequest struct {
	QuestionText *string `json:"question_text"`
	QuestionType *string `json:"question_type" binding:"omitempty,oneof=multiple_choice true_false text"`
	Points       *int    `json:"points" binding:"omitempty,min=1"`
	Explanation  *string `json:"explanation"`
}

// QuizSummary is the list-view shape: no questions, just their count.
type QuizSummary struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DifficultyLevel string `json:"difficulty_level"`
	TimeLimit       int    `json:"time_limit"`
	QuestionCount   int    `json:"question_count"`
}

// PublicOption is an answer option with the is_correct flag stripped.
type PublicOption struct {
	ID          uint   `json:"id"`
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}

type PublicQuestion struct {
	ID           uint           `json:"id"`
	QuestionText string         `json:"question_text"`
	QuestionType string         `json:"question_type"`
	Points       int            `json:"points"`
	Explanation  string         `json:"explanation,omitempty"`
	Options      []PublicOption `json:"options"`
}

// PublicQuiz is the participant-facing read shape: full questions, but no
// ground truth.
type PublicQuiz struct {
	ID              uint             `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	DifficultyLevel string           `json:"difficulty_level"`
	TimeLimit       int              `json:"time_limit"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	Questions       []PublicQuestion `json:"questions"`
}

// GetPublicQuiz returns a quiz with its questions for participants, with all
// correctness flags stripped.
func (s *QuizService) GetPublicQuiz(quizID uint) (*PublicQuiz, error) {
	quiz, err := s.GetQuizWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	public := &PublicQuiz{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		Category:        quiz.Category,
		DifficultyLevel: quiz.DifficultyLevel,
		TimeLimit:       quiz.TimeLimit,
		IsActive:        quiz.IsActive,
		CreatedAt:       quiz.CreatedAt,
		Questions:       make([]PublicQuestion, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		pq := PublicQuestion{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Points:       question.Points,
			Explanation:  question.Explanation,
			Options:      make([]PublicOption, 0, len(question.Options)),
		}
		for _, option := range question.Options {
			pq.Options = append(pq.Options, PublicOption{
				ID:          option.ID,
				OptionText:  option.OptionText,
				OptionOrder: option.OptionOrder,
			})
		}
		public.Questions = append(public.Questions, pq)
	}
	return public, nil
}

// CreateQuiz builds a quiz with its nested questions and options in one
// transaction. The quiz and each question are flushed first so children can
// reference their ids.
func (s *QuizService) CreateQuiz(req *CreateQuizRequest) (*models.Quiz, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	quiz := models.Quiz{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		DifficultyLevel: req.DifficultyLevel,
		TimeLimit:       req.TimeLimit,
		IsActive:        true,
	}
	if quiz.DifficultyLevel == "" {
		quiz.DifficultyLevel = models.DifficultyMedium
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating quiz: %w", err)
	}

	for _, qReq := range req.Questions {
		if _, err := createQuestionTx(tx, quiz.ID, &qReq); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing quiz create: %w", err)
	}

	log.Printf("Created quiz %d with %d questions", quiz.ID, len(req.Questions))
	return s.GetQuizWithQuestions(quiz.ID)
}

// createQuestionTx inserts one question and its options inside tx and
// returns the new question's id.
func createQuestionTx(tx *gorm.DB, quizID uint, req *CreateQuestionRequest) (uint, error) {
	question := models.Question{
		QuizID:       quizID,
		QuestionText: req.QuestionText,
		QuestionType: req.QuestionType,
		Points:       req.Points,
		Explanation:  req.Explanation,
	}
	if question.QuestionType == "" {
		question.QuestionType = models.QuestionTypeMultipleChoice
	}
	if question.Points <= 0 {
		question.Points = 1
	}

	if err := tx.Create(&question).Error; err != nil {
		return 0, fmt.Errorf("creating question: %w", err)
	}

	for _, optReq := range req.Options {
		option := models.AnswerOption{
			QuestionID:  question.ID,
			OptionText:  optReq.OptionText,
			IsCorrect:   optReq.IsCorrect,
			OptionOrder: optReq.OptionOrder,
		}
		if err := tx.Create(&option).Error; err != nil {
			return 0, fmt.Errorf("creating option: %w", err)
		}
	}
	return question.ID, nil
}

// GetQuizzes lists active quizzes with pagination and an optional category
// filter. Limit is capped at 100.
func (s *QuizService) GetQuizzes(skip, limit int, category string) ([]QuizSummary, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := s.db.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var quizzes []models.Quiz
	err := query.
		Preload("Questions").
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("fetching quizzes: %w", err)
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, QuizSummary{
			ID:              quiz.ID,
			Title:           quiz.Title,
			Description:     quiz.Description,
			Category:        quiz.Category,
			DifficultyLevel: quiz.DifficultyLevel,
			TimeLimit:       quiz.TimeLimit,
			QuestionCount:   len(quiz.Questions),
		})
	}
	return summaries, nil
}

// GetQuiz fetches a quiz without its associations.
func (s *QuizService) GetQuiz(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("fetching quiz %d: %w", quizID, err)
	}
	return &quiz, nil
}

// GetQuizWithQuestions fetches a quiz with ordered questions and options.
func (s *QuizService) GetQuizWithQuestions(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.option_order, answer_options.id")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("fetching quiz %d with questions: %w", quizID, err)
	}
	return &quiz, nil
}

// UpdateQuiz applies only the fields set in the patch.
func (s *QuizService) UpdateQuiz(quizID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Category != nil {
		quiz.Category = *req.Category
	}
	if req.DifficultyLevel != nil {
		quiz.DifficultyLevel = *req.DifficultyLevel
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.db.Save(quiz).Error; err != nil {
		return nil, fmt.Errorf("updating quiz %d: %w", quizID, err)
	}

	log.Printf("Updated quiz %d", quizID)
	s.cache.Invalidate(quizID)
	return quiz, nil
}

// DeleteQuiz removes a quiz and everything hanging off it: answers, attempts,
// options, questions, then the quiz itself, in one transaction.
func (s *QuizService) DeleteQuiz(quizID uint) error {
	if _, err := s.GetQuiz(quizID); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	attemptIDs := tx.Model(&models.QuizAttempt{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("attempt_id IN (?)", attemptIDs).Delete(&models.UserAnswer{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting answers for quiz %d: %w", quizID, err)
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizAttempt{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting attempts for quiz %d: %w", quizID, err)
	}

	questionIDs := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.AnswerOption{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting options for quiz %d: %w", quizID, err)
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting questions for quiz %d: %w", quizID, err)
	}

	if err := tx.Delete(&models.Quiz{}, quizID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting quiz %d: %w", quizID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing quiz delete: %w", err)
	}

	log.Printf("Deleted quiz %d", quizID)
	s.cache.Invalidate(quizID)
	return nil
}

// GetCategories returns the distinct non-empty categories of active quizzes.
func (s *QuizService) GetCategories() ([]string, error) {
	var categories []string
	err := s.db.Model(&models.Quiz{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return categories, nil
}

// CreateQuestion adds a question with its options to an existing quiz.
func (s *QuizService) CreateQuestion(quizID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.GetQuiz(quizID); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	questionID, err := createQuestionTx(tx, quizID, req)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("committing question create: %w", err)
	}

	var question models.Question
	err = s.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.option_order, answer_options.id")
		}).
		First(&question, questionID).Error
	if err != nil {
		return nil, fmt.Errorf("reloading created question: %w", err)
	}

	log.Printf("Created question %d for quiz %d", question.ID, quizID)
	s.cache.Invalidate(quizID)
	return &question, nil
}

// UpdateQuestion applies only the fields set in the patch.
func (s *QuizService) UpdateQuestion(questionID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("fetching question %d: %w", questionID, err)
	}

	if req.QuestionText != nil {
		question.QuestionText = *req.QuestionText
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}

	if err := s.db.Save(&question).Error; err != nil {
		return nil, fmt.Errorf("updating question %d: %w", questionID, err)
	}

	log.Printf("Updated question %d", questionID)
	s.cache.Invalidate(question.QuizID)
	return &question, nil
}

// DeleteQuestion removes a question, its options and any recorded answers
// pointing at it. Already-finalized attempt scores are not recomputed.
func (s *QuizService) DeleteQuestion(questionID uint) error {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrQuestionNotFound
		}
		return fmt.Errorf("fetching question %d: %w", questionID, err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("question_id = ?", questionID).Delete(&models.UserAnswer{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting answers for question %d: %w", questionID, err)
	}
	if err := tx.Where("question_id = ?", questionID).Delete(&models.AnswerOption{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting options for question %d: %w", questionID, err)
	}
	if err := tx.Delete(&models.Question{}, questionID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting question %d: %w", questionID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing question delete: %w", err)
	}

	log.Printf("Deleted question %d", questionID)
	s.cache.Invalidate(question.QuizID)
	return nil
}
