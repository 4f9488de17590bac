package models

type AnswerOption struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`
	OptionText  string `json:"option_text" gorm:"type:text;not null"`
	IsCorrect   bool   `json:"is_correct" gorm:"not null"`
	OptionOrder int    `json:"option_order" gorm:"not null"`
}
