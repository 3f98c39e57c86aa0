package model

import (
	"time"

	"gorm.io/gorm"
)

// Question belongs to a question bank and is linked to quizzes through
// QuizQuestion. CorrectOption must never be serialized on the student path;
// student-facing DTOs simply have no field for it.
type Question struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	QuestionBankID uint           `json:"question_bank_id" gorm:"index"`
	Text           string         `json:"text" gorm:"type:text;not null"`
	OptionA        *string        `json:"option_a,omitempty"`
	OptionB        *string        `json:"option_b,omitempty"`
	OptionC        *string        `json:"option_c,omitempty"`
	OptionD        *string        `json:"option_d,omitempty"`
	CorrectOption  string         `json:"correct_option" gorm:"not null"`
	Marks          float64        `json:"marks" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuizQuestion is the ordered link row between a quiz and its questions.
// QuestionOrder is authoritative for delivery and for result rows.
type QuizQuestion struct {
	ID            uint     `gorm:"primarykey" json:"id"`
	QuizID        uint     `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_question"`
	QuestionID    uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_quiz_question"`
	Question      Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	QuestionOrder int      `json:"question_order" gorm:"not null"`
}
