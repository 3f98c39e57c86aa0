package model

import "time"

// AttemptResult is the per-question grading record for a finalized attempt.
// Exactly one row per linked quiz question, written at submission time and
// never mutated. StudentAnswer nil means the question was left unanswered.
type AttemptResult struct {
	ID            uint     `gorm:"primarykey" json:"id"`
	AttemptID     uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID    uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Question      Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	StudentAnswer *string  `json:"student_answer,omitempty"`
	CorrectAnswer string   `json:"correct_answer" gorm:"not null"`
	IsCorrect     bool     `json:"is_correct"`
	MarksAwarded  float64  `json:"marks_awarded"`

	CreatedAt time.Time `json:"created_at"`
}
