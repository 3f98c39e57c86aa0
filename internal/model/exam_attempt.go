package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
	AttemptStatusBlocked    = "blocked"
)

// ExamAttempt is one student's run at a quiz. At most one in_progress attempt
// may exist per (student, quiz): the partial unique index on (student, quiz)
// enforces it at the storage layer, so concurrent starts cannot both insert.
// Once submitted or blocked the row is terminal and never mutated again.
type ExamAttempt struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	QuizID    uint       `json:"quiz_id" gorm:"not null;index:idx_attempt_student_quiz;uniqueIndex:idx_one_active_attempt,where:status = 'in_progress' AND deleted_at IS NULL"`
	Quiz      Quiz       `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	StudentID uint       `json:"student_id" gorm:"not null;index:idx_attempt_student_quiz;uniqueIndex:idx_one_active_attempt,where:status = 'in_progress' AND deleted_at IS NULL"`
	Status    string     `json:"status" gorm:"not null;default:'in_progress';index"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	TotalScore      *float64 `json:"total_score,omitempty"`
	CorrectCount    int      `json:"correct_count"`
	IncorrectCount  int      `json:"incorrect_count"`
	UnansweredCount int      `json:"unanswered_count"`

	// Proctoring metadata, recorded as reported by the client.
	ProctorSessionID  string  `json:"proctor_session_id" gorm:"index"`
	VerificationImage *string `json:"verification_image,omitempty"`
	RoomID            *string `json:"room_id,omitempty"`
	SystemID          *string `json:"system_id,omitempty"`
	ViolationCount    int     `json:"violation_count"`
	BlockReason       *string `json:"block_reason,omitempty" gorm:"type:text"`

	Results []AttemptResult `json:"results,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsTerminal reports whether the attempt can no longer change state.
func (a *ExamAttempt) IsTerminal() bool {
	return a.Status == AttemptStatusSubmitted || a.Status == AttemptStatusBlocked
}
