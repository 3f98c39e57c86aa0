package dto

import "time"

// QuizSummaryDTO is one row of the student-visible catalog.
type QuizSummaryDTO struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	AvailableFrom    *time.Time `json:"available_from,omitempty"`
	AvailableTo      *time.Time `json:"available_to,omitempty"`
	QuestionCount    int        `json:"question_count"`
}

// AttemptStartedDTO is the minimal payload a client needs to render the
// exam screen: title, timer and the proctor session handle.
type AttemptStartedDTO struct {
	AttemptID        uint      `json:"attempt_id"`
	QuizID           uint      `json:"quiz_id"`
	QuizTitle        string    `json:"quiz_title"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	StartTime        time.Time `json:"start_time"`
	ProctorSessionID string    `json:"proctor_session_id"`
}

// ExamQuestionDTO is a question as delivered to the student. It deliberately
// has no correct-option field.
type ExamQuestionDTO struct {
	QuestionID    uint    `json:"question_id"`
	QuestionOrder int     `json:"question_order"`
	Text          string  `json:"text"`
	OptionA       *string `json:"option_a,omitempty"`
	OptionB       *string `json:"option_b,omitempty"`
	OptionC       *string `json:"option_c,omitempty"`
	OptionD       *string `json:"option_d,omitempty"`
	Marks         float64 `json:"marks"`
}

// SubmissionResultDTO summarizes a graded submission.
type SubmissionResultDTO struct {
	AttemptID       uint    `json:"attempt_id"`
	TotalScore      float64 `json:"total_score"`
	CorrectCount    int     `json:"correct_count"`
	IncorrectCount  int     `json:"incorrect_count"`
	UnansweredCount int     `json:"unanswered_count"`
}

// BlockedDTO confirms a terminal block transition.
type BlockedDTO struct {
	AttemptID uint      `json:"attempt_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	EndTime   time.Time `json:"end_time"`
}

// QuestionResultDTO is one graded question inside an attempt detail view.
type QuestionResultDTO struct {
	QuestionID    uint    `json:"question_id"`
	QuestionOrder int     `json:"question_order"`
	Text          string  `json:"text"`
	StudentAnswer *string `json:"student_answer,omitempty"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	MarksAwarded  float64 `json:"marks_awarded"`
	Marks         float64 `json:"marks"`
}

// AttemptResultDTO is the full detail view of a finalized attempt.
type AttemptResultDTO struct {
	AttemptID       uint                `json:"attempt_id"`
	QuizID          uint                `json:"quiz_id"`
	QuizTitle       string              `json:"quiz_title,omitempty"`
	Status          string              `json:"status"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
	TotalScore      *float64            `json:"total_score,omitempty"`
	CorrectCount    int                 `json:"correct_count"`
	IncorrectCount  int                 `json:"incorrect_count"`
	UnansweredCount int                 `json:"unanswered_count"`
	BlockReason     *string             `json:"block_reason,omitempty"`
	Questions       []QuestionResultDTO `json:"questions,omitempty"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
