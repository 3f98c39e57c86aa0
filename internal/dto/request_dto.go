package dto

// StartAttemptRequest starts a proctored attempt on a published quiz.
// Proctoring fields are optional: they are recorded verbatim, never verified
// server-side.
type StartAttemptRequest struct {
	QuizID            uint    `json:"quiz_id" binding:"required"`
	VerificationImage *string `json:"verification_image,omitempty"`
	RoomID            *string `json:"room_id,omitempty"`
	SystemID          *string `json:"system_id,omitempty"`
}

// AnswerEntry is one submitted answer. Unanswered questions are simply
// omitted from the payload.
type AnswerEntry struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// SubmitAttemptRequest carries all answers for an attempt. An empty list is
// valid: every question is then graded as unanswered.
type SubmitAttemptRequest struct {
	Answers []AnswerEntry `json:"answers" binding:"dive"`
}

// BlockAttemptRequest records a client-detected proctoring violation.
type BlockAttemptRequest struct {
	Reason string `json:"reason" binding:"required"`
}
