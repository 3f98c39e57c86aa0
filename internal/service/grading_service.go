package service

import "strings"

// AnswerKeyEntry is one question of a quiz's answer key.
type AnswerKeyEntry struct {
	QuestionID    uint
	CorrectOption string
	Marks         float64
}

// GradedQuestion is the grading outcome for a single question. Answer is nil
// when the question was left unanswered.
type GradedQuestion struct {
	QuestionID    uint
	Answer        *string
	CorrectOption string
	IsCorrect     bool
	MarksAwarded  float64
}

// Graded aggregates a full submission. CorrectCount + IncorrectCount +
// UnansweredCount always equals the number of key entries.
type Graded struct {
	Results         []GradedQuestion
	TotalScore      float64
	CorrectCount    int
	IncorrectCount  int
	UnansweredCount int
}

// GradingService scores a submission against an answer key. It is a pure
// computation with no storage access.
type GradingService interface {
	Grade(key []AnswerKeyEntry, answers map[uint]string) Graded
}

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

// Grade iterates the answer key, not the submission, so unknown question IDs
// in the submission are ignored and every key entry yields exactly one
// result. Comparison is case-insensitive on trimmed strings: option labels
// like "A" and "a" must compare equal. Binary scoring only, no partial
// credit, no negative marking.
func (s *gradingService) Grade(key []AnswerKeyEntry, answers map[uint]string) Graded {
	graded := Graded{Results: make([]GradedQuestion, 0, len(key))}

	for _, entry := range key {
		result := GradedQuestion{
			QuestionID:    entry.QuestionID,
			CorrectOption: entry.CorrectOption,
		}

		raw, answered := answers[entry.QuestionID]
		if answered && strings.TrimSpace(raw) == "" {
			// Whitespace-only answers count as unanswered.
			answered = false
		}

		if !answered {
			graded.UnansweredCount++
			graded.Results = append(graded.Results, result)
			continue
		}

		answer := raw
		result.Answer = &answer
		if normalize(raw) == normalize(entry.CorrectOption) {
			result.IsCorrect = true
			result.MarksAwarded = entry.Marks
			graded.CorrectCount++
			graded.TotalScore += entry.Marks
		} else {
			graded.IncorrectCount++
		}
		graded.Results = append(graded.Results, result)
	}

	return graded
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
