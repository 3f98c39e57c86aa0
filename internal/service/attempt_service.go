package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Margays/internal/apperr"
	"github.com/lshigami/Margays/internal/auth"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService orchestrates the attempt lifecycle: start, question
// delivery, submission with grading, and proctoring blocks. Every read and
// write on an attempt verifies ownership first; attempt IDs are enumerable.
type AttemptService interface {
	Start(identity auth.Identity, req dto.StartAttemptRequest) (*dto.AttemptStartedDTO, error)
	GetQuestions(identity auth.Identity, attemptID uint) ([]dto.ExamQuestionDTO, error)
	Submit(identity auth.Identity, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmissionResultDTO, error)
	Block(identity auth.Identity, attemptID uint, req dto.BlockAttemptRequest) (*dto.BlockedDTO, error)
	GetResult(identity auth.Identity, attemptID uint) (*dto.AttemptResultDTO, error)
}

type attemptService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	resultRepo   repository.ResultRepository
	grading      GradingService
	db           *gorm.DB
}

func NewAttemptService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	resultRepo repository.ResultRepository,
	grading GradingService,
	db *gorm.DB,
) AttemptService {
	return &attemptService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		resultRepo:   resultRepo,
		grading:      grading,
		db:           db,
	}
}

// Start opens a new attempt on a published quiz. A second start for the same
// (student, quiz) while one is in progress fails with a conflict; clients
// recover the running attempt through their attempt list, not by restarting.
func (s *attemptService) Start(identity auth.Identity, req dto.StartAttemptRequest) (*dto.AttemptStartedDTO, error) {
	quiz, err := s.quizRepo.FindByID(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz not found")
		}
		log.Error().Err(err).Uint("quizID", req.QuizID).Msg("Start: failed to load quiz")
		return nil, apperr.Internal("failed to load quiz", err)
	}
	// Draft quizzes are indistinguishable from missing ones on this path.
	if quiz.Status != model.QuizStatusPublished {
		return nil, apperr.NotFound("quiz not found")
	}

	now := time.Now()
	if quiz.AvailableFrom != nil && now.Before(*quiz.AvailableFrom) {
		return nil, apperr.Conflict("quiz is not open yet")
	}
	if quiz.AvailableTo != nil && now.After(*quiz.AvailableTo) {
		return nil, apperr.Conflict("quiz is no longer available")
	}

	attempt := model.ExamAttempt{
		QuizID:            quiz.ID,
		StudentID:         identity.StudentID,
		Status:            model.AttemptStatusInProgress,
		StartTime:         now,
		ProctorSessionID:  uuid.NewString(),
		VerificationImage: req.VerificationImage,
		RoomID:            req.RoomID,
		SystemID:          req.SystemID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		_, findErr := s.attemptRepo.FindActiveByStudentAndQuiz(tx, identity.StudentID, quiz.ID)
		if findErr == nil {
			return apperr.Conflict("an active attempt already exists for this quiz")
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return apperr.Internal("failed to check for active attempt", findErr)
		}
		if createErr := s.attemptRepo.Create(tx, &attempt); createErr != nil {
			// The partial unique index on (student, quiz, in_progress) is the
			// serialization point for concurrent starts: the loser of the race
			// lands here instead of in the pre-check above.
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("an active attempt already exists for this quiz")
			}
			return apperr.Internal("failed to create attempt", createErr)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quiz.ID).Uint("studentID", identity.StudentID).Msg("Start: attempt not created")
		return nil, err
	}

	log.Info().
		Uint("attemptID", attempt.ID).
		Uint("quizID", quiz.ID).
		Uint("studentID", identity.StudentID).
		Str("proctorSessionID", attempt.ProctorSessionID).
		Msg("Attempt started")

	return &dto.AttemptStartedDTO{
		AttemptID:        attempt.ID,
		QuizID:           quiz.ID,
		QuizTitle:        quiz.Title,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		StartTime:        attempt.StartTime,
		ProctorSessionID: attempt.ProctorSessionID,
	}, nil
}

// GetQuestions delivers the quiz's questions in question_order. The response
// DTO carries no correct-option field, so the answer key cannot leak here.
func (s *attemptService) GetQuestions(identity auth.Identity, attemptID uint) ([]dto.ExamQuestionDTO, error) {
	attempt, err := s.loadOwnedAttempt(nil, identity, attemptID)
	if err != nil {
		return nil, err
	}

	links, err := s.questionRepo.FindLinkedByQuizID(attempt.QuizID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", attempt.QuizID).Msg("GetQuestions: failed to load linked questions")
		return nil, apperr.Internal("failed to load questions", err)
	}

	questions := make([]dto.ExamQuestionDTO, 0, len(links))
	for _, link := range links {
		var q dto.ExamQuestionDTO
		if err := copier.Copy(&q, &link.Question); err != nil {
			return nil, apperr.Internal("failed to map question", err)
		}
		q.QuestionID = link.QuestionID
		q.QuestionOrder = link.QuestionOrder
		questions = append(questions, q)
	}
	return questions, nil
}

// Submit grades the attempt and finalizes it in one transaction. The guarded
// status update is the serialization point: of two concurrent submits exactly
// one sees a row change, the other gets a conflict and the transaction rolls
// back before any result row becomes visible.
func (s *attemptService) Submit(identity auth.Identity, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmissionResultDTO, error) {
	answers := make(map[uint]string, len(req.Answers))
	for _, entry := range req.Answers {
		answers[entry.QuestionID] = entry.Answer
	}

	var summary dto.SubmissionResultDTO
	err := s.db.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.loadOwnedAttempt(tx, identity, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != model.AttemptStatusInProgress {
			return apperr.Conflict("attempt is already finalized")
		}

		links, err := s.questionRepo.FindLinkedByQuizID(attempt.QuizID)
		if err != nil {
			return apperr.Internal("failed to load answer key", err)
		}
		if len(links) == 0 {
			return apperr.Conflict("quiz has no questions")
		}

		key := make([]AnswerKeyEntry, 0, len(links))
		for _, link := range links {
			key = append(key, AnswerKeyEntry{
				QuestionID:    link.QuestionID,
				CorrectOption: link.Question.CorrectOption,
				Marks:         link.Question.Marks,
			})
		}

		graded := s.grading.Grade(key, answers)

		now := time.Now()
		if attempt.Quiz.TimeLimitMinutes > 0 {
			deadline := attempt.StartTime.Add(time.Duration(attempt.Quiz.TimeLimitMinutes) * time.Minute)
			if now.After(deadline) {
				// Late submissions are accepted; the client timer is trusted.
				log.Warn().
					Uint("attemptID", attempt.ID).
					Time("deadline", deadline).
					Msg("Submit: attempt finalized after its time limit")
			}
		}

		rows, err := s.attemptRepo.Finalize(tx, attempt.ID, map[string]interface{}{
			"status":           model.AttemptStatusSubmitted,
			"end_time":         now,
			"total_score":      graded.TotalScore,
			"correct_count":    graded.CorrectCount,
			"incorrect_count":  graded.IncorrectCount,
			"unanswered_count": graded.UnansweredCount,
		})
		if err != nil {
			return apperr.Internal("failed to finalize attempt", err)
		}
		if rows == 0 {
			return apperr.Conflict("attempt was already finalized")
		}

		results := make([]model.AttemptResult, 0, len(graded.Results))
		for _, gq := range graded.Results {
			results = append(results, model.AttemptResult{
				AttemptID:     attempt.ID,
				QuestionID:    gq.QuestionID,
				StudentAnswer: gq.Answer,
				CorrectAnswer: gq.CorrectOption,
				IsCorrect:     gq.IsCorrect,
				MarksAwarded:  gq.MarksAwarded,
			})
		}
		if err := s.resultRepo.CreateBatch(tx, results); err != nil {
			return apperr.Internal("failed to persist results", err)
		}

		summary = dto.SubmissionResultDTO{
			AttemptID:       attempt.ID,
			TotalScore:      graded.TotalScore,
			CorrectCount:    graded.CorrectCount,
			IncorrectCount:  graded.IncorrectCount,
			UnansweredCount: graded.UnansweredCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("attemptID", summary.AttemptID).
		Float64("totalScore", summary.TotalScore).
		Int("correct", summary.CorrectCount).
		Msg("Attempt submitted and graded")
	return &summary, nil
}

// Block finalizes the attempt without grading. The transition is terminal:
// blocking an already-finalized attempt fails with a conflict.
func (s *attemptService) Block(identity auth.Identity, attemptID uint, req dto.BlockAttemptRequest) (*dto.BlockedDTO, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperr.Validation("block reason is required")
	}

	var blocked dto.BlockedDTO
	err := s.db.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.loadOwnedAttempt(tx, identity, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != model.AttemptStatusInProgress {
			return apperr.Conflict("attempt is already finalized")
		}

		now := time.Now()
		rows, err := s.attemptRepo.Finalize(tx, attempt.ID, map[string]interface{}{
			"status":          model.AttemptStatusBlocked,
			"end_time":        now,
			"block_reason":    reason,
			"violation_count": gorm.Expr("violation_count + 1"),
		})
		if err != nil {
			return apperr.Internal("failed to block attempt", err)
		}
		if rows == 0 {
			return apperr.Conflict("attempt was already finalized")
		}

		blocked = dto.BlockedDTO{
			AttemptID: attempt.ID,
			Status:    model.AttemptStatusBlocked,
			Reason:    reason,
			EndTime:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Warn().
		Uint("attemptID", blocked.AttemptID).
		Str("reason", reason).
		Uint("studentID", identity.StudentID).
		Msg("Attempt blocked for proctoring violation")
	return &blocked, nil
}

// GetResult returns the graded detail view of a finalized attempt, questions
// in quiz order.
func (s *attemptService) GetResult(identity auth.Identity, attemptID uint) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithResults(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt not found")
		}
		return nil, apperr.Internal("failed to load attempt", err)
	}
	if attempt.StudentID != identity.StudentID {
		return nil, apperr.Forbidden("attempt belongs to another student")
	}
	if !attempt.IsTerminal() {
		return nil, apperr.Conflict("attempt is still in progress")
	}

	links, err := s.questionRepo.FindLinkedByQuizID(attempt.QuizID)
	if err != nil {
		return nil, apperr.Internal("failed to load question order", err)
	}
	orderByQuestion := make(map[uint]int, len(links))
	for _, link := range links {
		orderByQuestion[link.QuestionID] = link.QuestionOrder
	}

	var resp dto.AttemptResultDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, apperr.Internal("failed to map attempt", err)
	}
	resp.AttemptID = attempt.ID
	resp.QuizTitle = attempt.Quiz.Title

	resp.Questions = make([]dto.QuestionResultDTO, 0, len(attempt.Results))
	for _, result := range attempt.Results {
		resp.Questions = append(resp.Questions, dto.QuestionResultDTO{
			QuestionID:    result.QuestionID,
			QuestionOrder: orderByQuestion[result.QuestionID],
			Text:          result.Question.Text,
			StudentAnswer: result.StudentAnswer,
			CorrectAnswer: result.CorrectAnswer,
			IsCorrect:     result.IsCorrect,
			MarksAwarded:  result.MarksAwarded,
			Marks:         result.Question.Marks,
		})
	}
	sort.SliceStable(resp.Questions, func(i, j int) bool {
		return resp.Questions[i].QuestionOrder < resp.Questions[j].QuestionOrder
	})

	return &resp, nil
}

// loadOwnedAttempt fetches an attempt and enforces ownership. Missing
// attempts map to not-found, foreign attempts to forbidden; the checks run
// before any write on every lifecycle path.
func (s *attemptService) loadOwnedAttempt(tx *gorm.DB, identity auth.Identity, attemptID uint) (*model.ExamAttempt, error) {
	attempt, err := s.attemptRepo.FindByID(tx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt not found")
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Failed to load attempt")
		return nil, apperr.Internal("failed to load attempt", err)
	}
	if attempt.StudentID != identity.StudentID {
		log.Warn().
			Uint("attemptID", attemptID).
			Uint("ownerID", attempt.StudentID).
			Uint("callerID", identity.StudentID).
			Msg("Ownership check failed for attempt")
		return nil, apperr.Forbidden("attempt belongs to another student")
	}
	return attempt, nil
}
