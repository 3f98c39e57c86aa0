package service

import (
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Margays/internal/apperr"
	"github.com/lshigami/Margays/internal/auth"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizCatalogService is the student-visible read path over quiz reference
// data: published quizzes of the caller's course only.
type QuizCatalogService interface {
	ListAvailableQuizzes(identity auth.Identity) ([]dto.QuizSummaryDTO, error)
	GetQuizOverview(identity auth.Identity, quizID uint) (*dto.QuizSummaryDTO, error)
}

type quizCatalogService struct {
	quizRepo repository.QuizRepository
}

func NewQuizCatalogService(quizRepo repository.QuizRepository) QuizCatalogService {
	return &quizCatalogService{quizRepo: quizRepo}
}

func (s *quizCatalogService) ListAvailableQuizzes(identity auth.Identity) ([]dto.QuizSummaryDTO, error) {
	quizzes, err := s.quizRepo.FindAvailableByCourse(identity.CourseID, time.Now())
	if err != nil {
		log.Error().Err(err).Uint("courseID", identity.CourseID).Msg("Failed to list available quizzes")
		return nil, apperr.Internal("failed to list quizzes", err)
	}

	summaries := make([]dto.QuizSummaryDTO, 0, len(quizzes))
	for _, quiz := range quizzes {
		var summary dto.QuizSummaryDTO
		if err := copier.Copy(&summary, &quiz.Quiz); err != nil {
			return nil, apperr.Internal("failed to map quiz", err)
		}
		summary.QuestionCount = quiz.QuestionCount
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *quizCatalogService) GetQuizOverview(identity auth.Identity, quizID uint) (*dto.QuizSummaryDTO, error) {
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz not found")
		}
		return nil, apperr.Internal("failed to load quiz", err)
	}
	// Drafts and foreign-course quizzes are invisible to students.
	if quiz.Status != model.QuizStatusPublished || quiz.CourseID != identity.CourseID {
		return nil, apperr.NotFound("quiz not found")
	}

	count, err := s.quizRepo.CountQuestions(quiz.ID)
	if err != nil {
		return nil, apperr.Internal("failed to count questions", err)
	}

	var summary dto.QuizSummaryDTO
	if err := copier.Copy(&summary, quiz); err != nil {
		return nil, apperr.Internal("failed to map quiz", err)
	}
	summary.QuestionCount = int(count)
	return &summary, nil
}
