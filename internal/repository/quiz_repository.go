package repository

import (
	"time"

	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

// QuizWithQuestionCount pairs a quiz with the number of linked questions for
// catalog listings.
type QuizWithQuestionCount struct {
	model.Quiz
	QuestionCount int
}

type QuizRepository interface {
	FindByID(id uint) (*model.Quiz, error)
	// FindAvailableByCourse lists published quizzes of a course whose
	// availability window covers the given instant. The window is evaluated
	// per query, never cached.
	FindAvailableByCourse(courseID uint, now time.Time) ([]QuizWithQuestionCount, error)
	CountQuestions(quizID uint) (int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.db.First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindAvailableByCourse(courseID uint, now time.Time) ([]QuizWithQuestionCount, error) {
	var results []QuizWithQuestionCount
	err := r.db.Model(&model.Quiz{}).
		Select("quizzes.*, (SELECT COUNT(*) FROM quiz_questions WHERE quiz_questions.quiz_id = quizzes.id) as question_count").
		Where("quizzes.course_id = ?", courseID).
		Where("quizzes.status = ?", model.QuizStatusPublished).
		Where("(quizzes.available_from IS NULL OR quizzes.available_from <= ?)", now).
		Where("(quizzes.available_to IS NULL OR quizzes.available_to >= ?)", now).
		Where("quizzes.deleted_at IS NULL").
		Order("quizzes.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *quizRepository) CountQuestions(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.QuizQuestion{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
