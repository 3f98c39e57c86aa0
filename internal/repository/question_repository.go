package repository

import (
	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByID(id uint) (*model.Question, error)
	// FindLinkedByQuizID returns the quiz's link rows with their questions
	// preloaded, in question_order. The order is authoritative.
	FindLinkedByQuizID(quizID uint) ([]model.QuizQuestion, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindLinkedByQuizID(quizID uint) ([]model.QuizQuestion, error) {
	var links []model.QuizQuestion
	err := r.db.Preload("Question").
		Where("quiz_id = ?", quizID).
		Order("question_order ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
