package repository

import (
	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(db *gorm.DB, attempt *model.ExamAttempt) error
	FindByID(db *gorm.DB, id uint) (*model.ExamAttempt, error)
	FindByIDWithResults(id uint) (*model.ExamAttempt, error)
	FindActiveByStudentAndQuiz(db *gorm.DB, studentID, quizID uint) (*model.ExamAttempt, error)
	// Finalize applies the terminal update guarded by status = in_progress in
	// the WHERE clause. The returned row count is the serialization point:
	// exactly one of two concurrent finalizers sees 1.
	Finalize(db *gorm.DB, attemptID uint, updates map[string]interface{}) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// conn lets callers run repository methods inside an ambient transaction by
// passing its *gorm.DB; nil means the repository's own connection.
func (r *attemptRepository) conn(db *gorm.DB) *gorm.DB {
	if db != nil {
		return db
	}
	return r.db
}

func (r *attemptRepository) Create(db *gorm.DB, attempt *model.ExamAttempt) error {
	return r.conn(db).Create(attempt).Error
}

func (r *attemptRepository) FindByID(db *gorm.DB, id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	if err := r.conn(db).Preload("Quiz").First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithResults(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.
		Preload("Quiz").
		Preload("Results.Question").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindActiveByStudentAndQuiz(db *gorm.DB, studentID, quizID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.conn(db).
		Where("student_id = ? AND quiz_id = ? AND status = ?", studentID, quizID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Finalize(db *gorm.DB, attemptID uint, updates map[string]interface{}) (int64, error) {
	res := r.conn(db).Model(&model.ExamAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptStatusInProgress).
		Updates(updates)
	return res.RowsAffected, res.Error
}
