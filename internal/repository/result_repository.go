package repository

import (
	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

type ResultRepository interface {
	// CreateBatch inserts all result rows of one submission. Callers pass the
	// submission transaction so partial grading can never become visible.
	CreateBatch(db *gorm.DB, results []model.AttemptResult) error
	FindByAttemptID(attemptID uint) ([]model.AttemptResult, error)
	CountByAttemptID(attemptID uint) (int64, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) conn(db *gorm.DB) *gorm.DB {
	if db != nil {
		return db
	}
	return r.db
}

func (r *resultRepository) CreateBatch(db *gorm.DB, results []model.AttemptResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.conn(db).Create(&results).Error
}

func (r *resultRepository) FindByAttemptID(attemptID uint) ([]model.AttemptResult, error) {
	var results []model.AttemptResult
	err := r.db.Preload("Question").
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Find(&results).Error
	return results, err
}

func (r *resultRepository) CountByAttemptID(attemptID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.AttemptResult{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}
