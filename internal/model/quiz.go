package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuizStatusDraft     = "draft"
	QuizStatusPublished = "published"
)

// Quiz is reference data owned by the academic-administration module; this
// service only reads it. A published quiz is treated as immutable.
type Quiz struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Title            string         `json:"title" gorm:"not null"`
	Description      string         `json:"description,omitempty"`
	CourseID         uint           `json:"course_id" gorm:"not null;index"`
	SubjectID        uint           `json:"subject_id" gorm:"index"`
	TimeLimitMinutes int            `json:"time_limit_minutes" gorm:"not null"`
	AvailableFrom    *time.Time     `json:"available_from,omitempty"`
	AvailableTo      *time.Time     `json:"available_to,omitempty"`
	Status           string         `json:"status" gorm:"not null;default:'draft';index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
