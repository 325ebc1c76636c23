package models

import "time"

const (
	ProgressStatusStarted   = "started"
	ProgressStatusCompleted = "completed"
)

// LessonProgress tracks a user's progress through a lesson. One row per
// user+lesson pair; re-watching an already completed lesson never downgrades
// the status.
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:ux_lesson_progress_user_lesson,unique,priority:1" json:"user_id"`
	LessonID    uint       `gorm:"not null;index:ux_lesson_progress_user_lesson,unique,priority:2" json:"lesson_id"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Status      string     `gorm:"type:varchar(20);not null;default:'started'" json:"status"`
	CompletedAt *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
