package models

import "time"

// Lesson is a single unit inside a course, ordered by Position.
type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index:ux_lessons_course_position,unique,priority:1" json:"course_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Position    int       `gorm:"not null;index:ux_lessons_course_position,unique,priority:2" json:"position"`
	VideoURL    string    `gorm:"type:varchar(512);default:''" json:"video_url"`
	ViewCount   int64     `gorm:"default:0" json:"view_count"`
	DurationSec int       `gorm:"default:0" json:"duration_sec"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
