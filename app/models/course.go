package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Course is an academy course. RequiredTier gates access through the
// entitlements package; free courses use tier "free".
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=3,max=200"`
	Slug         string         `gorm:"type:varchar(200);not null;uniqueIndex" json:"slug" validate:"required,max=200"`
	Description  string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Tags         string         `gorm:"type:varchar(500);default:''" json:"tags"`
	RequiredTier string         `gorm:"type:varchar(50);not null;default:'free';index" json:"required_tier"`
	Published    bool           `gorm:"default:false;index" json:"published"`
	ViewCount    int64          `gorm:"default:0" json:"view_count"`
	Lessons      []Lesson       `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Course) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
