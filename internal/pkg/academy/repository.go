package academy

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
)

// Repository provides DB operations used by the academy service.
type Repository interface {
	GetCourseByID(id uint) (*models.Course, error)
	GetCourseBySlug(slug string) (*models.Course, error)
	ListPublishedCourses(offset, limit int) ([]models.Course, error)
	SearchCourses(query string, offset, limit int) ([]models.Course, error)
	CountLessons(courseID uint) (int64, error)

	GetLesson(id uint) (*models.Lesson, error)
	GetProgress(userID, lessonID uint) (*models.LessonProgress, error)
	UpsertProgress(progress *models.LessonProgress) error
	ListProgressByCourse(userID, courseID uint) ([]models.LessonProgress, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an academy repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCourseByID(id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *gormRepository) GetCourseBySlug(slug string) (*models.Course, error) {
	var course models.Course
	if err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("slug = ?", slug).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *gormRepository) ListPublishedCourses(offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("published = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	return courses, err
}

// SearchCourses matches title, description and tags of published courses.
func (r *gormRepository) SearchCourses(query string, offset, limit int) ([]models.Course, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	var courses []models.Course
	err := r.db.Where("published = ?", true).
		Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *gormRepository) CountLessons(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *gormRepository) GetLesson(id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *gormRepository) GetProgress(userID, lessonID uint) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := r.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpsertProgress writes progress atomically on the user+lesson pair so a
// double-click on "complete" cannot produce two rows.
func (r *gormRepository) UpsertProgress(progress *models.LessonProgress) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"completed_at",
			"updated_at",
		}),
	}).Create(progress).Error; err != nil {
		return err
	}

	return r.db.Where("user_id = ? AND lesson_id = ?", progress.UserID, progress.LessonID).
		First(progress).Error
}

func (r *gormRepository) ListProgressByCourse(userID, courseID uint) ([]models.LessonProgress, error) {
	var list []models.LessonProgress
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&list).Error
	return list, err
}
