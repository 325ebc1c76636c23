package academy

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

var (
	// ErrTierRequired means the member's tier does not cover the course.
	ErrTierRequired = errors.New("membership tier too low for this course")
	// ErrNotPublished means the course exists but is not visible yet.
	ErrNotPublished = errors.New("course not published")
)

// CourseSummary is a course listing entry. Locked marks courses above the
// viewer's tier so the catalog can show them as upgrade teasers.
type CourseSummary struct {
	Course models.Course `json:"course"`
	Locked bool          `json:"locked"`
}

// CourseProgress aggregates a member's standing in one course.
type CourseProgress struct {
	CourseID  uint `json:"course_id"`
	Total     int  `json:"total_lessons"`
	Completed int  `json:"completed_lessons"`
	Percent   int  `json:"percent"`
}

// Service implements the academy: tier-gated course access, lesson progress
// and catalog search.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetCourse loads a published course with its lessons, enforcing the tier
// gate. Admin callers should pass entitlements.TierDriven.
func (s *Service) GetCourse(slug string, viewerTier entitlements.Tier) (*models.Course, error) {
	course, err := s.repo.GetCourseBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, ErrNotPublished
	}
	if !entitlements.CanAccess(viewerTier, entitlements.Normalize(course.RequiredTier)) {
		return nil, ErrTierRequired
	}
	return course, nil
}

// ListCourses returns the published catalog with per-viewer lock flags.
// Locked courses stay listed; only their content is gated.
func (s *Service) ListCourses(viewerTier entitlements.Tier, offset, limit int) ([]CourseSummary, error) {
	courses, err := s.repo.ListPublishedCourses(offset, limit)
	if err != nil {
		return nil, err
	}
	return summarize(courses, viewerTier), nil
}

// Search finds published courses by title, description or tag fragment.
func (s *Service) Search(query string, viewerTier entitlements.Tier, offset, limit int) ([]CourseSummary, error) {
	courses, err := s.repo.SearchCourses(query, offset, limit)
	if err != nil {
		return nil, err
	}
	return summarize(courses, viewerTier), nil
}

func summarize(courses []models.Course, viewerTier entitlements.Tier) []CourseSummary {
	summaries := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, CourseSummary{
			Course: course,
			Locked: !entitlements.CanAccess(viewerTier, entitlements.Normalize(course.RequiredTier)),
		})
	}
	return summaries
}

// StartLesson records that the member opened a lesson. Starting an already
// completed lesson keeps the completed status.
func (s *Service) StartLesson(userID, lessonID uint, viewerTier entitlements.Tier) (*models.LessonProgress, error) {
	lesson, err := s.gateLesson(lessonID, viewerTier)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProgress(userID, lessonID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress := &models.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		CourseID: lesson.CourseID,
		Status:   models.ProgressStatusStarted,
	}
	if err := s.repo.UpsertProgress(progress); err != nil {
		return nil, fmt.Errorf("record lesson start: %w", err)
	}
	return progress, nil
}

// CompleteLesson marks a lesson done. Idempotent; the first completion
// timestamp wins.
func (s *Service) CompleteLesson(userID, lessonID uint, viewerTier entitlements.Tier) (*models.LessonProgress, error) {
	lesson, err := s.gateLesson(lessonID, viewerTier)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProgress(userID, lessonID)
	if err == nil && existing.Status == models.ProgressStatusCompleted {
		return existing, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	progress := &models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    lesson.CourseID,
		Status:      models.ProgressStatusCompleted,
		CompletedAt: &now,
	}
	if err := s.repo.UpsertProgress(progress); err != nil {
		return nil, fmt.Errorf("record lesson completion: %w", err)
	}
	return progress, nil
}

// Progress reports how far a member is through a course.
func (s *Service) Progress(userID, courseID uint) (*CourseProgress, error) {
	total, err := s.repo.CountLessons(courseID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ListProgressByCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, p := range list {
		if p.Status == models.ProgressStatusCompleted {
			completed++
		}
	}

	result := &CourseProgress{
		CourseID:  courseID,
		Total:     int(total),
		Completed: completed,
	}
	if total > 0 {
		result.Percent = completed * 100 / int(total)
	}
	return result, nil
}

func (s *Service) gateLesson(lessonID uint, viewerTier entitlements.Tier) (*models.Lesson, error) {
	lesson, err := s.repo.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.GetCourseByID(lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, ErrNotPublished
	}
	if !entitlements.CanAccess(viewerTier, entitlements.Normalize(course.RequiredTier)) {
		return nil, ErrTierRequired
	}
	return lesson, nil
}
