package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/academy"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/database"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/metrics/counter"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/usercontext"
)

var (
	academyMu      sync.Mutex
	academyService *academy.Service
)

func getAcademyService() *academy.Service {
	academyMu.Lock()
	defer academyMu.Unlock()

	if academyService == nil {
		academyService = academy.NewService(academy.NewRepository(database.GetDB()))
	}
	return academyService
}

// SetAcademyService swaps the service; used by tests.
func SetAcademyService(s *academy.Service) {
	academyMu.Lock()
	defer academyMu.Unlock()
	academyService = s
}

// viewerTier resolves the tier used for course gating. Admins see everything.
func viewerTier(c *fiber.Ctx) entitlements.Tier {
	userCtx := usercontext.GetUserContext(c)
	if userCtx.IsAdmin {
		return entitlements.TierDriven
	}
	return entitlements.Normalize(userCtx.Tier)
}

// HandleListCourses returns the published catalog. Courses above the viewer's
// tier stay listed with a locked flag.
func HandleListCourses(c *fiber.Ctx) error {
	offset, limit := parsePagination(c, 20, 50)

	courses, err := getAcademyService().ListCourses(viewerTier(c), offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load courses"})
	}

	return c.JSON(fiber.Map{"courses": courses})
}

// HandleSearchCourses searches the published catalog by title, description or
// tag fragment.
func HandleSearchCourses(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing search query"})
	}

	offset, limit := parsePagination(c, 20, 50)
	courses, err := getAcademyService().Search(query, viewerTier(c), offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to search courses"})
	}

	return c.JSON(fiber.Map{"query": query, "courses": courses})
}

// HandleGetCourse returns one published course with lessons, enforcing the
// tier gate.
func HandleGetCourse(c *fiber.Ctx) error {
	slug := c.Params("slug")

	course, err := getAcademyService().GetCourse(slug, viewerTier(c))
	if err != nil {
		return academyError(c, err, "Course not found")
	}

	// View counting is fire and forget; Redis being down must not block
	// the page.
	if err := counter.AddCourseView(course.ID); err != nil {
		log.Printf("course view counter failed for %d: %v", course.ID, err)
	}

	return c.JSON(fiber.Map{"course": course})
}

// HandleStartLesson records that the member opened a lesson.
func HandleStartLesson(c *fiber.Ctx) error {
	lessonID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid lesson id"})
	}

	userCtx := usercontext.GetUserContext(c)
	progress, err := getAcademyService().StartLesson(userCtx.UserID, lessonID, viewerTier(c))
	if err != nil {
		return academyError(c, err, "Lesson not found")
	}

	if err := counter.AddLessonView(lessonID); err != nil {
		log.Printf("lesson view counter failed for %d: %v", lessonID, err)
	}

	return c.JSON(fiber.Map{"progress": progress})
}

// HandleCompleteLesson marks a lesson done for the member. Idempotent.
func HandleCompleteLesson(c *fiber.Ctx) error {
	lessonID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid lesson id"})
	}

	userCtx := usercontext.GetUserContext(c)
	progress, err := getAcademyService().CompleteLesson(userCtx.UserID, lessonID, viewerTier(c))
	if err != nil {
		return academyError(c, err, "Lesson not found")
	}

	return c.JSON(fiber.Map{"progress": progress})
}

// HandleCourseProgress reports how far the member is through a course.
func HandleCourseProgress(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid course id"})
	}

	userCtx := usercontext.GetUserContext(c)
	progress, err := getAcademyService().Progress(userCtx.UserID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load progress"})
	}

	return c.JSON(fiber.Map{"progress": progress})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// academyError maps service errors onto HTTP statuses. Unpublished courses
// look like 404 so drafts stay invisible.
func academyError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, academy.ErrTierRequired):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tier_required", "message": "Your membership tier does not include this content"})
	case errors.Is(err, academy.ErrNotPublished), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": notFoundMsg})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
	}
}
