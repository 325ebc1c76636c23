package academy

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

type fakeRepo struct {
	courses  map[uint]*models.Course
	lessons  map[uint]*models.Lesson
	progress map[[2]uint]*models.LessonProgress
	nextID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:  make(map[uint]*models.Course),
		lessons:  make(map[uint]*models.Lesson),
		progress: make(map[[2]uint]*models.LessonProgress),
	}
}

func (r *fakeRepo) GetCourseByID(id uint) (*models.Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetCourseBySlug(slug string) (*models.Course, error) {
	for _, c := range r.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListPublishedCourses(offset, limit int) ([]models.Course, error) {
	var list []models.Course
	for _, c := range r.courses {
		if c.Published {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (r *fakeRepo) SearchCourses(query string, offset, limit int) ([]models.Course, error) {
	return r.ListPublishedCourses(offset, limit)
}

func (r *fakeRepo) CountLessons(courseID uint) (int64, error) {
	var count int64
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) GetLesson(id uint) (*models.Lesson, error) {
	if l, ok := r.lessons[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetProgress(userID, lessonID uint) (*models.LessonProgress, error) {
	if p, ok := r.progress[[2]uint{userID, lessonID}]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpsertProgress(progress *models.LessonProgress) error {
	key := [2]uint{progress.UserID, progress.LessonID}
	if existing, ok := r.progress[key]; ok {
		progress.ID = existing.ID
	} else {
		r.nextID++
		progress.ID = r.nextID
	}
	copied := *progress
	r.progress[key] = &copied
	return nil
}

func (r *fakeRepo) ListProgressByCourse(userID, courseID uint) ([]models.LessonProgress, error) {
	var list []models.LessonProgress
	for _, p := range r.progress {
		if p.UserID == userID && p.CourseID == courseID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func newAcademyFixture() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	repo.courses[1] = &models.Course{
		ID: 1, Title: "Short Game Foundations", Slug: "short-game-foundations",
		RequiredTier: "free", Published: true,
	}
	repo.courses[2] = &models.Course{
		ID: 2, Title: "Tour-Level Course Management", Slug: "tour-level-course-management",
		RequiredTier: "breakthrough", Published: true,
	}
	repo.courses[3] = &models.Course{
		ID: 3, Title: "Unreleased Draft", Slug: "unreleased-draft",
		RequiredTier: "free", Published: false,
	}
	repo.lessons[10] = &models.Lesson{ID: 10, CourseID: 1, Title: "Chipping basics", Position: 1}
	repo.lessons[11] = &models.Lesson{ID: 11, CourseID: 1, Title: "Bunker play", Position: 2}
	repo.lessons[20] = &models.Lesson{ID: 20, CourseID: 2, Title: "Scoring zones", Position: 1}
	return NewService(repo), repo
}

func TestGetCourseTierGate(t *testing.T) {
	svc, _ := newAcademyFixture()

	if _, err := svc.GetCourse("short-game-foundations", entitlements.TierFree); err != nil {
		t.Errorf("free course should open for free tier: %v", err)
	}

	_, err := svc.GetCourse("tour-level-course-management", entitlements.TierAspiring)
	if !errors.Is(err, ErrTierRequired) {
		t.Errorf("err = %v, want ErrTierRequired", err)
	}

	if _, err := svc.GetCourse("tour-level-course-management", entitlements.TierDriven); err != nil {
		t.Errorf("driven tier should open breakthrough course: %v", err)
	}
}

func TestGetCourseUnpublished(t *testing.T) {
	svc, _ := newAcademyFixture()

	_, err := svc.GetCourse("unreleased-draft", entitlements.TierDriven)
	if !errors.Is(err, ErrNotPublished) {
		t.Errorf("err = %v, want ErrNotPublished", err)
	}
}

func TestListCoursesLockFlags(t *testing.T) {
	svc, _ := newAcademyFixture()

	summaries, err := svc.ListCourses(entitlements.TierFree, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("published courses = %d, want 2", len(summaries))
	}

	locked := map[string]bool{}
	for _, s := range summaries {
		locked[s.Course.Slug] = s.Locked
	}
	if locked["short-game-foundations"] {
		t.Error("free course must not be locked for free tier")
	}
	if !locked["tour-level-course-management"] {
		t.Error("breakthrough course must be locked for free tier")
	}
}

func TestLessonProgressLifecycle(t *testing.T) {
	svc, repo := newAcademyFixture()

	started, err := svc.StartLesson(7, 10, entitlements.TierFree)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != models.ProgressStatusStarted {
		t.Errorf("status = %q, want started", started.Status)
	}

	completed, err := svc.CompleteLesson(7, 10, entitlements.TierFree)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != models.ProgressStatusCompleted || completed.CompletedAt == nil {
		t.Error("completion not recorded")
	}
	firstCompletion := *completed.CompletedAt

	// Re-starting must not downgrade; re-completing keeps the first timestamp.
	again, err := svc.StartLesson(7, 10, entitlements.TierFree)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if again.Status != models.ProgressStatusCompleted {
		t.Errorf("restart downgraded status to %q", again.Status)
	}
	recompleted, err := svc.CompleteLesson(7, 10, entitlements.TierFree)
	if err != nil {
		t.Fatalf("recomplete: %v", err)
	}
	if !recompleted.CompletedAt.Equal(firstCompletion) {
		t.Error("first completion timestamp must win")
	}

	if len(repo.progress) != 1 {
		t.Errorf("progress rows = %d, want 1", len(repo.progress))
	}
}

func TestLessonTierGate(t *testing.T) {
	svc, _ := newAcademyFixture()

	_, err := svc.StartLesson(7, 20, entitlements.TierFree)
	if !errors.Is(err, ErrTierRequired) {
		t.Errorf("err = %v, want ErrTierRequired", err)
	}
}

func TestCourseProgressPercent(t *testing.T) {
	svc, _ := newAcademyFixture()

	if _, err := svc.CompleteLesson(7, 10, entitlements.TierFree); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.StartLesson(7, 11, entitlements.TierFree); err != nil {
		t.Fatalf("start: %v", err)
	}

	progress, err := svc.Progress(7, 1)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Total != 2 || progress.Completed != 1 || progress.Percent != 50 {
		t.Errorf("progress = %+v, want 1/2 at 50%%", progress)
	}
}
