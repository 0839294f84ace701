package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/models"
)

func newTestCourseService(now time.Time) (*courseService, *fakeCourseRepo, *recordingAudit) {
	repo := newFakeCourseRepo()
	audit := &recordingAudit{}
	svc := NewCourseService(repo, audit, zap.NewNop()).(*courseService)
	svc.now = fixedClock(now)
	return svc, repo, audit
}

func TestCreateCourseDerivesSlug(t *testing.T) {
	svc, _, audit := newTestCourseService(time.Now())
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "اختبار واجهات البرمجة", TitleEn: "API Testing with Postman"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.Slug != "api-testing-with-postman" {
		t.Fatalf("unexpected slug %q", course.Slug)
	}
	explicit, err := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "Selenium", Slug: "Selenium WebDriver 4"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if explicit.Slug != "selenium-webdriver-4" {
		t.Fatalf("unexpected slug %q", explicit.Slug)
	}
	if _, err := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(audit.entries) != 2 || audit.entries[0].Action != models.AuditCourseCreated {
		t.Fatalf("unexpected audit entries %v", audit.actions())
	}
}

func TestGetCourseRedactsLockedVideos(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestCourseService(now)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "Cypress", IsPremium: true, IsPublished: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateLesson(ctx, "admin", course.ID, models.CreateLessonRequest{Title: "Intro", VideoURL: "https://v/1", Order: 1, IsFree: true}); err != nil {
		t.Fatalf("lesson: %v", err)
	}
	if _, err := svc.CreateLesson(ctx, "admin", course.ID, models.CreateLessonRequest{Title: "Deep dive", VideoURL: "https://v/2", Order: 2}); err != nil {
		t.Fatalf("lesson: %v", err)
	}

	anon, err := svc.GetCourse(ctx, course.ID, nil)
	if err != nil {
		t.Fatalf("get anonymous: %v", err)
	}
	if anon.TotalLessons != 2 || anon.Lessons[0].Title != "Intro" {
		t.Fatalf("unexpected lessons %+v", anon.Lessons)
	}
	if anon.Lessons[0].VideoURL != "https://v/1" || anon.Lessons[1].VideoURL != "" {
		t.Fatalf("expected locked video blanked, got %q / %q", anon.Lessons[0].VideoURL, anon.Lessons[1].VideoURL)
	}

	premium := premiumUser("p1")
	full, err := svc.GetCourse(ctx, course.ID, premium)
	if err != nil {
		t.Fatalf("get premium: %v", err)
	}
	if full.Lessons[1].VideoURL != "https://v/2" {
		t.Fatalf("expected premium viewer to see video")
	}

	stored, _ := repo.GetLesson(ctx, course.ID, anon.Lessons[1].ID)
	if stored.VideoURL != "https://v/2" {
		t.Fatalf("redaction leaked into storage")
	}
}

func TestGetCourseHidesDraftsFromNonAdmins(t *testing.T) {
	svc, _, _ := newTestCourseService(time.Now())
	ctx := context.Background()
	draft, err := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetCourse(ctx, draft.ID, &models.User{ID: "u1", Role: models.RoleUser}); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected draft hidden, got %v", err)
	}
	if _, err := svc.GetCourse(ctx, draft.ID, &models.User{ID: "a1", Role: models.RoleAdmin}); err != nil {
		t.Fatalf("expected admin to see draft, got %v", err)
	}
	list, err := svc.ListCourses(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected drafts excluded, got %d", len(list))
	}
}

func TestUpdateAndDeleteLesson(t *testing.T) {
	svc, repo, _ := newTestCourseService(time.Now())
	ctx := context.Background()
	course, _ := svc.CreateCourse(ctx, "admin", models.CreateCourseRequest{Title: "Playwright", IsPublished: true})
	lesson, err := svc.CreateLesson(ctx, "admin", course.ID, models.CreateLessonRequest{Title: "Setup"})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	title := "Project setup"
	free := true
	updated, err := svc.UpdateLesson(ctx, "admin", course.ID, lesson.ID, models.UpdateLessonRequest{Title: &title, IsFree: &free})
	if err != nil {
		t.Fatalf("update lesson: %v", err)
	}
	if updated.Title != title || !updated.IsFree {
		t.Fatalf("unexpected lesson %+v", updated)
	}

	if err := svc.DeleteLesson(ctx, "admin", course.ID, lesson.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}
	if err := svc.DeleteLesson(ctx, "admin", course.ID, lesson.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("expected lesson not found, got %v", err)
	}
	if _, err := svc.CreateLesson(ctx, "admin", "missing", models.CreateLessonRequest{Title: "x"}); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected course not found, got %v", err)
	}
	if err := svc.DeleteCourse(ctx, "admin", course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}
	if len(repo.courses) != 0 {
		t.Fatalf("expected course removed")
	}
}
