package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}))
	return db
}

type classroom struct {
	teacher    models.User
	outsider   models.User
	students   []models.User
	course     models.Course
	assignment models.Assignment
}

func (c classroom) teacherActor() Actor {
	return Actor{ID: c.teacher.ID, Role: models.RoleTeacher}
}

func (c classroom) studentActor(i int) Actor {
	return Actor{ID: c.students[i].ID, Role: models.RoleStudent}
}

// seedClassroom creates a teacher-owned course with n enrolled students and one assignment.
func seedClassroom(t *testing.T, db *gorm.DB, n int) classroom {
	t.Helper()

	teacher := models.User{Name: "Ms. Rivera", Email: "rivera@example.com", Role: models.RoleTeacher}
	outsider := models.User{Name: "Mr. Grant", Email: "grant@example.com", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)
	require.NoError(t, db.Create(&outsider).Error)

	students := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		student := models.User{Name: fmt.Sprintf("Student %d", i+1), Email: fmt.Sprintf("student%d@example.com", i+1), Role: models.RoleStudent}
		require.NoError(t, db.Create(&student).Error)
		students = append(students, student)
	}

	course := models.Course{Title: "Biology", Code: "BIO-101", TeacherID: teacher.ID}
	require.NoError(t, db.Omit("Teacher", "Students").Create(&course).Error)
	if n > 0 {
		require.NoError(t, db.Model(&course).Association("Students").Append(students))
	}

	assignment := models.Assignment{
		CourseID:         course.ID,
		Title:            "Cell essay",
		Description:      "Explain the structure of a eukaryotic cell.",
		DueDate:          time.Now().Add(48 * time.Hour),
		TotalPoints:      100,
		AIGradingEnabled: true,
		Rubric: []models.RubricItem{
			{Criteria: "Clarity", Weight: 40, Description: "Clear writing"},
			{Criteria: "Accuracy", Weight: 60, Description: "Correct facts"},
		},
	}
	require.NoError(t, db.Omit("Course").Create(&assignment).Error)

	return classroom{teacher: teacher, outsider: outsider, students: students, course: course, assignment: assignment}
}

func seedSubmission(t *testing.T, db *gorm.DB, assignment models.Assignment, student models.User, content string) models.Submission {
	t.Helper()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Content:      content,
		Status:       models.SubmissionStatusSubmitted,
		GradedBy:     models.GradedByNone,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, db.Omit("Assignment", "Student").Create(&submission).Error)
	return submission
}

type stubCompleter struct {
	mu       sync.Mutex
	requests []ai.CompletionRequest
	respond  func(req ai.CompletionRequest) (string, error)
}

func (s *stubCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubCompleter) calls() []ai.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.CompletionRequest(nil), s.requests...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []GradingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event GradingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []GradingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]GradingEvent(nil), p.events...)
}

func ptrFloat(v float64) *float64 {
	return &v
}
