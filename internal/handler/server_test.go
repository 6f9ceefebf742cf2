package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/config"
	"github.com/noah-isme/edusphere-api/internal/handler"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/repository"
	"github.com/noah-isme/edusphere-api/internal/router"
	"github.com/noah-isme/edusphere-api/internal/service"
	"github.com/noah-isme/edusphere-api/internal/utils"
	"github.com/noah-isme/edusphere-api/pkg/ai"
)

const testSeedToken = "seed-secret"

type serverOptions struct {
	completer ai.Completer
	limiter   fiber.Handler
	seed      bool
}

type fixture struct {
	teacher    models.User
	outsider   models.User
	admin      models.User
	students   []models.User
	course     models.Course
	assignment models.Assignment
}

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	ai      service.AIGradingService
	fixture fixture
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	aiService := service.NewAIGradingService(service.AIGradingConfig{
		Submissions: submissionRepo,
		Assignments: assignmentRepo,
		Jobs:        repository.NewMemoryGradingJobRepository(),
		Completer:   opts.completer,
		BulkDelay:   -1,
		Logger:      logger,
	})
	t.Cleanup(aiService.Wait)

	deps := router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, assignmentRepo, courseRepo, nil, validate, logger), logger),
		AIGradingHandler:  handler.NewAIGradingHandler(aiService, opts.limiter, logger),
		JWTMiddleware:     fakeAuth,
		AIEnabled:         opts.completer != nil,
	}
	if opts.seed {
		deps.SeedHandler = handler.NewSeedHandler(service.NewSeedService(userRepo, courseRepo, validate, true, testSeedToken, logger), logger)
	}

	app := fiber.New()
	router.Register(app, config.Config{AppName: "EduSphere Test", AppEnv: "test", JWTSecret: "secret"}, deps)

	return &testServer{app: app, db: db, ai: aiService, fixture: seedFixture(t, db)}
}

// fakeAuth stands in for JWT verification and trusts the X-Test-* headers.
func fakeAuth(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
	if err != nil || id == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing token")
	}
	c.Locals("user_id", uint(id))
	c.Locals("user_role", c.Get("X-Test-Role"))
	return c.Next()
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		teacher:  models.User{Name: "Ms. Rivera", Email: "rivera@example.com", Role: models.RoleTeacher},
		outsider: models.User{Name: "Mr. Grant", Email: "grant@example.com", Role: models.RoleTeacher},
		admin:    models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin},
	}
	require.NoError(t, db.Create(&f.teacher).Error)
	require.NoError(t, db.Create(&f.outsider).Error)
	require.NoError(t, db.Create(&f.admin).Error)

	for i := 0; i < 3; i++ {
		student := models.User{Name: fmt.Sprintf("Student %d", i+1), Email: fmt.Sprintf("student%d@example.com", i+1), Role: models.RoleStudent}
		require.NoError(t, db.Create(&student).Error)
		f.students = append(f.students, student)
	}

	f.course = models.Course{Title: "Biology", Code: "BIO-101", TeacherID: f.teacher.ID}
	require.NoError(t, db.Omit("Teacher", "Students").Create(&f.course).Error)
	require.NoError(t, db.Model(&f.course).Association("Students").Append(f.students))

	f.assignment = models.Assignment{
		CourseID:         f.course.ID,
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
	require.NoError(t, db.Omit("Course").Create(&f.assignment).Error)

	return f
}

func (s *testServer) submit(t *testing.T, student models.User, content string) models.Submission {
	t.Helper()
	submission := models.Submission{
		AssignmentID: s.fixture.assignment.ID,
		StudentID:    student.ID,
		Content:      content,
		Status:       models.SubmissionStatusSubmitted,
		GradedBy:     models.GradedByNone,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, s.db.Omit("Assignment", "Student").Create(&submission).Error)
	return submission
}

// do sends a JSON request as user; a zero user sends no identity.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, user models.User) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if user.ID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
		req.Header.Set("X-Test-Role", user.Role)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Meta    json.RawMessage `json:"meta"`
}

func decodeResponse(t *testing.T, resp *http.Response, data interface{}) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type stubCompleter struct {
	mu      sync.Mutex
	calls   int
	respond func(req ai.CompletionRequest) (string, error)
}

func (s *stubCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fixedCompletion(text string) *stubCompleter {
	return &stubCompleter{respond: func(ai.CompletionRequest) (string, error) { return text, nil }}
}
