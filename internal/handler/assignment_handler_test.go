package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/models"
)

func TestAssignmentHandlerCreateAndList(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture

	payload := fiber.Map{
		"course_id":    f.course.ID,
		"title":        "Mitosis lab",
		"description":  "Describe each phase of mitosis.",
		"due_date":     time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"total_points": 50,
		"rubric": []fiber.Map{
			{"criteria": "Completeness", "weight": 30, "description": "All phases covered"},
			{"criteria": "Diagrams", "weight": 20, "description": "Labelled drawings"},
		},
	}

	resp := srv.do(t, http.MethodPost, "/api/v1/assignments", payload, f.teacher)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.AssignmentResponse
	env := decodeResponse(t, resp, &created)
	require.True(t, env.Success)
	require.Equal(t, "Mitosis lab", created.Title)
	require.Equal(t, 50.0, created.TotalPoints)
	require.True(t, created.AIGradingEnabled)
	require.Len(t, created.Rubric, 2)
	require.Equal(t, "Completeness", created.Rubric[0].Criteria)

	resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assignments/course/%d", f.course.ID), nil, f.students[0])
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed []dto.AssignmentResponse
	decodeResponse(t, resp, &listed)
	require.Len(t, listed, 2)
	// ordered by due date
	require.Equal(t, f.assignment.ID, listed[0].ID)
	require.Equal(t, created.ID, listed[1].ID)
}

func TestAssignmentHandlerRejectsStudentCreate(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture

	resp := srv.do(t, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"course_id":    f.course.ID,
		"title":        "Sneaky",
		"description":  "Students cannot author assignments.",
		"due_date":     time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"total_points": 10,
	}, f.students[0])
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d", f.assignment.ID), nil, models.User{})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAssignmentHandlerRejectsDuplicateRubricCriteria(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture

	resp := srv.do(t, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"course_id":    f.course.ID,
		"title":        "Photosynthesis",
		"description":  "Explain the light reactions.",
		"due_date":     time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"total_points": 20,
		"rubric": []fiber.Map{
			{"criteria": "Clarity", "weight": 10},
			{"criteria": "clarity", "weight": 10},
		},
	}, f.teacher)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env := decodeResponse(t, resp, nil)
	require.False(t, env.Success)
	require.JSONEq(t, `{"field":"rubric"}`, string(env.Details))
}

func TestAssignmentHandlerRejectsPastDueDate(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture

	resp := srv.do(t, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"course_id":    f.course.ID,
		"title":        "Late work",
		"description":  "This one is already over.",
		"due_date":     time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		"total_points": 20,
	}, f.teacher)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssignmentHandlerUpdateRequiresCourseOwner(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture
	path := fmt.Sprintf("/api/v1/assignments/%d", f.assignment.ID)

	resp := srv.do(t, http.MethodPut, path, fiber.Map{"title": "Hijacked"}, f.outsider)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, path, fiber.Map{
		"title":        "Cell essay (revised)",
		"total_points": 80,
		"rubric":       []fiber.Map{{"criteria": "Depth", "weight": 80}},
	}, f.teacher)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated dto.AssignmentResponse
	decodeResponse(t, resp, &updated)
	require.Equal(t, "Cell essay (revised)", updated.Title)
	require.Equal(t, 80.0, updated.TotalPoints)
	require.Len(t, updated.Rubric, 1)
	require.Equal(t, "Depth", updated.Rubric[0].Criteria)

	resp = srv.do(t, http.MethodPut, path, fiber.Map{"title": "Admin edit"}, f.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAssignmentHandlerDeleteCascadesSubmissions(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	f := srv.fixture
	submission := srv.submit(t, f.students[0], "Mitochondria are the powerhouse of the cell.")
	path := fmt.Sprintf("/api/v1/assignments/%d", f.assignment.ID)

	resp := srv.do(t, http.MethodDelete, path, nil, f.teacher)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, path, nil, f.teacher)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var count int64
	require.NoError(t, srv.db.Model(&models.Submission{}).Where("id = ?", submission.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignmentHandlerInvalidIdentifier(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	resp := srv.do(t, http.MethodGet, "/api/v1/assignments/abc", nil, srv.fixture.teacher)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
