package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/grading"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/repository"
)

func newSubmissionServiceForTest(t *testing.T, n int) (SubmissionService, classroom, *recordingPublisher, repository.SubmissionRepository) {
	t.Helper()
	db := setupServiceDB(t)
	room := seedClassroom(t, db, n)
	publisher := &recordingPublisher{}
	submissions := repository.NewSubmissionRepository(db)
	svc := NewSubmissionService(
		submissions,
		repository.NewAssignmentRepository(db),
		repository.NewCourseRepository(db),
		publisher,
		testValidator(),
		testLogger(),
	)
	return svc, room, publisher, submissions
}

func TestSubmissionServiceCreate(t *testing.T) {
	svc, room, _, _ := newSubmissionServiceForTest(t, 1)
	ctx := context.Background()

	created, err := svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{
		AssignmentID: room.assignment.ID,
		Content:      "Cells have a nucleus.",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, created.Status)
	require.Equal(t, models.GradedByNone, created.GradedBy)
	require.Nil(t, created.Grade)
	require.Equal(t, "Student 1", created.Student.Name)
	require.Empty(t, created.RubricGrades)

	_, err = svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{
		AssignmentID: room.assignment.ID,
		Content:      "Second attempt",
	})
	require.ErrorIs(t, err, grading.ErrAlreadySubmitted)
}

func TestSubmissionServiceCreateGuards(t *testing.T) {
	db := setupServiceDB(t)
	room := seedClassroom(t, db, 1)
	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewCourseRepository(db),
		nil,
		testValidator(),
		testLogger(),
	)
	ctx := context.Background()

	stranger := models.User{Name: "Stranger", Email: "stranger@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&stranger).Error)

	_, err := svc.Create(ctx, Actor{ID: stranger.ID, Role: models.RoleStudent}, dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "hi"})
	require.ErrorIs(t, err, grading.ErrNotEnrolled)

	_, err = svc.Create(ctx, room.teacherActor(), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "hi"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID + 50, Content: "hi"})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	var validationErr *grading.ValidationError
	_, err = svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "   "})
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "content", validationErr.Field)

	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", room.assignment.ID).Update("due_date", time.Now().Add(-time.Hour)).Error)
	_, err = svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "late"})
	require.ErrorIs(t, err, grading.ErrPastDue)
}

func TestSubmissionServiceListByAssignmentScopesStudents(t *testing.T) {
	svc, room, _, _ := newSubmissionServiceForTest(t, 2)
	ctx := context.Background()

	for i := range room.students {
		_, err := svc.Create(ctx, room.studentActor(i), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "essay"})
		require.NoError(t, err)
	}

	all, err := svc.ListByAssignment(ctx, room.teacherActor(), room.assignment.ID, dto.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := svc.ListByAssignment(ctx, room.studentActor(1), room.assignment.ID, dto.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, room.students[1].ID, own[0].StudentID)

	_, err = svc.ListByAssignment(ctx, Actor{ID: room.outsider.ID, Role: models.RoleTeacher}, room.assignment.ID, dto.SubmissionFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, room.studentActor(0), own[0].ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmissionServiceGradeCommitsSanitizedFeedback(t *testing.T) {
	svc, room, publisher, repo := newSubmissionServiceForTest(t, 1)
	ctx := context.Background()

	created, err := svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "essay"})
	require.NoError(t, err)

	graded, err := svc.Grade(ctx, room.teacherActor(), created.ID, dto.SubmissionGradeRequest{
		Grade:    ptrFloat(88),
		Feedback: "<b>Great</b> work, don't stop",
		RubricGrades: []dto.RubricGradeRequest{
			{Criteria: "Clarity", Score: 35, Feedback: "<script>alert(1)</script>Clear"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.Equal(t, models.GradedByTeacher, graded.GradedBy)
	require.Equal(t, "Great work, don't stop", graded.Feedback)
	require.Len(t, graded.RubricGrades, 1)
	require.Equal(t, "Clear", graded.RubricGrades[0].Feedback)
	require.NotNil(t, graded.GradedAt)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.InDelta(t, 88, *stored.Grade, 0.0001)

	events := publisher.published()
	require.Len(t, events, 1)
	require.Equal(t, models.GradedByTeacher, events[0].GradedBy)
	require.Equal(t, created.ID, events[0].SubmissionID)
}

func TestSubmissionServiceGradeRejectsAboveTotalWithoutWriting(t *testing.T) {
	svc, room, publisher, repo := newSubmissionServiceForTest(t, 1)
	ctx := context.Background()

	created, err := svc.Create(ctx, room.studentActor(0), dto.SubmissionCreateRequest{AssignmentID: room.assignment.ID, Content: "essay"})
	require.NoError(t, err)

	_, err = svc.Grade(ctx, room.teacherActor(), created.ID, dto.SubmissionGradeRequest{Grade: ptrFloat(101), Feedback: "too generous"})
	var validationErr *grading.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "grade", validationErr.Field)

	_, err = svc.Grade(ctx, room.teacherActor(), created.ID, dto.SubmissionGradeRequest{Grade: ptrFloat(50), Feedback: "<p></p>"})
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "feedback", validationErr.Field)

	_, err = svc.Grade(ctx, Actor{ID: room.outsider.ID, Role: models.RoleTeacher}, created.ID, dto.SubmissionGradeRequest{Grade: ptrFloat(50), Feedback: "ok"})
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, stored.Grade)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	require.Empty(t, publisher.published())
}
