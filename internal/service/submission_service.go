package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/grading"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/repository"
)

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, actor Actor, assignmentID uint, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor Actor, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	publisher   GradingEventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. publisher may be nil.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, courseRepo repository.CourseRepository, publisher GradingEventPublisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		courses:     courseRepo,
		publisher:   publisher,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/edusphere-api/internal/service/submission"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() || actor.ID == 0 {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, assignment.CourseID, actor.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	exists, err := s.submissions.ExistsForStudent(ctx, assignment.ID, actor.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := grading.Submit(assignment, actor.ID, payload.Content, grading.SubmitGuard{
		Enrolled:         enrolled,
		AlreadySubmitted: exists,
		Now:              s.now(),
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	submission.FileURL = strings.TrimSpace(payload.FileURL)

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// a concurrent submit lost the race on the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, grading.ErrAlreadySubmitted
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("assignment_id", assignment.ID).Uint("student_id", actor.ID).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !actor.CanView(submission) {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID uint, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: &assignment.ID,
		Status:       filter.Status,
	}

	switch {
	case actor.IsStudent():
		studentID := actor.ID
		repoFilter.StudentID = &studentID
	case !actor.CanManage(assignment.Course):
		return nil, ErrForbidden
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Grade(ctx context.Context, actor Actor, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "submissions.teacher_grade", trace.WithAttributes(
		attribute.Int64("submission.id", int64(id)),
		attribute.Int64("actor.id", int64(actor.ID)),
	))
	defer span.End()

	submission, err := s.load(spanCtx, id)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !actor.CanManage(submission.Assignment.Course) {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	rubricGrades := dto.RubricGradesFromRequest(payload.RubricGrades)
	for i := range rubricGrades {
		rubricGrades[i].Feedback = s.clean(rubricGrades[i].Feedback)
	}

	updated, err := grading.ApplyTeacherGrade(submission, submission.Assignment, grading.TeacherGrade{
		Grade:        payload.Grade,
		Feedback:     s.clean(payload.Feedback),
		RubricGrades: rubricGrades,
	}, s.now())
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.submissions.SaveGrading(spanCtx, &updated); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", updated.ID).Uint("teacher_id", actor.ID).Float64("grade", *updated.Grade).Msg("submission graded by teacher")
	announceGrade(spanCtx, s.publisher, s.logger, updated, "")

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) load(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

// clean strips markup from teacher-written text while keeping plain punctuation readable.
func (s *submissionService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}
