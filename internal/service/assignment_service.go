package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/grading"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/repository"
)

// AssignmentService exposes assignment and rubric management use cases.
type AssignmentService interface {
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course) && !(actor.IsStudent() && course.HasStudent(actor.ID)) {
		return nil, ErrForbidden
	}

	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !actor.CanManage(assignment.Course) {
		if !actor.IsStudent() {
			return dto.AssignmentResponse{}, ErrForbidden
		}
		enrolled, err := s.courses.IsEnrolled(ctx, assignment.CourseID, actor.ID)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		if !enrolled {
			return dto.AssignmentResponse{}, ErrForbidden
		}
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, err := s.loadCourse(ctx, payload.CourseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.CanManage(course) {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	dueDate, err := s.parseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	rubric := dto.RubricFromRequest(payload.Rubric)
	if err := grading.ValidateRubric(rubric); err != nil {
		return dto.AssignmentResponse{}, err
	}

	aiEnabled := true
	if payload.AIGradingEnabled != nil {
		aiEnabled = *payload.AIGradingEnabled
	}

	assignment := models.Assignment{
		CourseID:         course.ID,
		Title:            strings.TrimSpace(payload.Title),
		Description:      payload.Description,
		DueDate:          dueDate,
		TotalPoints:      payload.TotalPoints,
		Rubric:           rubric,
		AIGradingEnabled: aiEnabled,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", course.ID).Int("rubric_items", len(rubric)).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !actor.CanManage(assignment.Course) {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}

	if payload.Description != nil {
		assignment.Description = *payload.Description
	}

	if payload.DueDate != nil {
		dueDate, err := s.parseDueDate(*payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}

	if payload.TotalPoints != nil {
		assignment.TotalPoints = *payload.TotalPoints
	}

	if payload.Rubric != nil {
		rubric := dto.RubricFromRequest(*payload.Rubric)
		if err := grading.ValidateRubric(rubric); err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Rubric = rubric
	}

	if payload.AIGradingEnabled != nil {
		assignment.AIGradingEnabled = *payload.AIGradingEnabled
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(assignment.Course) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) loadCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *assignmentService) parseDueDate(value string) (time.Time, error) {
	dueDate, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &grading.ValidationError{Field: "due_date", Message: fmt.Sprintf("invalid due date: %v", err)}
	}

	if !dueDate.After(s.now()) {
		return time.Time{}, &grading.ValidationError{Field: "due_date", Message: "due date must be in the future"}
	}

	return dueDate, nil
}
