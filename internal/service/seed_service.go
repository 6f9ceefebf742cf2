package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
	// ErrSeedInvalidRoster indicates a course references accounts that were not seeded.
	ErrSeedInvalidRoster = errors.New("invalid roster")
)

// SeedService loads rosters (accounts, courses and enrolments) for environments
// without a user management front end.
type SeedService interface {
	SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResult, error)
}

type seedService struct {
	users     repository.UserRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, courses repository.CourseRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:     users,
		courses:   courses,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResult, error) {
	if !s.enabled {
		return dto.RosterSeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.RosterSeedResult{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.RosterSeedResult{}, err
	}

	accounts := make([]models.User, 0, len(payload.Teachers)+len(payload.Students))
	for _, teacher := range payload.Teachers {
		accounts = append(accounts, normalizeSeedUser(teacher, models.RoleTeacher))
	}
	for _, student := range payload.Students {
		accounts = append(accounts, normalizeSeedUser(student, models.RoleStudent))
	}

	affected, err := s.users.UpsertBatch(ctx, accounts)
	if err != nil {
		return dto.RosterSeedResult{}, err
	}

	result := dto.RosterSeedResult{Users: affected, CourseIDs: make([]uint, 0, len(payload.Courses))}
	for _, item := range payload.Courses {
		courseID, err := s.seedCourse(ctx, item)
		if err != nil {
			return dto.RosterSeedResult{}, err
		}
		result.CourseIDs = append(result.CourseIDs, courseID)
	}
	result.Courses = len(result.CourseIDs)

	s.logger.Info().Int64("users", result.Users).Int("courses", result.Courses).Msg("roster seeded")
	return result, nil
}

func (s *seedService) seedCourse(ctx context.Context, item dto.SeedCourseRequest) (uint, error) {
	teacherEmail := normalizeEmail(item.TeacherEmail)
	studentEmails := make([]string, 0, len(item.StudentEmails))
	for _, email := range item.StudentEmails {
		studentEmails = append(studentEmails, normalizeEmail(email))
	}

	found, err := s.users.ListByEmails(ctx, append([]string{teacherEmail}, studentEmails...))
	if err != nil {
		return 0, err
	}
	byEmail := make(map[string]models.User, len(found))
	for _, user := range found {
		byEmail[user.Email] = user
	}

	teacher, ok := byEmail[teacherEmail]
	if !ok || teacher.Role == models.RoleStudent {
		return 0, fmt.Errorf("%w: course %s: teacher %s is not a seeded teacher", ErrSeedInvalidRoster, item.Code, teacherEmail)
	}

	students := make([]models.User, 0, len(studentEmails))
	for _, email := range studentEmails {
		student, ok := byEmail[email]
		if !ok {
			return 0, fmt.Errorf("%w: course %s: student %s is not seeded", ErrSeedInvalidRoster, item.Code, email)
		}
		students = append(students, student)
	}

	course := models.Course{
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Code:        strings.ToUpper(strings.TrimSpace(item.Code)),
		TeacherID:   teacher.ID,
	}
	if err := s.courses.Upsert(ctx, &course); err != nil {
		return 0, err
	}
	if err := s.courses.ReplaceStudents(ctx, &course, students); err != nil {
		return 0, err
	}

	return course.ID, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func normalizeSeedUser(item dto.SeedUserRequest, role string) models.User {
	return models.User{
		Name:  strings.TrimSpace(item.Name),
		Email: normalizeEmail(item.Email),
		Role:  role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
