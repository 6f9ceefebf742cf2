package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusphere-api/internal/grading"
	"github.com/noah-isme/edusphere-api/internal/middleware"
	"github.com/noah-isme/edusphere-api/internal/service"
	"github.com/noah-isme/edusphere-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	switch id := c.Locals("user_id").(type) {
	case uint:
		return id
	case int:
		if id < 0 {
			return 0
		}
		return uint(id)
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0
		}
		return uint(parsed)
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func validationDetails(errs validator.ValidationErrors) []fieldError {
	details := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		details = append(details, fieldError{Field: fe.Namespace(), Rule: fe.Tag()})
	}
	return details
}

// respondError maps service and domain errors onto HTTP responses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErrors validator.ValidationErrors
		domainErr        *grading.ValidationError
	)

	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.As(err, &domainErr):
		return utils.Fail(c, fiber.StatusBadRequest, domainErr.Message, fiber.Map{"field": domainErr.Field})
	case errors.Is(err, grading.ErrPastDue):
		return utils.SendError(c, fiber.StatusBadRequest, "assignment due date has passed")
	case errors.Is(err, grading.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "you have already submitted this assignment")
	case errors.Is(err, grading.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "you are not enrolled in this course")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrGradingJobNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grading job not found")
	case errors.Is(err, service.ErrAIUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai grading is not configured")
	case errors.Is(err, service.ErrAIServiceFailed):
		middleware.RequestLogger(logger, c).Error().Err(err).Msg("ai service call failed")
		return utils.SendError(c, fiber.StatusBadGateway, "ai grading failed, please try again")
	default:
		middleware.RequestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
