package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusphere-api/internal/service"
	"github.com/noah-isme/edusphere-api/internal/utils"
)

// AIGradingHandler exposes model-assisted grading endpoints. Role checks are
// applied by the router on the whole group.
type AIGradingHandler struct {
	service service.AIGradingService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewAIGradingHandler constructs the handler. limiter, when set, guards every
// route that calls the model.
func NewAIGradingHandler(service service.AIGradingService, limiter fiber.Handler, logger zerolog.Logger) *AIGradingHandler {
	return &AIGradingHandler{
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("component", "ai_grading_handler").Logger(),
	}
}

// Register attaches AI grading routes.
func (h *AIGradingHandler) Register(router fiber.Router) {
	router.Post("/grade-submission/:id", h.limited(h.gradeSubmission)...)
	router.Post("/bulk-grade/:assignmentId", h.limited(h.bulkGrade)...)
	router.Get("/bulk-grade/jobs/:jobId", h.jobStatus)
	router.Post("/feedback/:id", h.limited(h.feedback)...)
}

func (h *AIGradingHandler) limited(handler fiber.Handler) []fiber.Handler {
	if h.limiter == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{h.limiter, handler}
}

func (h *AIGradingHandler) gradeSubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.GradeSubmission(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission graded by ai", result)
}

func (h *AIGradingHandler) bulkGrade(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	ack, err := h.service.RunBulkGrading(c.UserContext(), actorFromContext(c), assignmentID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if ack.ScheduledCount == 0 {
		return utils.SendSuccess(c, "no submissions awaiting grading", ack)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "bulk grading started", ack)
}

func (h *AIGradingHandler) jobStatus(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Params("jobId"))
	if jobID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	job, err := h.service.JobStatus(c.UserContext(), actorFromContext(c), jobID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "grading job retrieved", job)
}

func (h *AIGradingHandler) feedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.GenerateFeedback(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "feedback generated", result)
}
