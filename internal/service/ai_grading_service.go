package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/grading"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/observability"
	"github.com/noah-isme/edusphere-api/internal/repository"
	"github.com/noah-isme/edusphere-api/pkg/ai"
)

const defaultBulkDelay = time.Second

// AIGradingService grades submissions with a language model.
type AIGradingService interface {
	GradeSubmission(ctx context.Context, actor Actor, submissionID uint) (dto.AIGradeResponse, error)
	RunBulkGrading(ctx context.Context, actor Actor, assignmentID uint) (dto.BulkGradingResponse, error)
	JobStatus(ctx context.Context, actor Actor, jobID string) (dto.GradingJobResponse, error)
	GenerateFeedback(ctx context.Context, actor Actor, submissionID uint) (dto.FeedbackResponse, error)
	// Wait blocks until every bulk job started so far has finished.
	Wait()
}

// AIGradingConfig holds the collaborators of the AI grading service.
type AIGradingConfig struct {
	Submissions repository.SubmissionRepository
	Assignments repository.AssignmentRepository
	Jobs        repository.GradingJobRepository
	Completer   ai.Completer
	Publisher   GradingEventPublisher
	// BulkDelay is the pause between consecutive model calls of a bulk job.
	// Zero selects the default of one second; negative disables pacing.
	BulkDelay time.Duration
	Logger    zerolog.Logger
}

type aiGradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	jobs        repository.GradingJobRepository
	completer   ai.Completer
	publisher   GradingEventPublisher
	delay       time.Duration
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
	sleep       func(time.Duration)
	newJobID    func() string
	inFlight    sync.WaitGroup
}

// NewAIGradingService constructs the AI grading service. A nil Completer
// leaves the service usable but every grading call returns ErrAIUnavailable.
func NewAIGradingService(cfg AIGradingConfig) AIGradingService {
	delay := cfg.BulkDelay
	switch {
	case delay == 0:
		delay = defaultBulkDelay
	case delay < 0:
		delay = 0
	}

	jobs := cfg.Jobs
	if jobs == nil {
		jobs = repository.NewMemoryGradingJobRepository()
	}

	return &aiGradingService{
		submissions: cfg.Submissions,
		assignments: cfg.Assignments,
		jobs:        jobs,
		completer:   cfg.Completer,
		publisher:   cfg.Publisher,
		delay:       delay,
		tracer:      otel.Tracer("github.com/noah-isme/edusphere-api/internal/service/ai_grading"),
		logger:      cfg.Logger.With().Str("component", "ai_grading_service").Logger(),
		now:         time.Now,
		sleep:       time.Sleep,
		newJobID:    uuid.NewString,
	}
}

func (s *aiGradingService) GradeSubmission(ctx context.Context, actor Actor, submissionID uint) (dto.AIGradeResponse, error) {
	if s.completer == nil {
		return dto.AIGradeResponse{}, ErrAIUnavailable
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return dto.AIGradeResponse{}, err
	}
	if !actor.CanManage(submission.Assignment.Course) {
		return dto.AIGradeResponse{}, ErrForbidden
	}

	updated, extraction, err := s.grade(ctx, submission, "")
	if err != nil {
		observability.AIGradingFailures().WithLabelValues("single").Inc()
		return dto.AIGradeResponse{}, err
	}

	return dto.AIGradeResponse{
		Submission:      dto.NewSubmissionResponse(updated),
		GradeOutOfRange: extraction.OutOfRange,
	}, nil
}

// grade runs one prompt/complete/extract/commit cycle. Nothing is written
// unless the model call succeeded.
func (s *aiGradingService) grade(ctx context.Context, submission models.Submission, jobID string) (models.Submission, grading.Extraction, error) {
	start := time.Now()
	defer func() {
		observability.AIGradingLatency().Observe(time.Since(start).Seconds())
	}()

	spanCtx, span := s.tracer.Start(ctx, "grading.ai_grade", trace.WithAttributes(
		attribute.Int64("submission.id", int64(submission.ID)),
		attribute.Int64("assignment.id", int64(submission.AssignmentID)),
		attribute.String("grading.job_id", jobID),
	))
	defer span.End()

	assignment := submission.Assignment
	response, err := s.completer.Complete(spanCtx, ai.CompletionRequest{
		SystemPrompt: grading.GraderSystemPrompt,
		Prompt:       grading.BuildPrompt(assignment, submission.Content),
	})
	if err != nil {
		span.RecordError(err)
		return models.Submission{}, grading.Extraction{}, fmt.Errorf("%w: %w", ErrAIServiceFailed, err)
	}

	extraction := grading.Extract(response, assignment.Rubric, assignment.TotalPoints)
	logger := s.logger.With().Uint("submission_id", submission.ID).Str("job_id", jobID).Logger()

	if extraction.OverallGrade == nil {
		logger.Warn().Msg("model response contained no overall grade")
	} else if extraction.OutOfRange {
		observability.GradeOutOfRange().Inc()
		logger.Warn().
			Float64("grade", *extraction.OverallGrade).
			Float64("total_points", assignment.TotalPoints).
			Msg("ai grade exceeds assignment total points")
	}

	updated := grading.ApplyAIGrade(submission, extraction, s.now())
	if err := s.submissions.SaveGrading(spanCtx, &updated); err != nil {
		span.RecordError(err)
		return models.Submission{}, grading.Extraction{}, err
	}

	logger.Info().Int("rubric_grades", len(extraction.RubricGrades)).Msg("submission graded by ai")
	announceGrade(spanCtx, s.publisher, s.logger, updated, jobID)

	return updated, extraction, nil
}

func (s *aiGradingService) JobStatus(ctx context.Context, actor Actor, jobID string) (dto.GradingJobResponse, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrGradingJobMissing) {
			return dto.GradingJobResponse{}, ErrGradingJobNotFound
		}
		return dto.GradingJobResponse{}, err
	}

	if !actor.IsAdmin() && job.RequestedBy != actor.ID {
		return dto.GradingJobResponse{}, ErrForbidden
	}

	return dto.NewGradingJobResponse(job), nil
}

func (s *aiGradingService) GenerateFeedback(ctx context.Context, actor Actor, submissionID uint) (dto.FeedbackResponse, error) {
	if s.completer == nil {
		return dto.FeedbackResponse{}, ErrAIUnavailable
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}
	if !actor.CanManage(submission.Assignment.Course) {
		return dto.FeedbackResponse{}, ErrForbidden
	}

	spanCtx, span := s.tracer.Start(ctx, "grading.ai_feedback", trace.WithAttributes(
		attribute.Int64("submission.id", int64(submission.ID)),
	))
	defer span.End()

	feedback, err := s.completer.Complete(spanCtx, ai.CompletionRequest{
		SystemPrompt: grading.FeedbackSystemPrompt,
		Prompt:       grading.BuildFeedbackPrompt(submission.Student.Name, submission.Assignment, submission),
	})
	if err != nil {
		span.RecordError(err)
		observability.AIGradingFailures().WithLabelValues("feedback").Inc()
		return dto.FeedbackResponse{}, fmt.Errorf("%w: %w", ErrAIServiceFailed, err)
	}

	return dto.FeedbackResponse{SubmissionID: submission.ID, Feedback: feedback}, nil
}

func (s *aiGradingService) Wait() {
	s.inFlight.Wait()
}

func (s *aiGradingService) loadSubmission(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}
