package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/dto"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/observability"
)

// RunBulkGrading schedules AI grading for every submission of the assignment
// still in the submitted state and returns without waiting for it. The work
// runs on a context detached from ctx and cannot be cancelled.
func (s *aiGradingService) RunBulkGrading(ctx context.Context, actor Actor, assignmentID uint) (dto.BulkGradingResponse, error) {
	if s.completer == nil {
		return dto.BulkGradingResponse{}, ErrAIUnavailable
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkGradingResponse{}, ErrAssignmentNotFound
		}
		return dto.BulkGradingResponse{}, err
	}
	if !actor.CanManage(assignment.Course) {
		return dto.BulkGradingResponse{}, ErrForbidden
	}

	pending, err := s.submissions.ListPending(ctx, assignment.ID)
	if err != nil {
		return dto.BulkGradingResponse{}, err
	}

	if len(pending) == 0 {
		s.logger.Info().Uint("assignment_id", assignment.ID).Msg("bulk grading found nothing to grade")
		return dto.BulkGradingResponse{ScheduledCount: 0}, nil
	}

	job := models.GradingJob{
		ID:           s.newJobID(),
		AssignmentID: assignment.ID,
		RequestedBy:  actor.ID,
		Status:       models.GradingJobRunning,
		Scheduled:    len(pending),
		StartedAt:    s.now(),
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return dto.BulkGradingResponse{}, fmt.Errorf("record grading job: %w", err)
	}

	observability.BulkJobs().WithLabelValues("started").Inc()
	observability.BulkJobsInFlight().Inc()
	s.logger.Info().
		Str("job_id", job.ID).
		Uint("assignment_id", assignment.ID).
		Int("scheduled", job.Scheduled).
		Msg("bulk grading scheduled")

	s.inFlight.Add(1)
	go s.runBulk(job, assignment, pending)

	return dto.BulkGradingResponse{JobID: job.ID, ScheduledCount: job.Scheduled}, nil
}

func (s *aiGradingService) runBulk(job models.GradingJob, assignment models.Assignment, pending []models.Submission) {
	defer s.inFlight.Done()
	defer observability.BulkJobsInFlight().Dec()

	ctx, span := s.tracer.Start(context.Background(), "grading.bulk", trace.WithAttributes(
		attribute.String("grading.job_id", job.ID),
		attribute.Int64("assignment.id", int64(assignment.ID)),
		attribute.Int("grading.scheduled", job.Scheduled),
	))
	defer span.End()

	logger := s.logger.With().Str("job_id", job.ID).Uint("assignment_id", assignment.ID).Logger()

	for i, submission := range pending {
		if i > 0 && s.delay > 0 {
			s.sleep(s.delay)
		}

		submission.Assignment = assignment
		if err := s.gradeIsolated(ctx, submission, job.ID); err != nil {
			job.Failed++
			job.Failures = append(job.Failures, models.GradingJobFailure{SubmissionID: submission.ID, Error: err.Error()})
			observability.BulkItems().WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("bulk grading skipped submission")
		} else {
			job.Succeeded++
			observability.BulkItems().WithLabelValues("graded").Inc()
		}
		job.Processed++

		if i < len(pending)-1 {
			s.saveJob(ctx, logger, job)
		}
	}

	finished := s.now()
	job.Status = models.GradingJobCompleted
	job.FinishedAt = &finished
	s.saveJob(ctx, logger, job)

	observability.BulkJobs().WithLabelValues("completed").Inc()
	logger.Info().
		Int("succeeded", job.Succeeded).
		Int("failed", job.Failed).
		Msg("bulk grading finished")
}

// gradeIsolated keeps a panic in one item from ending the whole job.
func (s *aiGradingService) gradeIsolated(ctx context.Context, submission models.Submission, jobID string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("grading panicked: %v", recovered)
		}
	}()

	_, _, err = s.grade(ctx, submission, jobID)
	return err
}

func (s *aiGradingService) saveJob(ctx context.Context, logger zerolog.Logger, job models.GradingJob) {
	if err := s.jobs.Save(ctx, job); err != nil {
		logger.Warn().Err(err).Msg("failed to update grading job record")
	}
}
