package dto

import (
	"time"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// AIGradeResponse is returned after a single AI grading call committed.
type AIGradeResponse struct {
	Submission      SubmissionResponse `json:"submission"`
	GradeOutOfRange bool               `json:"grade_out_of_range"`
}

// BulkGradingResponse acknowledges a scheduled bulk grading run.
type BulkGradingResponse struct {
	JobID          string `json:"job_id,omitempty"`
	ScheduledCount int    `json:"scheduled_count"`
}

// GradingJobFailureResponse describes one submission a bulk job skipped.
type GradingJobFailureResponse struct {
	SubmissionID uint   `json:"submission_id"`
	Error        string `json:"error"`
}

// GradingJobResponse reports the progress of a bulk grading run.
type GradingJobResponse struct {
	ID           string                      `json:"id"`
	AssignmentID uint                        `json:"assignment_id"`
	Status       string                      `json:"status"`
	Scheduled    int                         `json:"scheduled"`
	Processed    int                         `json:"processed"`
	Succeeded    int                         `json:"succeeded"`
	Failed       int                         `json:"failed"`
	Failures     []GradingJobFailureResponse `json:"failures"`
	StartedAt    time.Time                   `json:"started_at"`
	FinishedAt   *time.Time                  `json:"finished_at"`
}

// FeedbackResponse carries generated personalised feedback.
type FeedbackResponse struct {
	SubmissionID uint   `json:"submission_id"`
	Feedback     string `json:"feedback"`
}

// NewGradingJobResponse converts a job record into a DTO.
func NewGradingJobResponse(job models.GradingJob) GradingJobResponse {
	failures := make([]GradingJobFailureResponse, 0, len(job.Failures))
	for _, failure := range job.Failures {
		failures = append(failures, GradingJobFailureResponse{
			SubmissionID: failure.SubmissionID,
			Error:        failure.Error,
		})
	}

	return GradingJobResponse{
		ID:           job.ID,
		AssignmentID: job.AssignmentID,
		Status:       job.Status,
		Scheduled:    job.Scheduled,
		Processed:    job.Processed,
		Succeeded:    job.Succeeded,
		Failed:       job.Failed,
		Failures:     failures,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
	}
}
