package models

import "time"

// Bulk grading job states.
const (
	GradingJobRunning   = "running"
	GradingJobCompleted = "completed"
)

// GradingJobFailure records a submission the bulk job could not grade.
type GradingJobFailure struct {
	SubmissionID uint   `json:"submission_id"`
	Error        string `json:"error"`
}

// GradingJob is the status record of one bulk AI grading run.
type GradingJob struct {
	ID           string              `json:"id"`
	AssignmentID uint                `json:"assignment_id"`
	RequestedBy  uint                `json:"requested_by"`
	Status       string              `json:"status"`
	Scheduled    int                 `json:"scheduled"`
	Processed    int                 `json:"processed"`
	Succeeded    int                 `json:"succeeded"`
	Failed       int                 `json:"failed"`
	Failures     []GradingJobFailure `json:"failures,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
