package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/observability"
)

// GradingEvent is broadcast after a grade is committed to a submission.
type GradingEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	Grade        *float64  `json:"grade"`
	GradedBy     string    `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
	JobID        string    `json:"job_id,omitempty"`
}

// GradingEventPublisher announces committed grades to other systems.
type GradingEventPublisher interface {
	Publish(ctx context.Context, event GradingEvent) error
}

// NATSGradingPublisher publishes grading events on a NATS subject.
type NATSGradingPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSGradingPublisher returns nil when no connection is configured.
func NewNATSGradingPublisher(conn *nats.Conn, subject string) *NATSGradingPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &NATSGradingPublisher{conn: conn, subject: subject}
}

// Publish serializes the event as JSON and sends it.
func (p *NATSGradingPublisher) Publish(_ context.Context, event GradingEvent) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}

func newGradingEvent(submission models.Submission, jobID string) GradingEvent {
	event := GradingEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Grade:        submission.Grade,
		GradedBy:     submission.GradedBy,
		JobID:        jobID,
	}
	if submission.GradedAt != nil {
		event.GradedAt = *submission.GradedAt
	}
	return event
}

// announceGrade is best effort: the grade is already committed.
func announceGrade(ctx context.Context, publisher GradingEventPublisher, logger zerolog.Logger, submission models.Submission, jobID string) {
	observability.GradesCommitted().WithLabelValues(submission.GradedBy).Inc()
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, newGradingEvent(submission, jobID)); err != nil {
		observability.GradingEventsFailed().Inc()
		logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish grading event")
	}
}
