package service

import "errors"

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrForbidden indicates the actor may not act on the resource.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrAIServiceFailed wraps any failure of the completion call.
	ErrAIServiceFailed = errors.New("ai grading service failed")
	// ErrAIUnavailable indicates no completion client is configured.
	ErrAIUnavailable = errors.New("ai grading is not configured")
	// ErrGradingJobNotFound indicates the bulk job id is unknown or expired.
	ErrGradingJobNotFound = errors.New("grading job not found")
)
