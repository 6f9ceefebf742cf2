package grading

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySubmitted indicates the student already has a submission for the assignment.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrPastDue indicates the assignment deadline has passed.
	ErrPastDue = errors.New("assignment is past due")
	// ErrNotEnrolled indicates the student is not on the course roster.
	ErrNotEnrolled = errors.New("student not enrolled in course")
)

// ValidationError describes a rejected transition caused by caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
