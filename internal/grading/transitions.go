package grading

import (
	"math"
	"strings"
	"time"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// SubmitGuard carries the facts checked before a submission is accepted.
type SubmitGuard struct {
	Enrolled         bool
	AlreadySubmitted bool
	Now              time.Time
}

// TeacherGrade is the manual grading input.
type TeacherGrade struct {
	Grade        *float64
	Feedback     string
	RubricGrades []models.RubricGrade
}

// Submit creates a fresh submission in the submitted state.
func Submit(assignment models.Assignment, studentID uint, content string, guard SubmitGuard) (models.Submission, error) {
	if strings.TrimSpace(content) == "" {
		return models.Submission{}, invalid("content", "content is required")
	}
	if !guard.Enrolled {
		return models.Submission{}, ErrNotEnrolled
	}
	if assignment.IsPastDue(guard.Now) {
		return models.Submission{}, ErrPastDue
	}
	if guard.AlreadySubmitted {
		return models.Submission{}, ErrAlreadySubmitted
	}

	return models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		Content:      content,
		Status:       models.SubmissionStatusSubmitted,
		GradedBy:     models.GradedByNone,
		SubmittedAt:  guard.Now,
	}, nil
}

// ApplyAIGrade commits an extraction onto the submission. It is accepted from
// any state, so it doubles as a re-grade. The overall grade is written as
// extracted, including nil and values above the assignment total.
func ApplyAIGrade(submission models.Submission, extraction Extraction, now time.Time) models.Submission {
	updated := submission
	updated.Grade = copyGrade(extraction.OverallGrade)
	updated.Feedback = extraction.Feedback
	if len(extraction.RubricGrades) > 0 {
		updated.RubricGrades = append([]models.RubricGrade(nil), extraction.RubricGrades...)
	}
	updated.GradedBy = models.GradedByAI
	gradedAt := now
	updated.GradedAt = &gradedAt
	updated.Status = models.SubmissionStatusGraded
	return updated
}

// ApplyTeacherGrade validates and commits a manual grade. On error the
// returned submission is the unchanged input.
func ApplyTeacherGrade(submission models.Submission, assignment models.Assignment, input TeacherGrade, now time.Time) (models.Submission, error) {
	if input.Grade == nil {
		return submission, invalid("grade", "grade is required")
	}
	grade := *input.Grade
	if math.IsNaN(grade) || math.IsInf(grade, 0) {
		return submission, invalid("grade", "grade must be a number")
	}
	if grade < 0 {
		return submission, invalid("grade", "grade cannot be negative")
	}
	if grade > assignment.TotalPoints {
		return submission, invalid("grade", "grade cannot exceed total points (%s)", formatNumber(assignment.TotalPoints))
	}
	feedback := strings.TrimSpace(input.Feedback)
	if feedback == "" {
		return submission, invalid("feedback", "feedback is required")
	}
	for _, rubricGrade := range input.RubricGrades {
		if strings.TrimSpace(rubricGrade.Criteria) == "" {
			return submission, invalid("rubric_grades", "criteria is required")
		}
	}

	updated := submission
	updated.Grade = &grade
	updated.Feedback = feedback
	if input.RubricGrades != nil {
		updated.RubricGrades = append([]models.RubricGrade(nil), input.RubricGrades...)
	}
	updated.GradedBy = models.GradedByTeacher
	gradedAt := now
	updated.GradedAt = &gradedAt
	updated.Status = models.SubmissionStatusGraded
	return updated, nil
}

func copyGrade(grade *float64) *float64 {
	if grade == nil {
		return nil
	}
	value := *grade
	return &value
}
