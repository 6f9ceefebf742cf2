package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricGrade is the score and rationale awarded for one rubric criterion.
type RubricGrade struct {
	Criteria string  `json:"criteria"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Submission represents a student's answer to an assignment.
type Submission struct {
	ID           uint                             `gorm:"primaryKey" json:"id"`
	AssignmentID uint                             `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint                             `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Content      string                           `gorm:"type:text;not null" json:"content"`
	FileURL      string                           `gorm:"size:512" json:"file_url"`
	Status       string                           `gorm:"size:32;not null;index" json:"status"`
	Grade        *float64                         `json:"grade"`
	Feedback     string                           `gorm:"type:text" json:"feedback"`
	GradedBy     string                           `gorm:"size:16;not null" json:"graded_by"`
	GradedAt     *time.Time                       `json:"graded_at"`
	RubricGrades datatypes.JSONSlice[RubricGrade] `json:"rubric_grades"`
	SubmittedAt  time.Time                        `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
	Assignment   Assignment                       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User                             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

const (
	// SubmissionStatusSubmitted indicates the submission has been handed in but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusReturned is reserved; no transition produces it yet.
	SubmissionStatusReturned = "returned"
)

// Grading provenance values stored in GradedBy.
const (
	GradedByNone    = "none"
	GradedByAI      = "ai"
	GradedByTeacher = "teacher"
)

// IsGraded reports whether the submission has been through a grading transition.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
