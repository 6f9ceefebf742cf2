package dto

import (
	"time"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// SubmissionCreateRequest describes the payload a student sends to submit work.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"required"`
	FileURL      string `json:"file_url" validate:"omitempty,url"`
}

// RubricGradeRequest carries a teacher-assigned per-criterion score.
type RubricGradeRequest struct {
	Criteria string  `json:"criteria" validate:"required"`
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback string  `json:"feedback"`
}

// SubmissionGradeRequest is used by teachers to grade a submission.
type SubmissionGradeRequest struct {
	Grade        *float64             `json:"grade" validate:"required"`
	Feedback     string               `json:"feedback" validate:"required"`
	RubricGrades []RubricGradeRequest `json:"rubric_grades" validate:"omitempty,dive"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	Status *string `query:"status" validate:"omitempty,oneof=submitted graded returned"`
}

// RubricGradeResponse serializes a per-criterion score.
type RubricGradeResponse struct {
	Criteria string  `json:"criteria"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                  `json:"id"`
	AssignmentID uint                  `json:"assignment_id"`
	StudentID    uint                  `json:"student_id"`
	Content      string                `json:"content"`
	FileURL      string                `json:"file_url,omitempty"`
	Status       string                `json:"status"`
	Grade        *float64              `json:"grade"`
	Feedback     string                `json:"feedback"`
	GradedBy     string                `json:"graded_by"`
	GradedAt     *time.Time            `json:"graded_at"`
	RubricGrades []RubricGradeResponse `json:"rubric_grades"`
	SubmittedAt  time.Time             `json:"submitted_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Assignment   AssignmentLite        `json:"assignment"`
	Student      StudentLite           `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
	TotalPoints float64   `json:"total_points"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RubricGradesFromRequest converts payload items into stored rubric grades.
// A nil input stays nil so callers can tell "not provided" from "cleared".
func RubricGradesFromRequest(items []RubricGradeRequest) []models.RubricGrade {
	if items == nil {
		return nil
	}
	grades := make([]models.RubricGrade, 0, len(items))
	for _, item := range items {
		grades = append(grades, models.RubricGrade{
			Criteria: item.Criteria,
			Score:    item.Score,
			Feedback: item.Feedback,
		})
	}
	return grades
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		FileURL:      model.FileURL,
		Status:       model.Status,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
		RubricGrades: make([]RubricGradeResponse, 0, len(model.RubricGrades)),
		SubmittedAt:  model.SubmittedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	for _, grade := range model.RubricGrades {
		response.RubricGrades = append(response.RubricGrades, RubricGradeResponse{
			Criteria: grade.Criteria,
			Score:    grade.Score,
			Feedback: grade.Feedback,
		})
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:          model.Assignment.ID,
			Title:       model.Assignment.Title,
			DueDate:     model.Assignment.DueDate,
			TotalPoints: model.Assignment.TotalPoints,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
