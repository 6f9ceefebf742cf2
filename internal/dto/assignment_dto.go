package dto

import (
	"time"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// RubricItemRequest describes one rubric criterion in assignment payloads.
type RubricItemRequest struct {
	Criteria    string  `json:"criteria" validate:"required,max=120"`
	Weight      float64 `json:"weight" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
}

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	CourseID         uint                `json:"course_id" validate:"required,gt=0"`
	Title            string              `json:"title" validate:"required,min=3"`
	Description      string              `json:"description" validate:"required,min=10"`
	DueDate          string              `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TotalPoints      float64             `json:"total_points" validate:"required,gt=0"`
	Rubric           []RubricItemRequest `json:"rubric" validate:"omitempty,dive"`
	AIGradingEnabled *bool               `json:"ai_grading_enabled"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title            *string              `json:"title" validate:"omitempty,min=3"`
	Description      *string              `json:"description" validate:"omitempty,min=10"`
	DueDate          *string              `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	TotalPoints      *float64             `json:"total_points" validate:"omitempty,gt=0"`
	Rubric           *[]RubricItemRequest `json:"rubric" validate:"omitempty,dive"`
	AIGradingEnabled *bool                `json:"ai_grading_enabled"`
}

// RubricItemResponse serializes one rubric criterion.
type RubricItemResponse struct {
	Criteria    string  `json:"criteria"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID               uint                 `json:"id"`
	CourseID         uint                 `json:"course_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	DueDate          time.Time            `json:"due_date"`
	TotalPoints      float64              `json:"total_points"`
	Rubric           []RubricItemResponse `json:"rubric"`
	AIGradingEnabled bool                 `json:"ai_grading_enabled"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// RubricFromRequest converts rubric payload items into the stored representation.
func RubricFromRequest(items []RubricItemRequest) []models.RubricItem {
	rubric := make([]models.RubricItem, 0, len(items))
	for _, item := range items {
		rubric = append(rubric, models.RubricItem{
			Criteria:    item.Criteria,
			Weight:      item.Weight,
			Description: item.Description,
		})
	}
	return rubric
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	rubric := make([]RubricItemResponse, 0, len(model.Rubric))
	for _, item := range model.Rubric {
		rubric = append(rubric, RubricItemResponse{
			Criteria:    item.Criteria,
			Weight:      item.Weight,
			Description: item.Description,
		})
	}

	return AssignmentResponse{
		ID:               model.ID,
		CourseID:         model.CourseID,
		Title:            model.Title,
		Description:      model.Description,
		DueDate:          model.DueDate,
		TotalPoints:      model.TotalPoints,
		Rubric:           rubric,
		AIGradingEnabled: model.AIGradingEnabled,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
