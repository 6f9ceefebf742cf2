package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricItem is a single named, weighted grading criterion.
type RubricItem struct {
	Criteria    string  `json:"criteria"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// Assignment represents a piece of coursework with its grading rubric.
type Assignment struct {
	ID               uint                            `gorm:"primaryKey" json:"id"`
	CourseID         uint                            `gorm:"not null;index" json:"course_id"`
	Title            string                          `gorm:"size:255;not null" json:"title"`
	Description      string                          `gorm:"type:text;not null" json:"description"`
	DueDate          time.Time                       `gorm:"not null" json:"due_date"`
	TotalPoints      float64                         `gorm:"not null" json:"total_points"`
	Rubric           datatypes.JSONSlice[RubricItem] `json:"rubric"`
	AIGradingEnabled bool                            `gorm:"not null" json:"ai_grading_enabled"`
	CreatedAt        time.Time                       `json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
	Course           Course                          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// RubricItems returns the rubric as a plain slice.
func (a Assignment) RubricItems() []RubricItem {
	return []RubricItem(a.Rubric)
}
