package models

import "time"

// Course groups assignments under a single teacher and a roster of students.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Teacher     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Students    []User    `gorm:"many2many:course_students" json:"students,omitempty"`
}

// HasStudent reports whether the student is on the course roster.
func (c Course) HasStudent(studentID uint) bool {
	for _, student := range c.Students {
		if student.ID == studentID {
			return true
		}
	}
	return false
}
