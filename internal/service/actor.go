package service

import "github.com/noah-isme/edusphere-api/internal/models"

// Actor represents the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor bypasses course ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// CanManage reports whether the actor may grade and edit work in the course.
func (a Actor) CanManage(course models.Course) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == models.RoleTeacher && a.ID != 0 && course.TeacherID == a.ID
}

// CanView reports whether the actor may read the submission.
func (a Actor) CanView(submission models.Submission) bool {
	if a.IsStudent() {
		return submission.StudentID == a.ID
	}
	return a.CanManage(submission.Assignment.Course)
}
