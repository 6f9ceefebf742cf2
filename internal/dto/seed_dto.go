package dto

// SeedUserRequest describes one account to create or refresh.
type SeedUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// SeedCourseRequest describes a course and its roster by email.
type SeedCourseRequest struct {
	Title         string   `json:"title" validate:"required"`
	Code          string   `json:"code" validate:"required"`
	Description   string   `json:"description"`
	TeacherEmail  string   `json:"teacher_email" validate:"required,email"`
	StudentEmails []string `json:"student_emails" validate:"omitempty,dive,email"`
}

// RosterSeedRequest is the payload of the roster seeding endpoint.
type RosterSeedRequest struct {
	Teachers []SeedUserRequest   `json:"teachers" validate:"omitempty,dive"`
	Students []SeedUserRequest   `json:"students" validate:"omitempty,dive"`
	Courses  []SeedCourseRequest `json:"courses" validate:"omitempty,dive"`
}

// RosterSeedResult summarises a roster seeding run.
type RosterSeedResult struct {
	Users     int64  `json:"users"`
	Courses   int    `json:"courses"`
	CourseIDs []uint `json:"course_ids"`
}
