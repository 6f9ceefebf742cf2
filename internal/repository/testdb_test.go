package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edusphere-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}))
	return db
}

type fixture struct {
	teacher    models.User
	student    models.User
	course     models.Course
	assignment models.Assignment
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	teacher := models.User{Name: "Ms. Rivera", Email: "rivera@example.com", Role: models.RoleTeacher}
	student := models.User{Name: "Jo Park", Email: "jo@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&teacher).Error)
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Title: "Biology", Code: "BIO-101", TeacherID: teacher.ID}
	require.NoError(t, db.Omit("Teacher", "Students").Create(&course).Error)
	require.NoError(t, db.Model(&course).Association("Students").Append(&student))

	assignment := models.Assignment{
		CourseID:         course.ID,
		Title:            "Cell essay",
		DueDate:          time.Now().Add(24 * time.Hour),
		TotalPoints:      100,
		AIGradingEnabled: true,
		Rubric: []models.RubricItem{
			{Criteria: "Clarity", Weight: 40, Description: "Clear writing"},
			{Criteria: "Accuracy", Weight: 60, Description: "Correct facts"},
		},
	}
	require.NoError(t, db.Omit("Course").Create(&assignment).Error)

	return fixture{teacher: teacher, student: student, course: course, assignment: assignment}
}
